package reveal

import "path/filepath"

// xdg-open cannot select a file, so the containing directory is opened
func platformCommand() func(path string) (string, []string) {
	return func(path string) (string, []string) {
		return "xdg-open", []string{filepath.Dir(path)}
	}
}
