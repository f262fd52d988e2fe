//go:build !darwin && !linux && !windows

package reveal

func platformCommand() func(path string) (string, []string) {
	return nil
}
