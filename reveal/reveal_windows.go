package reveal

func platformCommand() func(path string) (string, []string) {
	return func(path string) (string, []string) {
		return "explorer.exe", []string{"/select," + path}
	}
}
