package reveal

func platformCommand() func(path string) (string, []string) {
	return func(path string) (string, []string) {
		return "open", []string{"-R", path}
	}
}
