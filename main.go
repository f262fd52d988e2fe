package main

import (
	"os"

	"orion/app"
)

func main() {
	os.Exit(app.Run())
}
