package main

import (
	"os"

	"tsurface/internal/cliapp"
)

func main() {
	os.Exit(cliapp.Run(os.Args[1:]))
}
