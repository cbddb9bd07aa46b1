package main

import (
	"os"

	"jxtract/internal/cli"
)

func main() {
	code := cli.Execute(os.Args[1:])
	os.Exit(code)
}
