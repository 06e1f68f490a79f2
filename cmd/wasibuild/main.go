// Package main is the entry point for the wasibuild CLI.
package main

import (
	"os"

	"github.com/wasmforge/wasibuild/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
