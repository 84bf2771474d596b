// Command registrarctl administers the registrar database from a terminal.
package main

import (
	"os"

	"github.com/fatih/color"
)

func main() {
	cl := &commandLine{out: os.Stdout, connect: connectBackend}
	if err := cl.app().Run(os.Args); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
