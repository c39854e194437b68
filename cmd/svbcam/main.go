// Command svbcam converts SVBONY camera frames and serves a camera over HTTP.
package main

import (
	"fmt"
	"io"
	"os"
)

// Version is the version number, typically injected via ldflags.
var Version = "0.3.0"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	root := newRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.Execute()
}
