package main

import (
	"context"
	"io"
	"os"

	"github.com/sencbuild/senc/internal/cliapp"
	"github.com/sencbuild/senc/internal/driver"
)

var exitFunc = os.Exit

func run(args []string, _ io.Reader, out io.Writer, errOut io.Writer) int {
	runner := driver.New()
	commandLine := cliapp.New(runner, out, errOut)
	return commandLine.Run(context.Background(), args)
}

func main() {
	exitFunc(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
