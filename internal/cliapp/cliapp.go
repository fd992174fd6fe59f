// Package cliapp is senc's command-line surface: argument parsing and
// the run loop that turns an Executor's result into stdout/stderr
// output and a process exit code.
package cliapp

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sencbuild/senc/internal/driver"
)

// Executor runs one compile request and returns a summary for stdout.
type Executor interface {
	Execute(ctx context.Context, req driver.Request) (string, error)
}

// CommandLine wires an Executor to a pair of output streams and maps
// its result to a process exit code.
type CommandLine struct {
	Executor Executor
	Out      io.Writer
	Err      io.Writer
}

// New builds a CommandLine.
func New(executor Executor, out, errOut io.Writer) *CommandLine {
	return &CommandLine{Executor: executor, Out: out, Err: errOut}
}

// Run parses args, invokes the Executor, and returns the process exit
// code: 0 on success, 2 on an argument error, 3 on a whole-run fatal
// planning error (output collisions), 1 if one or more entrypoints
// failed.
func (c *CommandLine) Run(ctx context.Context, args []string) int {
	req, err := ParseArgs(args)
	if err != nil {
		if errors.Is(err, ErrHelpRequested) {
			if writeErr := c.writeOut(Usage()); writeErr != nil {
				return 1
			}
			return 0
		}
		if writeErr := c.writeErrf("error: %v\n\n", err); writeErr != nil {
			return 1
		}
		if writeErr := c.writeErr(Usage()); writeErr != nil {
			return 1
		}
		return 2
	}

	output, runErr := c.Executor.Execute(ctx, req)
	if output != "" {
		if writeErr := c.writeOutln(output); writeErr != nil {
			return 1
		}
	}

	if runErr != nil {
		if errors.Is(runErr, driver.ErrOutputCollision) {
			if writeErr := c.writeErrln(runErr.Error()); writeErr != nil {
				return 1
			}
			return 3
		}
		if writeErr := c.writeErrln(runErr.Error()); writeErr != nil {
			return 1
		}
		return 1
	}

	return 0
}

func (c *CommandLine) writeOut(value string) error {
	_, err := fmt.Fprint(c.Out, value)
	return err
}

func (c *CommandLine) writeErr(value string) error {
	_, err := fmt.Fprint(c.Err, value)
	return err
}

func (c *CommandLine) writeErrf(format string, args ...any) error {
	_, err := fmt.Fprintf(c.Err, format, args...)
	return err
}

func (c *CommandLine) writeErrln(args ...any) error {
	_, err := fmt.Fprintln(c.Err, args...)
	return err
}

func (c *CommandLine) writeOutln(args ...any) error {
	_, err := fmt.Fprintln(c.Out, args...)
	return err
}
