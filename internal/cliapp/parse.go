package cliapp

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/sencbuild/senc/internal/config"
	"github.com/sencbuild/senc/internal/driver"
	"github.com/sencbuild/senc/internal/hostops"
)

// ErrHelpRequested signals that -h/--help was given; the caller should
// print Usage() and exit 0 rather than treating it as an error.
var ErrHelpRequested = errors.New("help requested")

// ParseArgs parses args into a driver.Request. Flags must precede the
// single positional <input_dir> argument.
func ParseArgs(args []string) (driver.Request, error) {
	fs := flag.NewFlagSet("senc", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	outputDir := fs.String("o", "", "output directory")
	logLevel := fs.String("loglevel", "", "log level: trace|debug|info|warn|error")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return driver.Request{}, ErrHelpRequested
		}
		return driver.Request{}, err
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		return driver.Request{}, fmt.Errorf("missing input directory")
	}
	if len(remaining) > 1 {
		return driver.Request{}, fmt.Errorf("too many arguments: %s", strings.Join(remaining[1:], " "))
	}

	var overrides config.Overrides
	visited := visitedFlags(fs)
	if visited["o"] {
		overrides.OutputDir = outputDir
	}
	if visited["loglevel"] {
		if _, err := hostops.ParseLevel(*logLevel); err != nil {
			return driver.Request{}, err
		}
		overrides.LogLevel = logLevel
	}

	return driver.Request{
		InputDir:  strings.TrimSpace(remaining[0]),
		Overrides: overrides,
	}, nil
}

func visitedFlags(fs *flag.FlagSet) map[string]bool {
	visited := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		visited[f.Name] = true
	})
	return visited
}
