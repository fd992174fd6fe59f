package cliapp

const usage = `Usage:
  senc [-o DIR] [--loglevel trace|debug|info|warn|error] <input_dir>

Compiles every *.sen.ts / *.sen.js entrypoint under <input_dir>, running
each in a hermetic script sandbox and writing its returned value as a
JSON or YAML configuration artifact.

Options:
  -o DIR               Output directory, relative to <input_dir>
                        (default: "out", or senc.config.toml's output_dir)
  --loglevel LEVEL      trace|debug|info|warn|error
                        (default: info, or senc.config.toml's loglevel)
  -h, --help            Show this help text
`

// Usage returns the CLI's help text.
func Usage() string {
	return usage
}
