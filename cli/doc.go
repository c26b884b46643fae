// Package cli contains the command line interface for sigil.
//
// # Usage
//
// Without a command, the arguments name scripts to run in order:
//
//	sigil build.sig deploy.sig
//	echo '§upper[hello]' | sigil -
//	sigil -e '§log[§add[1; 2]]'
//
// The remaining commands inspect scripts or start an interactive session:
//
//	sigil check *.sig
//	sigil tokens --format=json build.sig
//	sigil repl --preload=prelude.sig
//	sigil init
//
// # Configuration
//
// Flag defaults are read from config.yaml in the user configuration
// directory (for example ~/.config/sigil/config.yaml). Keys name flags with
// hyphens or underscores, and nested mappings join their keys:
//
//	log:
//	  level: debug
//	while-limit: 50000
//	plugin: [pathenv, yamlio]
//
// Environment variables prefixed with SIGIL_ override the file, and
// command-line flags override both. The init command writes the current
// flag values to the configuration file.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize text output
//
// # Interpreter Options
//
//   - --while-limit, --for-limit: Bound loop iterations
//   - --require-ext, --require-cycle: Control script inclusion
//   - --plugin: Load a named plugin (repeatable)
//   - --base-dir, --path: Resolve relative script paths
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o sigil .
//
// With it, --pprof-mode selects a profile (allocs, block, clock, cpu,
// goroutine, heap, mem, mutex, thread, trace) and --pprof-dir sets the
// output directory (default ~/.cache/sigil/pprof).
package cli
