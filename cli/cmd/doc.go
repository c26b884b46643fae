// Package cmd implements the sigil subcommands: run, check, tokens, repl and
// init.
//
// Every command receives the shared [Engine] flags and reports its exit
// status through [Status]; errors are reserved for scripts that cannot run
// at all.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path
	// of the configuration file.
	ConfigIdentifier = "config"

	// LibraryIdentifier is the kong variable identifier containing the
	// directory of shared scripts searched last by require.
	LibraryIdentifier = "library"
)
