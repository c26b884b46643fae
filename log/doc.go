// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// The package offers configurable time formatting, caller information,
// and output formats that are applied at logger creation time using
// functional options.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("script started", slog.String("file", "main.sig"))
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("kitchen"),
//		log.WithCaller(true))
//
// The package-level functions ([Info], [Warn], ...) write through a default
// logger that the CLI configures with [Config]. The default logger writes to
// standard error so that it never interleaves with script output.
//
// # Supported Levels
//
// Five levels are supported: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn], and [LevelError]. The interpreter emits per-statement events
// at trace level and diagnostics at warn and error level.
//
// # Output Formats
//
// [FormatJSON] (default) and [FormatText]. When pretty printing is enabled,
// text output is colorized; JSON output is never altered so it stays
// machine-readable.
package log
