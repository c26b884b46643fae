package lang

import (
	"io"
	"os"

	"github.com/ardnew/sigil/log"
	"github.com/ardnew/sigil/pkg"
)

// DefaultRequireExt is appended to required paths without an extension.
var DefaultRequireExt = pkg.Extension

// config holds the configuration of an [Interpreter].
type config struct {
	logger     log.Logger
	out        io.Writer
	in         io.Reader
	registry   *Registry
	plugins    []Plugin
	requireExt string
	baseDir    string
	searchPath []string
	whileMax   int
	forMax     int
	cycle      CyclePolicy
	debug      bool
}

// Option applies a configuration option to config.
type Option func(config) config

// apply applies multiple options to a config.
func apply(cfg config, opts ...Option) config {
	for _, opt := range opts {
		if opt != nil {
			cfg = opt(cfg)
		}
	}

	return cfg
}

func makeConfig(opts ...Option) config {
	return apply(config{
		logger:     log.Default(),
		out:        os.Stdout,
		in:         os.Stdin,
		requireExt: DefaultRequireExt,
		whileMax:   DefaultWhileLimit,
		forMax:     DefaultForLimit,
	}, opts...)
}

// WithLogger sets the logger for diagnostics and tracing.
func WithLogger(l log.Logger) Option {
	return func(c config) config {
		c.logger = l

		return c
	}
}

// WithOutput sets the stream that script output is written to.
// A nil writer discards output.
func WithOutput(w io.Writer) Option {
	if w == nil {
		w = io.Discard
	}

	return func(c config) config {
		c.out = w

		return c
	}
}

// WithInput sets the stream that input directives read from.
func WithInput(r io.Reader) Option {
	return func(c config) config {
		c.in = r

		return c
	}
}

// WithDebug enables logging of every statement.
func WithDebug(enable bool) Option {
	return func(c config) config {
		c.debug = enable

		return c
	}
}

// WithPlugins merges plugins into the interpreter's registry.
func WithPlugins(plugins ...Plugin) Option {
	return func(c config) config {
		c.plugins = append(c.plugins[:len(c.plugins):len(c.plugins)], plugins...)

		return c
	}
}

// WithRegistry sets the registry the interpreter starts from. The registry
// is cloned, so later changes to it do not affect the interpreter.
func WithRegistry(r *Registry) Option {
	return func(c config) config {
		c.registry = r

		return c
	}
}

// WithWhileLimit sets the iteration ceiling of while loops.
// Non-positive values select [DefaultWhileLimit].
func WithWhileLimit(n int) Option {
	return func(c config) config {
		if n <= 0 {
			n = DefaultWhileLimit
		}

		c.whileMax = n

		return c
	}
}

// WithForLimit sets the iteration ceiling of for loops.
// Non-positive values select [DefaultForLimit].
func WithForLimit(n int) Option {
	return func(c config) config {
		if n <= 0 {
			n = DefaultForLimit
		}

		c.forMax = n

		return c
	}
}

// WithRequireExt sets the extension appended to required paths that have
// none. An empty extension disables appending.
func WithRequireExt(ext string) Option {
	return func(c config) config {
		c.requireExt = ext

		return c
	}
}

// WithRequireCycle sets the policy for files required more than once.
func WithRequireCycle(p CyclePolicy) Option {
	return func(c config) config {
		c.cycle = p

		return c
	}
}

// WithBaseDir sets the directory relative requires resolve against. The
// default is the working directory.
func WithBaseDir(dir string) Option {
	return func(c config) config {
		c.baseDir = dir

		return c
	}
}

// WithSearchPath adds directories searched by require after the base
// directory.
func WithSearchPath(dirs ...string) Option {
	return func(c config) config {
		c.searchPath = append(c.searchPath[:len(c.searchPath):len(c.searchPath)], dirs...)

		return c
	}
}
