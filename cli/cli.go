package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/sigil/cli/cmd"
	"github.com/ardnew/sigil/pkg"
)

// CLI is the top-level command-line interface for sigil.
type CLI struct {
	Log    logConfig   `embed:"" group:"log"    prefix:"log-"`
	Pprof  pprofConfig `embed:"" group:"pprof"  prefix:"pprof-"`
	Engine cmd.Engine  `embed:"" group:"engine"`

	Version kong.VersionFlag `help:"Print version and exit" short:"V"`

	Init   cmd.Init   `cmd:"" help:"Initialize configuration file"`
	Check  cmd.Check  `cmd:"" help:"Validate scripts without running them"`
	Tokens cmd.Tokens `cmd:"" help:"Print the token stream of a script"`
	Repl   cmd.Repl   `cmd:"" help:"Start an interactive session"`

	Run cmd.Run `cmd:"" default:"withargs" help:"Run scripts"`
}

// Run executes the sigil CLI with the given context and arguments.
// The exit function is called with the exit status chosen by the command
// once it has finished, unless that status is zero.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var status cmd.Status

	err := run(ctx, exit, &status, args...)
	if err != nil {
		return err
	}

	if status.Code != 0 {
		exit(status.Code)
	}

	return nil
}

func run(
	ctx context.Context,
	exit func(code int),
	status *cmd.Status,
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	// Engine defaults come first so that the paths below replace them.
	vars := cli.Engine.Vars().
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars()).
		CloneWith(kong.Vars{
			cmd.ConfigIdentifier:  configFilePath,
			cmd.CacheIdentifier:   cacheDir(),
			cmd.LibraryIdentifier: configPath(baseLibrary),
			"version":             pkg.Version,
		})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags to ensure early configuration regardless of
	// flag position. TextUnmarshaler on logFormat/logLevel handles those flags
	// during normal parsing, but this early scan also catches boolean flags
	// like --log-pretty.
	cli.Log.scan(args)

	// Parse command line
	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group(), cli.Engine.Group()},
		),
		kong.DefaultEnvars(pkg.Prefix()),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.Bind(&cli.Engine, status),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(loadYAML, configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Stuff additional context values for use by commands
	ctx = cmd.WithContext(ctx, ktx)

	// Finalize logger configuration with all parsed values including
	// TimeLayout and Caller which don't use TextUnmarshaler.
	cli.Log.start(ctx, cli.Engine.Debug)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	// Execute the selected command
	return ktx.Run(ctx, &cli)
}
