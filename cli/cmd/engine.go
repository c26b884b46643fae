package cmd

import (
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/sigil/lang"
	"github.com/ardnew/sigil/log"
	"github.com/ardnew/sigil/plugin"
)

// Engine holds the interpreter settings shared by every command.
type Engine struct {
	Debug        bool     `help:"Log each statement before it runs."                short:"d"`
	WhileLimit   int      `default:"${whileLimit}"                                  help:"Iteration ceiling of while loops."                 placeholder:"N"`
	ForLimit     int      `default:"${forLimit}"                                    help:"Iteration ceiling of for loops."                   placeholder:"N"`
	RequireExt   string   `default:"${requireExt}"                                  help:"Extension appended to required paths without one." placeholder:"EXT"`
	RequireCycle string   `default:"skip"                                           enum:"${requireCycleEnum}"                               help:"Action when a file is required twice (${enum})."`
	Plugin       []string `help:"Load a compiled-in plugin (${pluginEnum})."       placeholder:"NAME"                                       short:"P"`
	BaseDir      string   `help:"Directory relative requires resolve against."      placeholder:"DIR"                                        type:"path"`
	Path         []string `help:"Extra directory searched by require (repeatable)." placeholder:"DIR"                                        type:"path"`
	Library      string   `default:"${library}"                                     help:"Directory of shared scripts searched last."        placeholder:"DIR"  type:"path"`
}

// Vars returns the kong variables interpolated into the engine flags. The
// library directory is empty unless overridden by the caller.
func (Engine) Vars() kong.Vars {
	return kong.Vars{
		"whileLimit":       strconv.Itoa(lang.DefaultWhileLimit),
		"forLimit":         strconv.Itoa(lang.DefaultForLimit),
		"requireExt":       lang.DefaultRequireExt,
		"requireCycleEnum": strings.Join(lang.CyclePolicies(), ","),
		"pluginEnum":       strings.Join(plugin.Names(), ", "),
		LibraryIdentifier:  "",
	}
}

// Group returns the help group of the engine flags.
func (Engine) Group() kong.Group {
	var group kong.Group

	group.Key = "engine"
	group.Title = "Interpreter options"

	return group
}

// options translates the flags into interpreter options. Script output is
// written to out and read from in.
func (e *Engine) options(out io.Writer, in io.Reader) ([]lang.Option, error) {
	plugins, err := plugin.Lookup(e.Plugin...)
	if err != nil {
		return nil, ErrPlugin.Wrap(err)
	}

	search := e.Path
	if e.Library != "" {
		search = append(search[:len(search):len(search)], e.Library)
	}

	return []lang.Option{
		lang.WithLogger(log.Default()),
		lang.WithOutput(out),
		lang.WithInput(in),
		lang.WithDebug(e.Debug),
		lang.WithWhileLimit(e.WhileLimit),
		lang.WithForLimit(e.ForLimit),
		lang.WithRequireExt(e.RequireExt),
		lang.WithRequireCycle(lang.ParseCyclePolicy(e.RequireCycle)),
		lang.WithBaseDir(e.BaseDir),
		lang.WithSearchPath(search...),
		lang.WithPlugins(plugins...),
	}, nil
}

// interpreter returns an interpreter configured by the flags.
func (e *Engine) interpreter(out io.Writer, in io.Reader) (*lang.Interpreter, error) {
	opts, err := e.options(out, in)
	if err != nil {
		return nil, err
	}

	interp := lang.New(opts...)
	if err := interp.Err(); err != nil {
		return nil, ErrPlugin.Wrap(err)
	}

	return interp, nil
}
