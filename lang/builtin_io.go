package lang

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

func registerIOBuiltins(r *Registry) {
	r.builtin("input", builtinInput)
	r.builtin("clear", builtinClear)
	r.builtin("sleep", builtinSleep)
}

// clearScreen homes the cursor and erases the display.
const clearScreen = "\033[H\033[2J"

// input[prompt; secret] writes prompt and reads one line of input. When the
// second argument is true and input comes from a terminal, the line is read
// without echo.
func builtinInput(c *Context, a *Args) (string, error) {
	if err := a.Require(0, 2); err != nil {
		return "", err
	}

	if prompt := a.Arg(0); prompt != "" {
		if _, err := io.WriteString(c.out, prompt); err != nil {
			return "", ErrFileWrite.Wrap(err)
		}
	}

	if Truthy(a.Arg(1)) {
		if fd, ok := terminalInput(c); ok {
			b, err := term.ReadPassword(fd)
			_, _ = io.WriteString(c.out, "\n")

			if err != nil {
				return "", ErrFileRead.Wrap(err)
			}

			return string(b), nil
		}
	}

	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", ErrFileRead.Wrap(err)
	}

	return strings.TrimRight(line, "\r\n"), nil
}

// terminalInput reports whether the interpreter reads from a terminal on
// standard input.
func terminalInput(c *Context) (int, bool) {
	if c.session == nil || c.session.interp.cfg.in != os.Stdin {
		return 0, false
	}

	fd := int(os.Stdin.Fd())

	return fd, term.IsTerminal(fd)
}

// clear[] clears the screen when output is a terminal.
func builtinClear(c *Context, _ *Args) (string, error) {
	f, ok := c.out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return "", nil
	}

	_, err := io.WriteString(f, clearScreen)
	if err != nil {
		return "", ErrFileWrite.Wrap(err)
	}

	return "", nil
}

// sleep[ms] pauses for the given number of milliseconds, or until the run
// is cancelled.
func builtinSleep(c *Context, a *Args) (string, error) {
	ms, err := ParseNumber(a.String())
	if err != nil {
		return "", err
	}

	if ms < 0 {
		return "", ErrNotNumeric.With(slog.Float64("ms", ms))
	}

	timer := time.NewTimer(time.Duration(ms * float64(time.Millisecond)))
	defer timer.Stop()

	select {
	case <-timer.C:
		return "", nil
	case <-c.Context().Done():
		return "", c.Context().Err()
	}
}
