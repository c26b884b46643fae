package lang

import (
	"io"
	"log/slog"
)

// Default loop ceilings.
const (
	DefaultWhileLimit = 1000
	DefaultForLimit   = 10000
)

// engine steps a program counter through a compiled program.
type engine struct {
	c        *Context
	prog     program
	whileMax int
	forMax   int
	loops    int // enclosing loop depth
}

func (e *engine) run() error { return e.block(0, len(e.prog)) }

// block executes the statements in [lo, hi). It returns early when the
// program exits or when break or continue must unwind to an enclosing loop.
func (e *engine) block(lo, hi int) error {
	for pc := lo; pc < hi; {
		if e.c.flags.exit {
			return nil
		}

		if err := e.c.Context().Err(); err != nil {
			return err
		}

		st := e.prog[pc]

		var err error

		switch st.keyword() {
		case kwIf:
			pc, err = e.runIf(pc, hi)
		case kwWhile:
			pc, err = e.runWhile(pc, hi)
		case kwFor:
			pc, err = e.runFor(pc, hi)
		case "":
			e.exec(st)
			pc++
		default:
			// Branches and terminators are consumed by their opener.
			pc++
		}

		if err != nil {
			return err
		}

		if e.c.flags.brk || e.c.flags.cont {
			if e.loops > 0 {
				return nil
			}

			e.at(st)
			e.c.Warn(ErrControlFlow)
			e.c.flags.brk, e.c.flags.cont = false, false
		}
	}

	return nil
}

// at makes st the statement that diagnostics refer to.
func (e *engine) at(st stmt) {
	e.c.line = st.line
	e.c.directive = st.name
}

// exec runs one flat statement: a lone directive is dispatched and its
// value discarded; anything else is expanded and written as a line of
// output.
func (e *engine) exec(st stmt) {
	e.at(st)
	e.c.stmts++

	if e.c.debug {
		e.c.logger.DebugContext(e.c.Context(), "statement",
			slog.Int("line", st.line),
			slog.String("text", st.text),
		)
	}

	if st.err != nil {
		e.c.Report(st.err)
	}

	if st.directive {
		e.c.dispatch(st.name, st.args, st.frag)

		return
	}

	e.c.directive = ""

	if _, err := io.WriteString(e.c.out, e.c.eval(st.frag, nil)+"\n"); err != nil {
		e.c.Report(ErrFileWrite.Wrap(err))
	}
}

// test evaluates the condition of an if, elseif or while statement.
func (e *engine) test(st stmt) bool {
	e.at(st)

	if st.err != nil {
		e.c.Report(st.err)

		return false
	}

	ok := e.c.condition(st.frag)

	e.c.logger.TraceContext(e.c.Context(), "condition",
		slog.Int("line", st.line),
		slog.String("cond", st.args),
		slog.Bool("result", ok),
	)

	return ok
}

// runIf executes the first branch of the conditional at pc whose condition
// holds. Later conditions are never evaluated.
func (e *engine) runIf(pc, hi int) (int, error) {
	end, branches := e.prog.scan(pc, hi)
	if end < 0 {
		end = hi
	}

	heads := append([]int{pc}, branches...)

	for k, h := range heads {
		bodyHi := end
		if k+1 < len(heads) {
			bodyHi = heads[k+1]
		}

		st := e.prog[h]
		if st.keyword() != kwElse && !e.test(st) {
			if e.c.flags.exit {
				break
			}

			continue
		}

		return end + 1, e.block(h+1, bodyHi)
	}

	return end + 1, nil
}

// runWhile executes the loop at pc until its condition fails, break is
// called, or the iteration ceiling is reached.
func (e *engine) runWhile(pc, hi int) (int, error) {
	end, _ := e.prog.scan(pc, hi)
	if end < 0 {
		end = hi
	}

	head := e.prog[pc]

	e.loops++
	defer e.leave()

	for n := 0; ; n++ {
		e.c.flags.brk, e.c.flags.cont = false, false

		if e.c.flags.exit {
			break
		}

		if err := e.c.Context().Err(); err != nil {
			return end + 1, err
		}

		if !e.test(head) {
			break
		}

		if n >= e.whileMax {
			e.at(head)
			e.c.Report(ErrRunawayLoop.With(slog.Int("limit", e.whileMax)))

			break
		}

		if err := e.block(pc+1, end); err != nil {
			return end + 1, err
		}

		if e.c.flags.brk {
			break
		}
	}

	return end + 1, nil
}

// runFor executes the counting loop at pc. Its bounds are evaluated once.
func (e *engine) runFor(pc, hi int) (int, error) {
	end, _ := e.prog.scan(pc, hi)
	if end < 0 {
		end = hi
	}

	head := e.prog[pc]
	e.at(head)

	if head.err != nil {
		e.c.Report(head.err)

		return end + 1, nil
	}

	args := newArgs(e.c, head.args, head.frag)
	if err := args.Require(3, 3); err != nil {
		e.c.Report(err)

		return end + 1, nil
	}

	name := args.Arg(0)
	if !IsValidName(name) {
		e.c.Report(ErrInvalidVariable.With(slog.String("name", name)))

		return end + 1, nil
	}

	from, err := args.Number(1)
	if err != nil {
		e.c.Report(err)

		return end + 1, nil
	}

	to, err := args.Number(2)
	if err != nil {
		e.c.Report(err)

		return end + 1, nil
	}

	e.loops++
	defer e.leave()

	n := 0

	for i := from; i < to; i++ {
		e.c.flags.brk, e.c.flags.cont = false, false

		if e.c.flags.exit {
			break
		}

		if err := e.c.Context().Err(); err != nil {
			return end + 1, err
		}

		if n >= e.forMax {
			e.at(head)
			e.c.Report(ErrRunawayLoop.With(slog.Int("limit", e.forMax)))

			break
		}

		n++

		_ = e.c.vars.Set(name, FormatNumber(i))

		if err := e.block(pc+1, end); err != nil {
			return end + 1, err
		}

		if e.c.flags.brk {
			break
		}
	}

	return end + 1, nil
}

// leave exits a loop, clearing any break or continue it consumed.
func (e *engine) leave() {
	e.loops--
	e.c.flags.brk, e.c.flags.cont = false, false
}
