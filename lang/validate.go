package lang

import (
	"cmp"
	"log/slog"
	"slices"
)

// Structural errors reported by [Validate].
var (
	ErrUnexpectedTerminator = NewError("terminator without open block")
	ErrMismatchedTerminator = NewError("mismatched terminator")
	ErrOrphanBranch         = NewError("branch outside if block")
	ErrBranchAfterElse      = NewError("branch after else")
	ErrUnbalancedBrackets   = NewError("unbalanced brackets")
	ErrUnclosedBlock        = NewError("unclosed block")
)

// Validate checks that every block in src is properly closed and that every
// line has balanced brackets. All problems are reported, in source order,
// as a [*ValidationError].
func Validate(src string) error {
	if diags := compile(src).validate(); len(diags) > 0 {
		return &ValidationError{Diagnostics: diags}
	}

	return nil
}

type openBlock struct {
	kw      string
	line    int
	sawElse bool
}

func (p program) validate() []Diagnostic {
	var (
		diags []Diagnostic
		stack []openBlock
	)

	fail := func(st stmt, err *Error) {
		diags = append(diags, Diagnostic{
			Severity:  SeverityError,
			Line:      st.line,
			Directive: st.name,
			Err:       err,
		})
	}

	for _, st := range p {
		if depth, under := bracketBalance(st.text); depth != 0 || under {
			fail(st, ErrUnbalancedBrackets)
		}

		kw := st.keyword()

		switch {
		case terminator[kw] != "":
			stack = append(stack, openBlock{kw: kw, line: st.line})

		case opener[kw] != "":
			if len(stack) == 0 {
				fail(st, ErrUnexpectedTerminator)

				continue
			}

			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if top.kw != opener[kw] {
				fail(st, ErrMismatchedTerminator.With(
					slog.String("open", top.kw),
					slog.Int("opened", top.line),
				))
			}

		case kw == kwElseIf || kw == kwElse:
			if len(stack) == 0 || stack[len(stack)-1].kw != kwIf {
				fail(st, ErrOrphanBranch)

				continue
			}

			top := &stack[len(stack)-1]
			if top.sawElse {
				fail(st, ErrBranchAfterElse.With(slog.Int("opened", top.line)))
			}

			if kw == kwElse {
				top.sawElse = true
			}
		}
	}

	for _, o := range stack {
		diags = append(diags, Diagnostic{
			Severity:  SeverityError,
			Line:      o.line,
			Directive: o.kw,
			Err:       ErrUnclosedBlock,
		})
	}

	slices.SortStableFunc(diags, func(a, b Diagnostic) int {
		return cmp.Compare(a.Line, b.Line)
	})

	return diags
}
