package lang

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ardnew/sigil/log"
)

// run executes src and returns its output and result. It fails the test if
// the program does not run.
func run(t *testing.T, src string, opts ...Option) (string, *Result) {
	t.Helper()

	var out bytes.Buffer

	opts = append([]Option{WithOutput(&out), WithLogger(log.Discard())}, opts...)

	res, err := New(opts...).Run(t.Context(), src)
	if err != nil {
		t.Fatalf("Run(%q) error = %v", src, err)
	}

	return out.String(), res
}

// hasDiag reports whether res holds a diagnostic matching target.
func hasDiag(res *Result, target error) bool {
	for _, d := range res.Diagnostics {
		if errors.Is(d.Err, target) {
			return true
		}
	}

	return false
}

// newTestContext returns a context bound to a fresh session.
func newTestContext(t *testing.T, vars map[string]string) *Context {
	t.Helper()

	s := New(WithLogger(log.Discard()), WithOutput(&bytes.Buffer{})).NewSession()
	s.ctx.ctx = t.Context()

	for k, v := range vars {
		if err := s.Vars().Set(k, v); err != nil {
			t.Fatalf("Set(%q) error = %v", k, err)
		}
	}

	return s.ctx
}
