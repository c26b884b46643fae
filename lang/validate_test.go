package lang

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	type want struct {
		line int
		err  error
	}

	tests := []struct {
		name string
		src  []string
		want []want
	}{
		{
			name: "valid",
			src: []string{
				"§if[true]", "§while[false]", "§endwhile", "§elseif[false]",
				"§for[i; 0; 1]", "§endfor", "§else", "§endif",
			},
		},
		{
			name: "unclosed",
			src:  []string{"§if[true]", "x"},
			want: []want{{1, ErrUnclosedBlock}},
		},
		{
			name: "stray terminator",
			src:  []string{"x", "§endfor"},
			want: []want{{2, ErrUnexpectedTerminator}},
		},
		{
			name: "mismatched",
			src:  []string{"§while[true]", "§endif"},
			want: []want{{2, ErrMismatchedTerminator}},
		},
		{
			name: "orphan else",
			src:  []string{"§for[i; 0; 2]", "§else", "§endfor"},
			want: []want{{2, ErrOrphanBranch}},
		},
		{
			name: "elseif after else",
			src:  []string{"§if[a]", "§else", "§elseif[b]", "§endif"},
			want: []want{{3, ErrBranchAfterElse}},
		},
		{
			name: "brackets",
			src:  []string{"§log[a", "b]", `"[" is fine`},
			want: []want{{1, ErrUnbalancedBrackets}, {2, ErrUnbalancedBrackets}},
		},
		{
			name: "all reported in order",
			src:  []string{"§endwhile", "§if[x]", "§log[", "§while[y]"},
			want: []want{
				{1, ErrUnexpectedTerminator},
				{2, ErrUnclosedBlock},
				{3, ErrUnbalancedBrackets},
				{4, ErrUnclosedBlock},
			},
		},
		{
			name: "comments ignored",
			src:  []string{"# §endif", "§if[x]", "  # §endfor", "§endif"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(strings.Join(tt.src, "\n"))

			if len(tt.want) == 0 {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}

				return
			}

			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Validate() error = %v, want *ValidationError", err)
			}

			if !errors.Is(err, ErrValidation) {
				t.Errorf("error does not match ErrValidation")
			}

			if len(ve.Diagnostics) != len(tt.want) {
				t.Fatalf("diagnostics = %v, want %d", ve.Diagnostics, len(tt.want))
			}

			for i, w := range tt.want {
				d := ve.Diagnostics[i]
				if d.Line != w.line || !errors.Is(d.Err, w.err) {
					t.Errorf("diagnostic %d = %v, want line %d %v", i, d, w.line, w.err)
				}
			}
		})
	}
}
