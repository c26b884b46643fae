package lang

import (
	"errors"
	"testing"
)

func TestIsArithmetic(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{"1 + 2", true},
		{"(3)*4", true},
		{"-5", true},
		{"42", false},
		{"John Smith-Jones", false},
		{"a-b", false},
		{"§add[1; 2]", false},
		{"2024-01-01", true},
	}

	for _, tt := range tests {
		if got := IsArithmetic(tt.s); got != tt.want {
			t.Errorf("IsArithmetic(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
}

func TestEvalArithmetic(t *testing.T) {
	tests := []struct {
		s       string
		want    float64
		wantErr bool
	}{
		{"2+3", 5, false},
		{"(1 + 2) * 3", 9, false},
		{"7 / 2", 3.5, false},
		{"-5 + 1", -4, false},
		{"10 - 2 - 3", 5, false},
		{"1.5 * 2", 3, false},
		{"x = 2 + 3", 5, false},
		{"1 / 0", 0, true},
		{"2 +", 0, true},
		{"()", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.s, func(t *testing.T) {
			got, err := EvalArithmetic(tt.s)
			if (err != nil) != tt.wantErr {
				t.Fatalf("EvalArithmetic(%q) error = %v, wantErr %v", tt.s, err, tt.wantErr)
			}

			if err != nil {
				if !errors.Is(err, ErrNotNumeric) {
					t.Errorf("error = %v, want ErrNotNumeric", err)
				}

				return
			}

			if got != tt.want {
				t.Errorf("EvalArithmetic(%q) = %v, want %v", tt.s, got, tt.want)
			}
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		s       string
		want    float64
		wantErr bool
	}{
		{" 42 ", 42, false},
		{"-3.25", -3.25, false},
		{"1e3", 1000, false},
		{"1+1", 2, false},
		{"NaN", 0, true},
		{"Inf", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseNumber(tt.s)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseNumber(%q) error = %v, wantErr %v", tt.s, err, tt.wantErr)

			continue
		}

		if got != tt.want {
			t.Errorf("ParseNumber(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	// Variables, so the sum is rounded at run time like any float64 sum.
	a, b := 0.1, 0.2

	tests := []struct {
		f    float64
		want string
	}{
		{5, "5"},
		{-7, "-7"},
		{2.5, "2.5"},
		{a + b, "0.30000000000000004"},
		{1e15, "1000000000000000"},
		{1e20, "100000000000000000000"},
	}

	for _, tt := range tests {
		if got := FormatNumber(tt.f); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.f, got, tt.want)
		}
	}
}
