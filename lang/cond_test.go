package lang

import "testing"

func TestCondition(t *testing.T) {
	vars := map[string]string{
		"x":     "10",
		"y":     "2.5",
		"name":  "bob",
		"empty": "",
		"flag":  "true",
	}

	tests := []struct {
		cond string
		want bool
	}{
		{"5 > 3", true},
		{"5 < 3", false},
		{"$x == 10", true},
		{"$x === 10", true},
		{"$x !== 10", false},
		{"$x > 5 && $x < 20", true},
		{"$x > 5 and $y > 3", false},
		{"$y * 4 == $x", true},
		{`$name == "bob"`, true},
		{`"$name" == "bob"`, true},
		{`$name contains "o"`, true},
		{`$name startsWith "b" || false`, true},
		{"not true", false},
		{"!($x == 10)", false},
		{"$flag", true},
		{"§isNumeric[$x]", true},
		{"§isNumeric[$name]", false},
		{"§isEven[$x] && $x > 1", true},
		{"§len[$name] == 3", true},
		{"true", true},
		{"0", false},
		{"1", true},
		{"", false},
		{"   ", false},
		{"$undefined > 1", false},
		{"1 +", false},
		{"len($name) > 1", false},
		{"$x > ", false},
	}

	for _, tt := range tests {
		t.Run(tt.cond, func(t *testing.T) {
			c := newTestContext(t, vars)
			if got := c.Condition(tt.cond); got != tt.want {
				t.Errorf("Condition(%q) = %v, want %v", tt.cond, got, tt.want)
			}
		})
	}
}

func TestConditionValuesAreNotCode(t *testing.T) {
	c := newTestContext(t, map[string]string{"v": "1) || (1"})

	if c.Condition("$v == 2") {
		t.Error("substituted value changed the expression")
	}

	c = newTestContext(t, map[string]string{"v": "1 || true"})

	if c.Condition("$v == 2") {
		t.Error("substituted value changed the expression")
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		v    any
		want bool
	}{
		{true, true},
		{false, false},
		{nil, false},
		{0, false},
		{3, true},
		{0.0, false},
		{-1.5, true},
		{"", false},
		{"0", false},
		{"false", false},
		{"no", true},
	}

	for _, tt := range tests {
		if got := Truthy(tt.v); got != tt.want {
			t.Errorf("Truthy(%#v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}
