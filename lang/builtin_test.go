package lang

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/ardnew/sigil/log"
)

func TestBuiltins(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
		diag error
	}{
		{name: "add", src: "§add[2; 3]", want: "5"},
		{name: "add float", src: "§add[1.5; 2]", want: "3.5"},
		{name: "sub", src: "§sub[10; 3; 2]", want: "5"},
		{name: "mul", src: "§mul[2; 3; 4]", want: "24"},
		{name: "div", src: "§div[7; 2]", want: "3.5"},
		{name: "div by zero", src: "§div[5; 0]", want: "0", diag: ErrDivideByZero},
		{name: "mod", src: "§mod[7; 3]", want: "1"},
		{name: "mod by zero", src: "§mod[7; 0]", want: "0", diag: ErrDivideByZero},
		{name: "not numeric", src: "§add[x; 1]", want: "0", diag: ErrNotNumeric},
		{name: "one operand", src: "§add[1]", want: "0", diag: ErrArgCount},
		{name: "nested", src: "§add[§mul[2; 3]; §sub[5; 1]]", want: "10"},
		{name: "round", src: "§round[3.14159; 2]", want: "3.14"},
		{name: "round half", src: "§round[2.5]", want: "3"},
		{name: "abs", src: "§abs[-4]", want: "4"},
		{name: "floor", src: "§floor[2.7]", want: "2"},
		{name: "ceil", src: "§ceil[2.1]", want: "3"},
		{name: "calc", src: "§calc[(2 + 3) * 4]", want: "20"},

		{name: "upper", src: "§upper[abc]", want: "ABC"},
		{name: "lower", src: "§lower[ÀB]", want: "àb"},
		{name: "trim", src: `§trim["  x  "]`, want: "x"},
		{name: "len", src: "§len[héllo]", want: "5"},
		{name: "contains", src: "§contains[hello; ell]", want: "true"},
		{name: "startsWith", src: "§startsWith[hello; lo]", want: "false"},
		{name: "endsWith", src: "§endsWith[hello; lo]", want: "true"},
		{name: "equalsIgnoreCase", src: "§equalsIgnoreCase[ABC; abc]", want: "true"},
		{name: "replace", src: "§replace[a-b-c; -; +]", want: "a+b+c"},
		{name: "replace empty", src: "§replace[abc; ; x]", want: "abc"},
		{name: "concat", src: "§concat[a; b; c]", want: "abc"},
		{name: "substr", src: "§substr[héllo; 1; 3]", want: "éll"},
		{name: "substr negative", src: "§substr[hello; -2]", want: "lo"},
		{name: "indexOf", src: "§indexOf[héllo; l]", want: "2"},
		{name: "indexOf missing", src: "§indexOf[hello; z]", want: "-1"},

		{name: "typeOf", src: "§typeOf[1.5]", want: "float"},
		{name: "isNaN empty", src: "§isNaN[]", want: "true"},
		{name: "isEven", src: "§isEven[-4]", want: "true"},
		{name: "isOdd", src: "§isOdd[2.5]", want: "false"},
		{name: "isEmpty", src: "§isEmpty[]", want: "true"},

		{name: "var", src: "§var[x; 2 * 3]\n$x", want: "6"},
		{name: "var quoted", src: "§var[d; \"2024-01-01\"]\n$d", want: "2024-01-01"},
		{name: "var text", src: "§var[n; John Smith-Jones]\n$n", want: "John Smith-Jones"},
		{name: "var semicolons", src: "§var[s; \"a; b\"]\n$s", want: "a; b"},
		{name: "var bad name", src: "§var[1x; 2]\nok", want: "ok", diag: ErrInvalidVariable},
		{name: "isSet", src: "§var[x; 1]\n§isSet[x] §isSet[y]", want: "true false"},
		{name: "unset", src: "§var[x; 1]\n§unset[x]\n§isSet[x] $x", want: "false $x"},
		{name: "print", src: "§print[a]§print[b]", want: "ab"},
		{name: "exit not numeric", src: "§exit[soon]\nnever", want: "", diag: ErrNotNumeric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := tt.src
			if !strings.Contains(src, "\n") && !strings.HasPrefix(src, "§print") {
				src = "§log[" + src + "]"
			}

			out, res := run(t, src)

			want := tt.want + "\n"
			if tt.want == "" {
				want = ""
			}

			if out != want {
				t.Errorf("output = %q, want %q", out, want)
			}

			switch {
			case tt.diag != nil && !hasDiag(res, tt.diag):
				t.Errorf("diagnostics = %v, want %v", res.Diagnostics, tt.diag)
			case tt.diag == nil && len(res.Diagnostics) > 0:
				t.Errorf("unexpected diagnostics %v", res.Diagnostics)
			}
		})
	}
}

func TestRandom(t *testing.T) {
	seen := make(map[string]bool)

	for range 200 {
		out, res := run(t, "§log[§random[1; 3]]")
		if !res.OK() {
			t.Fatalf("diagnostics = %v", res.Diagnostics)
		}

		seen[strings.TrimSpace(out)] = true
	}

	for k := range seen {
		if !slices.Contains([]string{"1", "2", "3"}, k) {
			t.Errorf("random[1; 3] = %q", k)
		}
	}

	out, _ := run(t, "§log[§random[]]")

	f, err := ParseNumber(out)
	if err != nil || f < 0 || f >= 1 {
		t.Errorf("random[] = %q", out)
	}
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		s    string
		want string
	}{
		{"true", "bool"},
		{"false", "bool"},
		{"42", "int"},
		{"-7", "int"},
		{"3.14", "float"},
		{"1e3", "float"},
		{`{"a": 1}`, "json"},
		{"[1, 2]", "json"},
		{`"quoted"`, "json"},
		{"hello", "string"},
		{"", "string"},
	}

	for _, tt := range tests {
		if got := TypeOf(tt.s); got != tt.want {
			t.Errorf("TypeOf(%q) = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		fn   func(string) bool
		name string
		yes  []string
		no   []string
	}{
		{IsNumeric, "IsNumeric", []string{"1", " 2.5 ", "-3", "1e2"}, []string{"", "x", "NaN", "Inf"}},
		{IsText, "IsText", []string{"x", "a1"}, []string{"", " ", "12"}},
		{IsBool, "IsBool", []string{"true", " false "}, []string{"True", "1", ""}},
		{IsInt, "IsInt", []string{"0", "-12"}, []string{"1.0", "x"}},
		{IsFloat, "IsFloat", []string{"1.5", "1e-3"}, []string{"1", "x"}},
		{IsJSON, "IsJSON", []string{"{}", "[]", "42", `"s"`, "null"}, []string{"", "{", "x"}},
	}

	for _, tt := range tests {
		for _, s := range tt.yes {
			if !tt.fn(s) {
				t.Errorf("%s(%q) = false", tt.name, s)
			}
		}

		for _, s := range tt.no {
			if tt.fn(s) {
				t.Errorf("%s(%q) = true", tt.name, s)
			}
		}
	}
}

// runIn runs src in a session with vars preset.
func runIn(t *testing.T, vars map[string]string, src string) (string, *Result) {
	t.Helper()

	var out bytes.Buffer

	s := New(WithOutput(&out), WithLogger(log.Discard())).NewSession()

	for k, v := range vars {
		if err := s.Vars().Set(k, v); err != nil {
			t.Fatal(err)
		}
	}

	res, err := s.Exec(t.Context(), src)
	if err != nil {
		t.Fatalf("Exec() error = %v", err)
	}

	return out.String(), res
}

func TestFileBuiltins(t *testing.T) {
	dir := t.TempDir()
	vars := map[string]string{
		"p": filepath.Join(dir, "note.txt"),
		"q": filepath.Join(dir, "sub", "new.txt"),
	}

	src := strings.Join([]string{
		`§writeFile[$p; "a;b  c"]`,
		"§log[§readFile[$p]]",
		"§appendFile[$p; !]",
		"§log[§readFile[$p]]",
		"§log[§isFileExist[$p] §isFileExist[$q]]",
		"§log[§createFile[$q; x] §createFile[$q; y]]",
		"§log[§readFile[$q]]",
		"§log[§deleteFile[$q] §isFileExist[$q]]",
	}, "\n")

	out, res := runIn(t, vars, src)

	want := "a;b  c\na;b  c!\ntrue false\ntrue false\nx\ntrue false\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}

	if !res.OK() {
		t.Errorf("diagnostics = %v", res.Diagnostics)
	}

	data, err := os.ReadFile(vars["p"])
	if err != nil || string(data) != "a;b  c!" {
		t.Errorf("file = %q, %v", data, err)
	}

	_, res = runIn(t, map[string]string{"p": filepath.Join(dir, "missing")}, "§readFile[$p]")
	if !hasDiag(res, ErrFileRead) {
		t.Errorf("diagnostics = %v, want ErrFileRead", res.Diagnostics)
	}
}

func TestJSONBuiltins(t *testing.T) {
	vars := map[string]string{"p": filepath.Join(t.TempDir(), "data.json")}
	doc := `{"a": {"b": [1, 2, 3]}, "s": "x"}`

	src := strings.Join([]string{
		"§jsonWrite[$p; " + doc + "]",
		"§log[§jsonRead[$p]]",
		"§log[§jsonGet[$p; a.b[1]]]",
		"§log[§jsonGet[$p; s]]",
		"§log[§jsonGet[$p; a]]",
		"§log[§jsonSet[$p; a.c; \"new\"]]",
		`§log[§jsonSet[{"a":1}; b.c; 2]]`,
		`§log[§jsonGet[[10, 20]; 1]]`,
	}, "\n")

	out, res := runIn(t, vars, src)
	if !res.OK() {
		t.Fatalf("diagnostics = %v", res.Diagnostics)
	}

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("output = %q", out)
	}

	var got, want any
	_ = json.Unmarshal([]byte(lines[0]), &got)
	_ = json.Unmarshal([]byte(doc), &want)

	if !reflect.DeepEqual(got, want) {
		t.Errorf("jsonRead = %s, want %s", lines[0], doc)
	}

	for i, w := range []string{
		"2",
		"x",
		`{"b":[1,2,3]}`,
		`{"a":{"b":[1,2,3],"c":"new"},"s":"x"}`,
		`{"a":1,"b":{"c":2}}`,
		"20",
	} {
		if lines[i+1] != w {
			t.Errorf("line %d = %q, want %q", i+2, lines[i+1], w)
		}
	}

	data, _ := os.ReadFile(vars["p"])
	if !strings.Contains(string(data), `"c": "new"`) {
		t.Errorf("jsonSet did not rewrite the file: %s", data)
	}

	_, res = runIn(t, vars, "§jsonWrite[$p; {broken]")
	if !hasDiag(res, ErrInvalidJSON) {
		t.Errorf("diagnostics = %v, want ErrInvalidJSON", res.Diagnostics)
	}
}

func TestTimeBuiltins(t *testing.T) {
	fixed := time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)

	old := now
	now = func() time.Time { return fixed }

	t.Cleanup(func() { now = old })

	tests := []struct{ src, want string }{
		{"§time[]", "14:05:06"},
		{"§date[]", "2024-03-09"},
		{"§date[rfc3339]", "2024-03-09T14:05:06Z"},
		{"§time[kitchen]", "2:05PM"},
		{"§time[unix]", "1709993106"},
		{"§timestamp[]", "1709993106"},
		{"§date[02/01/2006]", "09/03/2024"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			out, _ := run(t, "v: "+tt.src)
			if out != "v: "+tt.want+"\n" {
				t.Errorf("output = %q, want %q", out, "v: "+tt.want)
			}
		})
	}
}

func TestInput(t *testing.T) {
	src := "§var[name; §input[\"Name? \"]]\n§var[age; §input[]]\nhi $name ($age)\n§log[[§input[]]]"

	out, res := run(t, src, WithInput(strings.NewReader("Ada\n36\n")))

	if want := "Name? hi Ada (36)\n[]\n"; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}

	if !res.OK() {
		t.Errorf("diagnostics = %v", res.Diagnostics)
	}
}

func TestInputAcrossRuns(t *testing.T) {
	var out bytes.Buffer

	interp := New(
		WithOutput(&out),
		WithInput(strings.NewReader("a\nb\n")),
		WithLogger(log.Discard()),
	)

	for range 2 {
		res, err := interp.Run(t.Context(), "§log[§input[]]")
		if err != nil {
			t.Fatal(err)
		}

		if !res.OK() {
			t.Fatalf("diagnostics = %v", res.Diagnostics)
		}
	}

	if want := "a\nb\n"; out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestRandomBounds(t *testing.T) {
	for _, src := range []string{
		"§log[§random[1e19]]",
		"§log[§random[-9e18; 9e18]]",
		"§log[§random[1; 1e300]]",
	} {
		t.Run(src, func(t *testing.T) {
			out, res := run(t, src+"\nafter")

			if want := "0\nafter\n"; out != want {
				t.Errorf("output = %q, want %q", out, want)
			}

			if !hasDiag(res, ErrNotNumeric) {
				t.Errorf("diagnostics = %v, want ErrNotNumeric", res.Diagnostics)
			}
		})
	}

	out, res := run(t, "§log[§random[-9007199254740992; -9007199254740992]]")
	if !res.OK() || out != "-9007199254740992\n" {
		t.Errorf("random at the lower limit = %q, %v", out, res.Diagnostics)
	}
}

func TestHandlerPanicReported(t *testing.T) {
	boom := Plugin{
		Name: "boom",
		Handlers: map[string]Handler{
			"boom": HandlerFunc(func(*Context, *Args) (string, error) {
				panic("kaboom")
			}),
		},
	}

	out, res := run(t, "§log[[§boom[]]]\n§boom\nstill running", WithPlugins(boom))

	if want := "[]\nstill running\n"; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}

	if n := len(res.Errors()); n != 2 || !hasDiag(res, ErrHandlerPanic) {
		t.Errorf("diagnostics = %v, want two ErrHandlerPanic", res.Diagnostics)
	}
}

func TestVarValues(t *testing.T) {
	fixed := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

	old := now
	now = func() time.Time { return fixed }

	t.Cleanup(func() { now = old })

	path := filepath.Join(t.TempDir(), "padded.txt")
	if err := os.WriteFile(path, []byte("  hi  "), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name, src, want string
	}{
		{"call date", "§var[d; §date[]]\n§log[$d]", "2026-10-17"},
		{"variable date", "§var[d; §date[]]\n§var[e; $d]\n§log[$e]", "2026-10-17"},
		{"call with text", "§var[d; on §date[]]\n§log[$d]", "on 2026-10-17"},
		{"phone", "§var[p; §trim[555-0100]]\n§log[$p]", "555-0100"},
		{"written arithmetic", "§var[n; 2 * 3 + 1]\n§log[$n]", "7"},
		{"variable arithmetic", "§var[n; 4]\n§var[n; $n - 1]\n§log[$n]", "3"},
		{"quoted", "§var[n; \"2 * 3\"]\n§log[$n]", "2 * 3"},
		{"call keeps space", "§var[c; §readFile[$p]]\n§log[[$c]]", "[  hi  ]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, res := runIn(t, map[string]string{"p": path}, tt.src)
			if !res.OK() {
				t.Fatalf("diagnostics = %v", res.Diagnostics)
			}

			if out != tt.want+"\n" {
				t.Errorf("output = %q, want %q", out, tt.want+"\n")
			}
		})
	}
}
