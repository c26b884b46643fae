package lang

import (
	"cmp"
	"log/slog"
	"maps"
	"regexp"
	"slices"
	"strings"
)

// Vars is the flat variable store of one program run.
type Vars struct {
	values map[string]string
	ref    *regexp.Regexp // rebuilt when the set of names changes
}

// NewVars returns an empty variable store.
func NewVars() *Vars {
	return &Vars{values: make(map[string]string)}
}

// Get returns the value bound to name.
func (v *Vars) Get(name string) (string, bool) {
	val, ok := v.values[name]

	return val, ok
}

// Set binds name to value, replacing any previous value.
func (v *Vars) Set(name, value string) error {
	if !IsValidName(name) {
		return ErrInvalidVariable.With(slog.String("name", name))
	}

	if _, ok := v.values[name]; !ok {
		v.ref = nil
	}

	v.values[name] = value

	return nil
}

// Delete removes name from the store.
func (v *Vars) Delete(name string) {
	if _, ok := v.values[name]; ok {
		delete(v.values, name)
		v.ref = nil
	}
}

// Len returns the number of defined variables.
func (v *Vars) Len() int { return len(v.values) }

// Names returns the defined names in lexical order.
func (v *Vars) Names() []string {
	return slices.Sorted(maps.Keys(v.values))
}

// Map returns a copy of the store.
func (v *Vars) Map() map[string]string { return maps.Clone(v.values) }

// pattern returns a regexp matching any defined variable reference. The
// alternation lists longer names first, so a name that prefixes another
// never matches part of it.
func (v *Vars) pattern() *regexp.Regexp {
	if v.ref != nil || len(v.values) == 0 {
		return v.ref
	}

	names := v.Names()
	slices.SortStableFunc(names, func(a, b string) int {
		return cmp.Compare(len(b), len(a))
	})

	for i, name := range names {
		names[i] = regexp.QuoteMeta(name)
	}

	v.ref = regexp.MustCompile(`\$(` + strings.Join(names, "|") + `)`)

	return v.ref
}

// Substitute replaces every reference to a defined variable in s with its
// value. References to undefined names are left as they are.
func (v *Vars) Substitute(s string) string {
	return v.SubstituteFunc(s, func(name string) string {
		return v.values[name]
	})
}

// SubstituteFunc replaces every reference to a defined variable in s with
// the result of fn applied to the variable's name.
func (v *Vars) SubstituteFunc(s string, fn func(name string) string) string {
	if strings.IndexByte(s, VariablePrefix) < 0 {
		return s
	}

	re := v.pattern()
	if re == nil {
		return s
	}

	return re.ReplaceAllStringFunc(s, func(m string) string {
		return fn(m[1:])
	})
}
