package lang

// registerBuiltins installs every built-in directive.
func registerBuiltins(r *Registry) {
	registerCoreBuiltins(r)
	registerMathBuiltins(r)
	registerStringBuiltins(r)
	registerTypeBuiltins(r)
	registerFileBuiltins(r)
	registerTimeBuiltins(r)
	registerIOBuiltins(r)
}

const (
	valTrue  = "true"
	valFalse = "false"
	valZero  = "0"
)

func boolString(b bool) string {
	if b {
		return valTrue
	}

	return valFalse
}
