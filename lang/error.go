package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrValidation       = NewError("validation failed")
	ErrRequireNotFound  = NewError("required file not found")
	ErrRequireCycle     = NewError("require cycle")
	ErrRunawayLoop      = NewError("loop iteration limit reached")
	ErrDivideByZero     = NewError("division by zero")
	ErrNotNumeric       = NewError("not a number")
	ErrUnknownDirective = NewError("unknown directive")
	ErrInvalidVariable  = NewError("invalid variable name")
	ErrInvalidJSON      = NewError("invalid JSON")
	ErrFileRead         = NewError("failed to read file")
	ErrFileWrite        = NewError("failed to write file")
	ErrNestingDepth     = NewError("maximum nesting depth exceeded")
	ErrInvalidPlugin    = NewError("invalid plugin")
	ErrArgCount         = NewError("wrong number of arguments")
	ErrCondition        = NewError("invalid condition")
	ErrControlFlow      = NewError("control statement outside loop")
	ErrHandlerPanic     = NewError("directive handler panicked")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// "<msg>: <err>", "<msg>", "<err>", or "" depending on which are set.
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the same sentinel as e, so that values
// derived with [Error.With] and [Error.Wrap] still match their origin.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.msg == "" {
		return false
	}

	return e.msg == t.msg && (t.err == nil || errors.Is(e.err, t.err))
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Attrs returns the structured attributes attached to the error.
func (e *Error) Attrs() []slog.Attr { return e.attrs }

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// Severity classifies a [Diagnostic].
type Severity int

const (
	SeverityWarning Severity = iota // warning
	SeverityError                   // error
)

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}

	return "error"
}

// Diagnostic is a problem reported while validating or running a program.
// Runtime diagnostics never stop execution; the offending directive yields
// a safe value instead.
type Diagnostic struct {
	Severity  Severity
	Line      int    // 1-based source line, 0 if unknown
	Directive string // directive name, empty for text statements
	Err       error
}

// Error implements the error interface.
func (d Diagnostic) Error() string {
	var b strings.Builder

	if d.Line > 0 {
		b.WriteString("line ")
		b.WriteString(strconv.Itoa(d.Line))
		b.WriteString(": ")
	}

	if d.Directive != "" {
		b.WriteString(d.Directive)
		b.WriteString(": ")
	}

	if d.Err != nil {
		b.WriteString(d.Err.Error())

		var e *Error
		if errors.As(d.Err, &e) && len(e.attrs) > 0 {
			b.WriteString(" (")

			for i, a := range e.attrs {
				if i > 0 {
					b.WriteString(", ")
				}

				b.WriteString(a.String())
			}

			b.WriteString(")")
		}
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (d Diagnostic) Unwrap() error { return d.Err }

// LogValue implements slog.LogValuer.
func (d Diagnostic) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("severity", d.Severity.String())}

	if d.Line > 0 {
		attrs = append(attrs, slog.Int("line", d.Line))
	}

	if d.Directive != "" {
		attrs = append(attrs, slog.String("directive", d.Directive))
	}

	if d.Err != nil {
		attrs = append(attrs, slog.Any("error", d.Err))
	}

	return slog.GroupValue(attrs...)
}

// ValidationError collects every structural problem found in a program.
type ValidationError struct {
	Diagnostics []Diagnostic
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Diagnostics) == 0 {
		return ErrValidation.Error()
	}

	part := make([]string, 0, len(e.Diagnostics))
	for _, d := range e.Diagnostics {
		part = append(part, d.Error())
	}

	return ErrValidation.Error() + ":\n\t" + strings.Join(part, "\n\t")
}

// Unwrap returns [ErrValidation] so callers can test with errors.Is.
func (e *ValidationError) Unwrap() error { return ErrValidation }
