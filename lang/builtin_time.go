package lang

import (
	"strconv"
	"strings"
	"time"
)

const (
	defaultTimeLayout = time.TimeOnly
	defaultDateLayout = time.DateOnly
)

// namedLayouts maps layout names accepted by time and date to Go layouts.
var namedLayouts = map[string]string{
	"rfc3339":  time.RFC3339,
	"rfc1123":  time.RFC1123,
	"ansic":    time.ANSIC,
	"unixdate": time.UnixDate,
	"kitchen":  time.Kitchen,
	"datetime": time.DateTime,
	"date":     time.DateOnly,
	"time":     time.TimeOnly,
	"iso":      "2006-01-02T15:04:05Z07:00",
	"stamp":    time.Stamp,
}

func registerTimeBuiltins(r *Registry) {
	r.builtin("time", timeFunc(defaultTimeLayout))
	r.builtin("date", timeFunc(defaultDateLayout))
	r.builtin("timestamp", func(_ *Context, _ *Args) (string, error) {
		return strconv.FormatInt(now().Unix(), 10), nil
	})
}

// now is replaced in tests.
var now = time.Now

// timeFunc returns a handler formatting the current time with the layout
// given as argument, or def when there is none. Layouts are Go reference
// layouts or one of the names in namedLayouts; "unix" and "unixmilli" give
// epoch counts.
func timeFunc(def string) HandlerFunc {
	return func(_ *Context, a *Args) (string, error) {
		t := now()
		layout := a.String()

		switch key := strings.ToLower(layout); {
		case layout == "":
			layout = def
		case key == "unix":
			return strconv.FormatInt(t.Unix(), 10), nil
		case key == "unixmilli":
			return strconv.FormatInt(t.UnixMilli(), 10), nil
		case namedLayouts[key] != "":
			layout = namedLayouts[key]
		}

		return t.Format(layout), nil
	}
}
