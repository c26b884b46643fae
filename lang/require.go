package lang

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ardnew/mung"

	"github.com/ardnew/sigil/log"
	"github.com/ardnew/sigil/pkg"
)

// requireDirective is the inclusion directive.
const requireDirective = "require"

// maxRequireDepth bounds nested inclusion independently of cycle detection.
const maxRequireDepth = 64

// CyclePolicy decides what happens when a file is required again.
type CyclePolicy int

const (
	// CycleSkip replaces a repeated inclusion with a marker comment.
	CycleSkip CyclePolicy = iota
	// CycleError aborts resolution with [ErrRequireCycle].
	CycleError
)

// String returns the lowercase name of the policy.
func (p CyclePolicy) String() string {
	if p == CycleError {
		return "error"
	}

	return "skip"
}

// ParseCyclePolicy parses "skip" or "error". Anything else is [CycleSkip].
func ParseCyclePolicy(s string) CyclePolicy {
	if strings.EqualFold(strings.TrimSpace(s), "error") {
		return CycleError
	}

	return CycleSkip
}

// CyclePolicies returns the names of all cycle policies.
func CyclePolicies() []string {
	return []string{CycleSkip.String(), CycleError.String()}
}

// SearchPathEnv names the environment variable listing extra directories
// searched by require.
var SearchPathEnv = pkg.Prefix() + "_PATH"

// resolver splices required files into source text.
type resolver struct {
	ext    string
	base   string
	search []string
	policy CyclePolicy
	seen   map[string]bool
	logger log.Logger
	depth  int
}

// resolve replaces every static require line in text with the resolved
// content of the named file. On failure the text resolved so far is
// returned with the error.
func (r *resolver) resolve(text string) (string, error) {
	if !strings.Contains(text, SigilString+requireDirective) {
		return text, nil
	}

	if r.depth >= maxRequireDepth {
		return "", ErrNestingDepth.With(slog.Int("require", r.depth))
	}

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		target, ok := staticRequire(line)
		if !ok {
			out = append(out, line)

			continue
		}

		path, err := r.locate(target)
		if err != nil {
			return strings.Join(out, "\n"), err
		}

		if r.seen[path] {
			if r.policy == CycleError {
				return strings.Join(out, "\n"),
					ErrRequireCycle.With(slog.String("path", path))
			}

			r.logger.Debug("require skipped", slog.String("path", path))
			out = append(out, skipMarker(path))

			continue
		}

		r.seen[path] = true

		content, err := r.include(path)
		if err != nil {
			return strings.Join(out, "\n"), err
		}

		out = append(out, content)
	}

	return strings.Join(out, "\n"), nil
}

// include reads path and resolves its own inclusions. Relative requires
// inside it still resolve against the base directory.
func (r *resolver) include(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", ErrFileRead.Wrap(err).With(slog.String("path", path))
	}

	r.logger.Debug("require", slog.String("path", path))

	r.depth++
	defer func() { r.depth-- }()

	return r.resolve(strings.TrimSuffix(string(data), "\n"))
}

// locate finds the file named by a require argument, returning its absolute
// path.
func (r *resolver) locate(target string) (string, error) {
	name := target
	if filepath.Ext(name) == "" && r.ext != "" {
		name += r.ext
	}

	name = expandHome(name)

	if filepath.IsAbs(name) {
		if isFile(name) {
			return filepath.Clean(name), nil
		}

		return "", ErrRequireNotFound.With(slog.String("path", target))
	}

	for _, dir := range r.dirs() {
		p := filepath.Join(dir, name)
		if !isFile(p) {
			continue
		}

		abs, err := filepath.Abs(p)
		if err != nil {
			return "", ErrRequireNotFound.Wrap(err).With(slog.String("path", target))
		}

		return abs, nil
	}

	return "", ErrRequireNotFound.With(slog.String("path", target))
}

// dirs returns the directories searched for a relative require: the base
// directory, the configured search path, then the directories listed in
// [SearchPathEnv].
func (r *resolver) dirs() []string {
	base := r.base
	if base == "" {
		base = "."
	}

	dirs := append([]string{base}, r.search...)

	for _, d := range filepath.SplitList(searchPath(os.Getenv(SearchPathEnv))) {
		if d != "" && !slices.Contains(dirs, d) {
			dirs = append(dirs, d)
		}
	}

	return dirs
}

// searchPath normalizes a list of directories, dropping entries that are
// not existing directories.
func searchPath(list string) string {
	if list == "" {
		return ""
	}

	return mung.Make(
		mung.WithSubjectItems(list),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithFilter(isDir),
	).String()
}

// staticRequire reports whether line is a require directive whose path can
// be resolved before the program runs.
func staticRequire(line string) (string, bool) {
	name, args, ok := directiveLine(line)
	if !ok || name != requireDirective {
		return "", false
	}

	target := unquote(args)
	if target == "" || strings.ContainsAny(target, SigilString+string(VariablePrefix)) {
		return "", false
	}

	return target, true
}

// Unresolved returns the targets of the static require directives left in
// text.
func Unresolved(text string) []string {
	var left []string

	for line := range strings.SplitSeq(text, "\n") {
		if target, ok := staticRequire(line); ok {
			left = append(left, target)
		}
	}

	return left
}

func skipMarker(path string) string {
	return fmt.Sprintf("%c %s %s: already included", CommentPrefix, requireDirective, path)
}

func isFile(path string) bool {
	fi, err := os.Stat(path)

	return err == nil && fi.Mode().IsRegular()
}

func isDir(path string) bool {
	fi, err := os.Stat(path)

	return err == nil && fi.IsDir()
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
