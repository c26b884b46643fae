package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdout returns the writer kong was configured with, or os.Stdout.
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// stdin is read by scripts named "-".
var stdin io.Reader = os.Stdin

// Status receives the process exit status chosen by a command.
type Status struct {
	Code int
}

// script is one program named on the command line.
type script struct {
	name string // as given
	path string // resolved path, empty for stdin
}

func (s script) isStdin() bool { return s.path == "" }

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// collectScripts resolves the given sources in order.
//
// Sources are deduplicated by resolving symlinks and comparing device/inode
// pairs. All occurrences of "-" are replaced with a single stdin script
// placed last. Paths that cannot be resolved are kept as given so that
// running them reports the error.
func collectScripts(sources []string) []script {
	if len(sources) == 0 {
		return nil
	}

	scripts := make([]script, 0, len(sources))
	seen := make(map[fileKey]struct{})

	var stdinKey fileKey

	stdinKnown := false
	if info, err := os.Stdin.Stat(); err == nil {
		stdinKey, stdinKnown = makeFileKey(info)
	}

	hasStdin := false

	for _, src := range sources {
		if src == stdinSource {
			hasStdin = true

			continue
		}

		path, key, ok := resolveFile(src)
		if !ok {
			scripts = append(scripts, script{name: src, path: src})

			continue
		}

		// Stdin may be named as a file, e.g. /dev/stdin.
		if stdinKnown && key == stdinKey {
			hasStdin = true

			continue
		}

		if _, exists := seen[key]; exists {
			continue
		}

		seen[key] = struct{}{}
		scripts = append(scripts, script{name: src, path: path})
	}

	if hasStdin {
		scripts = append(scripts, script{name: stdinSource})
	}

	return scripts
}

// resolveFile returns the symlink-free absolute path of the file at path
// and its identity. The result is false if the file cannot be examined.
func resolveFile(path string) (string, fileKey, bool) {
	// Resolve to absolute path to handle relative path duplicates.
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fileKey{}, false
	}

	// Resolve symlinks to their target.
	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return "", fileKey{}, false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", fileKey{}, false
	}

	key, ok := makeFileKey(info)
	if !ok {
		return "", fileKey{}, false
	}

	return resolved, key, true
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}
