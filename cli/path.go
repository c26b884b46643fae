package cli

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/ardnew/sigil/pkg"
)

const (
	baseConfig  = "config.yaml" // YAML flag defaults
	baseLibrary = "lib"         // scripts found by require after --path
)

var defaultDirMode os.FileMode = 0o700

// exeRename maps executable base names to the prefix used in their place.
// A dlv build is named "__debug_bin" followed by digits.
var exeRename = []struct {
	pattern *regexp.Regexp
	repl    string
}{
	{regexp.MustCompile(`^__debug_bin\d+$`), pkg.Name},
	{regexp.MustCompile(`^\.+`), ""},
}

// basePrefix names the per-user directories. It is the executable's base name
// without extension.
var basePrefix = sync.OnceValue(func() string { return exePrefix(executable()) })

func executable() string {
	if exe, err := os.Executable(); err == nil {
		return exe
	}

	return os.Args[0]
}

func exePrefix(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	for _, r := range exeRename {
		name = r.pattern.ReplaceAllString(name, r.repl)
	}

	return name
}

// userDir returns the per-user directory beneath the first of these that
// resolves: the platform directory from base, the hidden directory under
// $HOME, and the working directory.
func userDir(base func() (string, error), hidden string) string {
	dir, err := base()
	if err != nil {
		dir, err = os.UserHomeDir()
		if err == nil {
			dir = filepath.Join(dir, hidden)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, basePrefix())
}

var (
	configDir = sync.OnceValue(func() string { return userDir(os.UserConfigDir, ".config") })
	cacheDir  = sync.OnceValue(func() string { return userDir(os.UserCacheDir, ".cache") })
)

// configPath joins elem onto the configuration directory.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}

// mkdirAllRequired creates every per-user directory the commands expect.
func mkdirAllRequired() error {
	for _, dir := range []string{configDir(), configPath(baseLibrary), cacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
