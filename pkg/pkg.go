//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

// version is the raw content of the VERSION file embedded at build time.
//
//go:embed VERSION
var version string

// Version is the semantic version of the sigil module.
// It is printed by the CLI's --version flag and recorded in run logs.
var Version = strings.TrimSpace(version)

const (
	// Name is the canonical command and module identifier used across the
	// project. For example, it appears in help text and default config paths.
	Name = "sigil"
	// Description is a short, human-readable summary of the project used in
	// help output and documentation.
	Description = "Directive scripting language interpreter"
	// Extension is the default file extension of sigil source files.
	Extension = ".sig"
)

// Prefix returns the upper-case prefix of environment variables read by
// sigil, such as SIGIL_PATH.
func Prefix() string { return strings.ToUpper(Name) }

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	// Name is the author's preferred name or handle.
	Name string
	// Email is the author's contact email address.
	Email string
}

// String formats the author as "Name <Email>".
func (a AuthorInfo) String() string {
	if a.Email == "" {
		return a.Name
	}

	return a.Name + " <" + a.Email + ">"
}

// Author lists the primary author(s) of the project for display in metadata.
//
//nolint:gochecknoglobals
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
