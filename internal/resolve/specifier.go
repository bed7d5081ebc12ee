// Package resolve turns an import specifier written in one file into the
// absolute path of the indexed file it refers to.
package resolve

import (
	"path/filepath"
	"strings"
)

// Kind classifies a specifier.
type Kind int

const (
	// Relative specifiers start with "./" or "../" and resolve against the
	// requesting file's directory.
	Relative Kind = iota
	// Absolute specifiers are file-system paths inside a configured root.
	Absolute
	// Bare specifiers are module names looked up in the index registry.
	Bare
)

func (k Kind) String() string {
	switch k {
	case Relative:
		return "relative"
	case Absolute:
		return "absolute"
	case Bare:
		return "bare"
	default:
		return "unknown"
	}
}

// Specifier is a raw import string together with its classification.
type Specifier struct {
	Raw  string
	Kind Kind
}

// Classify inspects raw once and tags it with its Kind.
func Classify(raw string) Specifier {
	switch {
	case raw == "." || raw == ".." ||
		strings.HasPrefix(raw, "./") || strings.HasPrefix(raw, "../"):
		return Specifier{Raw: raw, Kind: Relative}
	case filepath.IsAbs(raw) || strings.HasPrefix(raw, "/"):
		return Specifier{Raw: raw, Kind: Absolute}
	default:
		return Specifier{Raw: raw, Kind: Bare}
	}
}
