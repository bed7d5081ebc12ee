package index

import (
	"bytes"
	"regexp"
)

// ModuleNameTag is the docblock tag a file uses to declare its module name.
const ModuleNameTag = "@providesModule"

var moduleNamePattern = regexp.MustCompile(`(?:^|\s)` + ModuleNameTag + `\s+([^\s*]+)`)

// ParseModuleName returns the module name declared in the leading docblock of
// content, or "" when there is none. Only a "/** ... */" comment at the very
// top of the file counts; a "#!" line may precede it.
func ParseModuleName(content []byte) string {
	src := bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	if bytes.HasPrefix(src, []byte("#!")) {
		nl := bytes.IndexByte(src, '\n')
		if nl == -1 {
			return ""
		}
		src = src[nl+1:]
	}
	src = bytes.TrimLeft(src, " \t\r\n")
	if !bytes.HasPrefix(src, []byte("/**")) {
		return ""
	}
	end := bytes.Index(src, []byte("*/"))
	if end == -1 {
		return ""
	}

	match := moduleNamePattern.FindSubmatch(src[3:end])
	if match == nil {
		return ""
	}
	return string(match[1])
}
