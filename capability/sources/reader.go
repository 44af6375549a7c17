// Package sources reads capability declarations from the files a host
// installation ships. Each reader either returns a usable set or
// ErrNotUsable; it never returns a partial or suspect result.
package sources

import (
	"errors"
	"regexp"

	"github.com/reglet-dev/extcompat/capability"
)

// ErrNotUsable is returned when a source file is missing, unreadable,
// malformed or does not carry enough evidence to be trusted.
var ErrNotUsable = errors.New("capability source not usable")

// DefaultNoiseThreshold is the minimum number of distinct declarations a
// bundle must yield before its result is trusted.
const DefaultNoiseThreshold = 20

// declarationPattern matches `name: { version: <int>` with optional quotes
// around the key, in both pretty-printed and minified form.
var declarationPattern = regexp.MustCompile(
	`["']?([A-Za-z][A-Za-z0-9_]*)["']?\s*:\s*\{\s*version\s*:\s*\d`,
)

// denylist holds structural tokens that can match the declaration pattern
// without being capability names.
var denylist = map[string]struct{}{
	"version":  {},
	"proposal": {},
	"value":    {},
	"exports":  {},
	"default":  {},
}

// Reader parses one candidate file into a capability set.
type Reader interface {
	Read(path string) (capability.Set, error)
}

// ReaderFunc adapts a function to the Reader interface.
type ReaderFunc func(path string) (capability.Set, error)

// Read calls f(path).
func (f ReaderFunc) Read(path string) (capability.Set, error) {
	return f(path)
}

// ExtractDeclarations returns every distinct declared capability name found
// in content, minus denylisted tokens.
func ExtractDeclarations(content []byte) capability.Set {
	matches := declarationPattern.FindAllSubmatch(content, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		name := string(m[1])
		if _, skip := denylist[name]; skip {
			continue
		}
		names = append(names, name)
	}
	return capability.NewSet(names...)
}
