// Package capability models the optional API capabilities a host runtime may
// implement and the requirements a published artifact declares against them.
// It includes requirement parsing, the supported-capability set and the
// compatibility gate that compares the two.
package capability

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidRequirement is returned when a requirement string cannot be parsed.
var ErrInvalidRequirement = errors.New("invalid capability requirement")

var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Name identifies a capability. Names are case-sensitive.
type Name string

// Valid reports whether the name matches [A-Za-z][A-Za-z0-9_]*.
func (n Name) Valid() bool {
	return namePattern.MatchString(string(n))
}

// String returns the name as a string.
func (n Name) String() string {
	return string(n)
}

// BaseName strips an optional "@<revision>" suffix from s.
// Everything from the first '@' onwards is discarded.
func BaseName(s string) Name {
	if i := strings.IndexByte(s, '@'); i >= 0 {
		s = s[:i]
	}
	return Name(strings.TrimSpace(s))
}

// Requirement is a capability name with an optional minimum revision,
// serialized as "name" or "name@revision".
//
// The revision is advisory: the gate only checks the base name.
type Requirement struct {
	raw         string
	name        Name
	revision    int
	hasRevision bool
}

// ParseRequirement parses "name" or "name@revision".
// A non-numeric revision is kept in the raw form but reported as absent.
func ParseRequirement(s string) (Requirement, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Requirement{}, fmt.Errorf("%w: empty string", ErrInvalidRequirement)
	}

	name := BaseName(raw)
	if name == "" {
		return Requirement{}, fmt.Errorf("%w: %q has no name", ErrInvalidRequirement, s)
	}

	req := Requirement{raw: raw, name: name}

	if i := strings.IndexByte(raw, '@'); i >= 0 {
		rev := raw[i+1:]
		if j := strings.IndexByte(rev, '@'); j >= 0 {
			rev = rev[:j]
		}
		if n, err := strconv.Atoi(rev); err == nil && n >= 0 {
			req.revision = n
			req.hasRevision = true
		}
	}

	return req, nil
}

// MustParseRequirement parses a requirement or panics.
func MustParseRequirement(s string) Requirement {
	r, err := ParseRequirement(s)
	if err != nil {
		panic(err)
	}
	return r
}

// ParseRequirements parses every entry in list, skipping blank entries.
func ParseRequirements(list []string) ([]Requirement, error) {
	out := make([]Requirement, 0, len(list))
	for _, s := range list {
		if strings.TrimSpace(s) == "" {
			continue
		}
		r, err := ParseRequirement(s)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Name returns the base capability name.
func (r Requirement) Name() Name {
	return r.name
}

// Revision returns the declared revision and whether one was present.
func (r Requirement) Revision() (int, bool) {
	return r.revision, r.hasRevision
}

// String returns the requirement as it was declared.
func (r Requirement) String() string {
	if r.raw != "" {
		return r.raw
	}
	if r.hasRevision {
		return fmt.Sprintf("%s@%d", r.name, r.revision)
	}
	return string(r.name)
}

// Strings renders a requirement list in declaration form.
func Strings(reqs []Requirement) []string {
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = r.String()
	}
	return out
}
