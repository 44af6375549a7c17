package capability

import (
	"sort"
)

// Set is an immutable set of capability names the host is believed to
// implement. The empty set means "unknown" and puts the gate in permissive
// mode.
type Set struct {
	names map[Name]struct{}
}

// NewSet builds a set from names. Revision suffixes are stripped and blank
// entries ignored.
func NewSet(names ...string) Set {
	s := Set{names: make(map[Name]struct{}, len(names))}
	for _, n := range names {
		base := BaseName(n)
		if base == "" {
			continue
		}
		s.names[base] = struct{}{}
	}
	return s
}

// Empty returns the permissive set.
func Empty() Set {
	return Set{}
}

// Contains reports whether name (without revision) is in the set.
func (s Set) Contains(name Name) bool {
	_, ok := s.names[name]
	return ok
}

// Len returns the number of names.
func (s Set) Len() int {
	return len(s.names)
}

// IsEmpty reports whether the set is empty (permissive).
func (s Set) IsEmpty() bool {
	return len(s.names) == 0
}

// Names returns the members sorted lexically.
func (s Set) Names() []string {
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, string(n))
	}
	sort.Strings(out)
	return out
}

// Sample returns at most n members in sorted order.
func (s Set) Sample(n int) []string {
	names := s.Names()
	if len(names) > n {
		names = names[:n]
	}
	return names
}
