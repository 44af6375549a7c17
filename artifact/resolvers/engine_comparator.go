// Package resolvers provides implementations of the version-related ports.
package resolvers

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// operatorChars lead a requirement. The registry uses them loosely, so
// every requirement is read as a minimum.
const operatorChars = "^>=~"

// numericPrefix captures the dotted-integer head of a version string. Any
// trailing qualifier such as "-20260124" or "-insider" is ignored.
var numericPrefix = regexp.MustCompile(`^v?(\d+(?:\.\d+)*)`)

// EngineComparator implements ports.EngineComparator using Masterminds/semver.
// It always evaluates host >= required.
type EngineComparator struct {
	logger *slog.Logger
}

// EngineComparatorOption configures an EngineComparator.
type EngineComparatorOption func(*EngineComparator)

// WithComparatorLogger sets the logger used for parse warnings.
func WithComparatorLogger(logger *slog.Logger) EngineComparatorOption {
	return func(c *EngineComparator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewEngineComparator creates a new EngineComparator.
func NewEngineComparator(opts ...EngineComparatorOption) *EngineComparator {
	c := &EngineComparator{logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsCompatible reports whether hostVersion satisfies requirement.
// A parse failure on either side is logged and treated as incompatible.
func (c *EngineComparator) IsCompatible(hostVersion, requirement string) bool {
	host, err := ParseEngineVersion(hostVersion)
	if err != nil {
		c.logger.Warn("cannot parse host version", "version", hostVersion, "error", err)
		return false
	}

	required, err := ParseEngineVersion(StripOperator(requirement))
	if err != nil {
		c.logger.Warn("cannot parse engine requirement", "requirement", requirement, "error", err)
		return false
	}

	return host.Compare(required) >= 0
}

// StripOperator removes any leading run of ^, >, = and ~ from s.
func StripOperator(s string) string {
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(s), operatorChars))
}

// EngineVersion is a dotted-integer version of any length. The first three
// components form a semver core; further components compare as integers.
type EngineVersion struct {
	core  *semver.Version
	extra []uint64
}

// ParseEngineVersion parses the dotted-integer head of s, padding missing
// components with zero.
func ParseEngineVersion(s string) (EngineVersion, error) {
	m := numericPrefix.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return EngineVersion{}, &VersionParseError{Input: s, Reason: "no leading version number"}
	}

	parts := strings.Split(m[1], ".")
	head := parts
	if len(head) > 3 {
		head = parts[:3]
	}
	core, err := semver.NewVersion(strings.Join(head, "."))
	if err != nil {
		return EngineVersion{}, &VersionParseError{Input: s, Reason: err.Error()}
	}

	var extra []uint64
	for _, p := range parts[len(head):] {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return EngineVersion{}, &VersionParseError{Input: s, Reason: err.Error()}
		}
		extra = append(extra, n)
	}
	// 1.2.3.0 and 1.2.3 are the same version.
	for len(extra) > 0 && extra[len(extra)-1] == 0 {
		extra = extra[:len(extra)-1]
	}

	return EngineVersion{core: core, extra: extra}, nil
}

// Compare returns -1, 0 or +1 as v is lower than, equal to or higher than o.
func (v EngineVersion) Compare(o EngineVersion) int {
	if c := v.core.Compare(o.core); c != 0 {
		return c
	}
	for i := 0; i < max(len(v.extra), len(o.extra)); i++ {
		a, b := component(v.extra, i), component(o.extra, i)
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
	}
	return 0
}

// String returns the normalized version.
func (v EngineVersion) String() string {
	if v.core == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(v.core.String())
	for _, n := range v.extra {
		b.WriteByte('.')
		b.WriteString(strconv.FormatUint(n, 10))
	}
	return b.String()
}

func component(parts []uint64, i int) uint64 {
	if i < len(parts) {
		return parts[i]
	}
	return 0
}

// VersionParseError describes a version string the comparator cannot read.
type VersionParseError struct {
	Input  string
	Reason string
}

func (e *VersionParseError) Error() string {
	return "invalid version " + `"` + e.Input + `": ` + e.Reason
}
