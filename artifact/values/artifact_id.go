// Package values holds validated value objects for published artifacts.
package values

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidArtifactID is returned when an artifact identifier fails validation.
var ErrInvalidArtifactID = errors.New("invalid artifact id")

// ArtifactID identifies a published artifact as "publisher.name".
// Comparison is case-insensitive, as in the registry.
type ArtifactID struct {
	publisher string
	name      string
}

// ParseArtifactID parses and validates "publisher.name".
// A valid identifier must:
// - contain a publisher and a name separated by the first '.'
// - contain only alphanumeric characters, underscores, hyphens and dots
// - be at most 128 characters long
func ParseArtifactID(s string) (ArtifactID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ArtifactID{}, fmt.Errorf("%w: cannot be empty", ErrInvalidArtifactID)
	}
	if len(s) > 128 {
		return ArtifactID{}, fmt.Errorf("%w: too long (max 128 chars)", ErrInvalidArtifactID)
	}

	publisher, name, ok := strings.Cut(s, ".")
	if !ok || publisher == "" || name == "" {
		return ArtifactID{}, fmt.Errorf("%w: %q must be of the form publisher.name", ErrInvalidArtifactID, s)
	}

	for _, ch := range s {
		if !isValidIDChar(ch) {
			return ArtifactID{}, fmt.Errorf("%w: %q contains %q", ErrInvalidArtifactID, s, ch)
		}
	}

	return ArtifactID{publisher: publisher, name: name}, nil
}

func isValidIDChar(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '_' ||
		r == '-' ||
		r == '.'
}

// MustParseArtifactID creates an ArtifactID or panics
func MustParseArtifactID(s string) ArtifactID {
	id, err := ParseArtifactID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Publisher returns the publisher part.
func (a ArtifactID) Publisher() string {
	return a.publisher
}

// Name returns the name part.
func (a ArtifactID) Name() string {
	return a.name
}

// String returns "publisher.name" as given.
func (a ArtifactID) String() string {
	if a.IsEmpty() {
		return ""
	}
	return a.publisher + "." + a.name
}

// Key returns the lowercase identifier used for lookups and lockfile keys.
func (a ArtifactID) Key() string {
	return strings.ToLower(a.String())
}

// IsEmpty returns true if this is the zero value
func (a ArtifactID) IsEmpty() bool {
	return a.publisher == "" && a.name == ""
}

// Equals compares identifiers case-insensitively.
func (a ArtifactID) Equals(other ArtifactID) bool {
	return a.Key() == other.Key()
}

// MarshalJSON implements json.Marshaler.
func (a ArtifactID) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (a *ArtifactID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArtifactID, err)
	}
	id, err := ParseArtifactID(s)
	if err != nil {
		return err
	}
	*a = id
	return nil
}
