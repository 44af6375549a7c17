package sources

import (
	"fmt"
	"os"

	"github.com/reglet-dev/extcompat/capability"
)

// DeclarationReader reads a standalone declaration table, the authoritative
// list of capabilities a host implements.
type DeclarationReader struct{}

// NewDeclarationReader creates a DeclarationReader.
func NewDeclarationReader() *DeclarationReader {
	return &DeclarationReader{}
}

// Read returns every declared name, or ErrNotUsable when the file cannot be
// read or declares nothing.
func (r *DeclarationReader) Read(path string) (capability.Set, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return capability.Set{}, fmt.Errorf("%w: reading %s: %v", ErrNotUsable, path, err)
	}

	set := ExtractDeclarations(content)
	if set.IsEmpty() {
		return capability.Set{}, fmt.Errorf("%w: no declarations in %s", ErrNotUsable, path)
	}
	return set, nil
}
