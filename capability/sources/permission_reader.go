package sources

import (
	"fmt"
	"os"

	"github.com/reglet-dev/extcompat/capability"
	"github.com/reglet-dev/extcompat/parser"
)

// PermissionListReader reads the per-extension allow-list from a product
// configuration file. It reflects what extensions are permitted to use, not
// what the host implements, so it ranks below the other readers.
type PermissionListReader struct {
	parser parser.ProductParser
}

// NewPermissionListReader creates a PermissionListReader.
func NewPermissionListReader() *PermissionListReader {
	return &PermissionListReader{parser: parser.NewJSONProductParser()}
}

// Read unions the base names listed for every extension.
func (r *PermissionListReader) Read(path string) (capability.Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return capability.Set{}, fmt.Errorf("%w: reading %s: %v", ErrNotUsable, path, err)
	}

	product, err := r.parser.Parse(data)
	if err != nil {
		return capability.Set{}, fmt.Errorf("%w: %s: %v", ErrNotUsable, path, err)
	}

	var names []string
	for _, list := range product.ExtensionEnabledAPIProposals {
		names = append(names, list...)
	}

	set := capability.NewSet(names...)
	if set.IsEmpty() {
		return capability.Set{}, fmt.Errorf("%w: no permitted capabilities in %s", ErrNotUsable, path)
	}
	return set, nil
}
