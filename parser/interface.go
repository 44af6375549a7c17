// Package parser decodes the structured documents the resolver reads: a
// published package's manifest and the host's product configuration.
package parser

// Manifest is the subset of a package manifest the resolver inspects.
type Manifest struct {
	Name                string   `json:"name"`
	Publisher           string   `json:"publisher"`
	Version             string   `json:"version"`
	EnabledAPIProposals []string `json:"enabledApiProposals"`
	Engines             struct {
		VSCode string `json:"vscode"`
	} `json:"engines"`
}

// Product is the subset of the host's product configuration that carries
// the per-extension capability allow-list.
type Product struct {
	NameShort                    string              `json:"nameShort"`
	Version                      string              `json:"version"`
	ExtensionEnabledAPIProposals map[string][]string `json:"extensionEnabledApiProposals"`
}

// ManifestParser parses raw manifest bytes into a Manifest.
type ManifestParser interface {
	// Parse unmarshals manifest bytes into a Manifest struct.
	Parse(data []byte) (*Manifest, error)
}

// ProductParser parses raw product configuration bytes.
type ProductParser interface {
	Parse(data []byte) (*Product, error)
}
