package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// utf8BOM is stripped before decoding; some packagers emit it.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// TrimBOM removes a leading UTF-8 byte order mark.
func TrimBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, utf8BOM)
}

// JSONManifestParser implements ManifestParser for JSON.
type JSONManifestParser struct{}

// NewJSONManifestParser creates a new JSONManifestParser.
func NewJSONManifestParser() ManifestParser {
	return &JSONManifestParser{}
}

// Parse unmarshals JSON bytes into a Manifest struct.
func (p *JSONManifestParser) Parse(data []byte) (*Manifest, error) {
	var manifest Manifest
	if err := json.Unmarshal(TrimBOM(data), &manifest); err != nil {
		return nil, fmt.Errorf("decoding package manifest: %w", err)
	}
	return &manifest, nil
}

// JSONProductParser implements ProductParser for JSON.
type JSONProductParser struct{}

// NewJSONProductParser creates a new JSONProductParser.
func NewJSONProductParser() ProductParser {
	return &JSONProductParser{}
}

// Parse unmarshals JSON bytes into a Product struct.
func (p *JSONProductParser) Parse(data []byte) (*Product, error) {
	var product Product
	if err := json.Unmarshal(TrimBOM(data), &product); err != nil {
		return nil, fmt.Errorf("decoding product configuration: %w", err)
	}
	return &product, nil
}
