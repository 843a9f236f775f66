// pkg/rules/loader.go
package rules

import (
	"encoding/json"
	"fmt"
	"os"
)

// Parse validates and decodes a catalog document from raw bytes. Used by
// store-backed catalog providers that fetch the document themselves.
func Parse(data []byte) (*Catalog, error) {
	if err := ValidateDocument(data); err != nil {
		return nil, err
	}

	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// ParseLenient decodes a catalog document without rejecting malformed
// schemes. Batch evaluation isolates a bad rule to an ineligible outcome
// for that scheme, so serving paths prefer a decodable catalog with a few
// broken entries over no catalog at all. Publishing paths use Parse.
func ParseLenient(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(catalog.Schemes) == 0 {
		return nil, fmt.Errorf("catalog has no schemes")
	}
	return &catalog, nil
}

// LoadCatalog reads and validates a catalog document from disk.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
