package directory

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type fileDocument struct {
	Salons  []Salon  `yaml:"salons"`
	Callers []Caller `yaml:"callers"`
}

// LoadFile reads a YAML directory document from path.
func LoadFile(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("directory: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML directory document. Unknown fields are rejected so a
// typo in the file does not silently drop data.
func Parse(data []byte) (*Directory, error) {
	var doc fileDocument
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("directory: decode yaml: %w", err)
	}
	if len(doc.Salons) == 0 {
		return nil, fmt.Errorf("directory: no salons defined")
	}
	seen := make(map[string]bool, len(doc.Salons))
	for _, s := range doc.Salons {
		if s.ID == "" || s.Name == "" {
			return nil, fmt.Errorf("directory: salon requires id and name")
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("directory: duplicate salon id %q", s.ID)
		}
		seen[s.ID] = true
	}
	return New(doc.Salons, doc.Callers), nil
}
