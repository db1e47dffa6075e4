package manifest

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load reads and parses a compiled manifest from a JSON file.
// An unsupported schema version is a hard error, not a violation:
// it indicates an incompatible compiler, not a policy condition.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file %q: %w", path, err)
	}
	return Parse(data)
}

// Parse parses a compiled manifest from JSON bytes.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if err := checkSchemaVersion(m.SchemaVersion); err != nil {
		return nil, err
	}

	if m.Models == nil {
		m.Models = make(map[string]*Model)
	}
	if m.Sources == nil {
		m.Sources = make(map[string]*Source)
	}

	// Backfill names so callers can rely on Model.Name matching the map key.
	for name, model := range m.Models {
		if model == nil {
			return nil, fmt.Errorf("manifest model %q is null", name)
		}
		if model.Name == "" {
			model.Name = name
		} else if model.Name != name {
			return nil, fmt.Errorf("manifest model %q declares mismatched name %q", name, model.Name)
		}
	}
	for name, src := range m.Sources {
		if src == nil {
			return nil, fmt.Errorf("manifest source %q is null", name)
		}
		if src.Name == "" {
			src.Name = name
		}
	}

	return &m, nil
}

func checkSchemaVersion(v int) error {
	for _, s := range SupportedSchemaVersions {
		if v == s {
			return nil
		}
	}
	return fmt.Errorf("unsupported manifest schema version %d (supported: %v)", v, SupportedSchemaVersions)
}
