package manifest

import "time"

// SupportedSchemaVersions lists the manifest schema versions this engine
// understands. A manifest with any other version is rejected outright.
var SupportedSchemaVersions = []int{1, 2}

// Manifest is the compiled representation of a model graph produced by the
// upstream SQL-transformation compiler. It is consumed read-only: nodes,
// edges, and per-model metadata are never mutated by enforcement.
type Manifest struct {
	// SchemaVersion is the manifest schema version. Must be one of
	// SupportedSchemaVersions.
	SchemaVersion int `json:"schema_version"`

	// ProjectName is the name of the compiled project.
	ProjectName string `json:"project_name"`

	// GeneratedAt is when the compiler produced this manifest.
	GeneratedAt time.Time `json:"generated_at"`

	// Models maps model name to its compiled node.
	Models map[string]*Model `json:"models"`

	// Sources maps source name to its declaration.
	Sources map[string]*Source `json:"sources"`
}

// Model is a single compiled model node.
type Model struct {
	// Name is the model's unique name within the project.
	Name string `json:"name"`

	// FilePath is the path of the model's source file, relative to the
	// project root. Used in violations and report exports.
	FilePath string `json:"file_path"`

	// Description is the model's documentation string, if any.
	Description string `json:"description"`

	// Owner identifies the team or person responsible for the model.
	Owner string `json:"owner"`

	// Tags are free-form labels attached to the model.
	Tags []string `json:"tags"`

	// Meta holds arbitrary key/value metadata declared on the model.
	Meta map[string]string `json:"meta"`

	// Columns are the model's declared columns.
	Columns []Column `json:"columns"`

	// Tests are the data tests declared against this model.
	Tests []TestDef `json:"tests"`

	// Refs are the names of models this model references.
	Refs []string `json:"refs"`

	// SourceRefs are the names of sources this model reads from.
	SourceRefs []string `json:"source_refs"`
}

// Column is a declared column on a model.
type Column struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// TestDef is a declared data test. Column is empty for model-level tests.
type TestDef struct {
	// Type is the test type (e.g. "not_null", "unique", "relationships").
	Type string `json:"type"`

	// Column is the column the test applies to, if column-scoped.
	Column string `json:"column"`
}

// Source is a declared external source table.
type Source struct {
	// Name is the source's unique name.
	Name string `json:"name"`

	// Schema is the physical schema the source lives in.
	Schema string `json:"schema"`

	// Identifier is the physical table name, when it differs from Name.
	Identifier string `json:"identifier"`
}

// HasTag reports whether the model carries the given tag.
func (m *Model) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// TestsOfType returns the model's tests matching any of the given types.
func (m *Model) TestsOfType(types []string) []TestDef {
	want := make(map[string]bool, len(types))
	for _, t := range types {
		want[t] = true
	}
	var out []TestDef
	for _, test := range m.Tests {
		if want[test.Type] {
			out = append(out, test)
		}
	}
	return out
}
