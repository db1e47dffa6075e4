package export

import (
	"encoding/json"
	"fmt"

	"lakefront-data/warden/pkg/governance"
)

// JSONExporter renders an enforcement result as JSON with a one-to-one
// field mapping. Exporters are pure: they never re-derive or mutate the
// result's violations.
type JSONExporter struct {
	// Pretty enables indented output.
	Pretty bool
}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty}
}

// Export renders the result.
func (e *JSONExporter) Export(result *governance.EnforcementResult) ([]byte, error) {
	var data []byte
	var err error
	if e.Pretty {
		data, err = json.MarshalIndent(result, "", "  ")
	} else {
		data, err = json.Marshal(result)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal enforcement result: %w", err)
	}
	return data, nil
}
