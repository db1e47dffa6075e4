// Package export serializes enforcement results into interchange formats
// for CI and external tooling: JSON (one-to-one field mapping), SARIF
// 2.1.0 (stable rule per error code), and a human-readable text report.
// Exporters are stateless and side-effect-free aside from writing output.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"lakefront-data/warden/pkg/governance"
)

// Exporter renders an enforcement result into one output format.
type Exporter interface {
	Export(result *governance.EnforcementResult) ([]byte, error)
}

// WriteFile renders the result with the exporter and writes it to path,
// creating parent directories as needed.
func WriteFile(e Exporter, result *governance.EnforcementResult, path string) error {
	data, err := e.Export(result)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory %q: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report %q: %w", path, err)
	}
	return nil
}
