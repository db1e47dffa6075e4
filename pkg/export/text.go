package export

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"lakefront-data/warden/pkg/governance"
)

// TextExporter renders an enforcement result as a human-readable report:
// summary counts followed by a violation table.
type TextExporter struct{}

// NewTextExporter creates a text exporter.
func NewTextExporter() *TextExporter {
	return &TextExporter{}
}

// Export renders the result.
func (e *TextExporter) Export(result *governance.EnforcementResult) ([]byte, error) {
	var buf bytes.Buffer

	verdict := "PASSED"
	if !result.Passed {
		verdict = "FAILED"
	}
	fmt.Fprintf(&buf, "Policy Enforcement Report\n")
	fmt.Fprintf(&buf, "=========================\n\n")
	fmt.Fprintf(&buf, "Verdict:           %s\n", verdict)
	fmt.Fprintf(&buf, "Enforcement level: %s\n", result.EnforcementLevel)
	fmt.Fprintf(&buf, "Models checked:    %d\n", result.Summary.ModelCount)
	fmt.Fprintf(&buf, "Errors:            %d\n", result.Summary.ErrorCount)
	fmt.Fprintf(&buf, "Warnings:          %d\n", result.Summary.WarningCount)
	fmt.Fprintf(&buf, "Overrides applied: %d\n", result.Summary.OverridesApplied)
	fmt.Fprintf(&buf, "Duration:          %s\n", result.Summary.Duration)

	if len(result.Summary.ByPolicyType) > 0 {
		fmt.Fprintf(&buf, "\nViolations by policy type:\n")
		for _, pt := range governance.AllPolicyTypes {
			if n := result.Summary.ByPolicyType[pt]; n > 0 {
				fmt.Fprintf(&buf, "  %-14s %d\n", pt, n)
			}
		}
	}

	if len(result.Violations) > 0 {
		fmt.Fprintf(&buf, "\n")
		w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SEVERITY\tCODE\tTYPE\tMODEL\tMESSAGE")
		for _, v := range result.Violations {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				v.Severity, v.ErrorCode, v.PolicyType, v.ModelName, v.Message)
		}
		if err := w.Flush(); err != nil {
			return nil, fmt.Errorf("failed to render violation table: %w", err)
		}

		for _, v := range result.Violations {
			if v.Suggestion != "" {
				fmt.Fprintf(&buf, "\n%s [%s]: %s", v.ModelName, v.ErrorCode, v.Suggestion)
			}
		}
		fmt.Fprintf(&buf, "\n")
	}

	return buf.Bytes(), nil
}
