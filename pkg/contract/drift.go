package contract

import (
	"context"
	"fmt"
	"strings"

	"github.com/wI2L/jsondiff"

	"lakefront-data/warden/pkg/governance"
)

// driftColumn is the comparable shape of one column, shared by declared
// and live schemas so the diff only reports real divergence.
type driftColumn struct {
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// runDriftCheck diffs the live schema against the contract's declared
// schema and classifies each difference. Breaking differences (removed
// column, type change, newly-required column) are always error severity
// regardless of enforcement level; a new optional column is
// informational.
func runDriftCheck(ctx context.Context, reader DatasetReader, c *Contract) ([]governance.Violation, bool) {
	live, err := reader.Schema(ctx, c.Dataset)
	if err != nil {
		return []governance.Violation{unavailableViolation(c, fmt.Sprintf("schema query failed: %v", err))}, false
	}

	declared := make(map[string]driftColumn, len(c.Schema.Columns))
	for _, col := range c.Schema.Columns {
		declared[col.Name] = driftColumn{Type: col.Type, Required: col.Required}
	}
	observed := make(map[string]driftColumn, len(live))
	for _, col := range live {
		observed[col.Name] = driftColumn{Type: col.Type, Required: col.Required}
	}

	patch, err := jsondiff.Compare(declared, observed)
	if err != nil {
		// Both inputs are plain maps built above; a diff failure is a bug,
		// not a dataset condition.
		panic(fmt.Sprintf("schema diff failed for contract %q: %v", c.Name, err))
	}

	var out []governance.Violation
	for _, op := range patch {
		if v := classifyDriftOp(c, op, declared, observed); v != nil {
			out = append(out, *v)
		}
	}
	return out, len(out) > 0
}

// classifyDriftOp maps one JSON-patch operation to a drift violation.
// Paths take the form /<column> for whole-column changes and
// /<column>/<field> for field changes.
func classifyDriftOp(c *Contract, op jsondiff.Operation, declared, observed map[string]driftColumn) *governance.Violation {
	parts := strings.SplitN(strings.TrimPrefix(op.Path, "/"), "/", 2)
	column := jsonPointerUnescape(parts[0])
	field := ""
	if len(parts) == 2 {
		field = parts[1]
	}

	switch op.Type {
	case jsondiff.OperationRemove:
		if field != "" {
			return nil
		}
		return driftViolation(c, column, governance.SeverityError,
			fmt.Sprintf("column '%s' was removed from dataset '%s' but the contract declares it", column, c.Dataset),
			"Restore the column or publish a new contract version without it")

	case jsondiff.OperationAdd:
		if field != "" {
			return nil
		}
		added := observed[column]
		if added.Required {
			return driftViolation(c, column, governance.SeverityError,
				fmt.Sprintf("dataset '%s' gained new required column '%s' not declared by the contract", c.Dataset, column),
				"Declare the column in the contract or make it optional")
		}
		return driftViolation(c, column, governance.SeverityWarning,
			fmt.Sprintf("dataset '%s' gained new optional column '%s' not declared by the contract", c.Dataset, column),
			"Declare the column in the next contract version")

	case jsondiff.OperationReplace:
		switch field {
		case "type":
			return driftViolation(c, column, governance.SeverityError,
				fmt.Sprintf("column '%s' on dataset '%s' changed type from '%s' to '%s'",
					column, c.Dataset, declared[column].Type, observed[column].Type),
				"Revert the type change or publish a new contract version")
		case "required":
			if observed[column].Required {
				return driftViolation(c, column, governance.SeverityError,
					fmt.Sprintf("column '%s' on dataset '%s' became required", column, c.Dataset),
					"Declare the column as required in the contract")
			}
			return driftViolation(c, column, governance.SeverityWarning,
				fmt.Sprintf("column '%s' on dataset '%s' became optional", column, c.Dataset),
				"Update the contract if the relaxation is intentional")
		}
	}
	return nil
}

func driftViolation(c *Contract, column string, severity governance.Severity, message, suggestion string) *governance.Violation {
	return &governance.Violation{
		ErrorCode:  governance.CodeSchemaDrift,
		PolicyType: governance.PolicyTypeCustom,
		ModelName:  c.Dataset,
		ColumnName: column,
		Message:    message,
		Suggestion: suggestion,
		Severity:   severity,
	}
}

// jsonPointerUnescape reverses RFC 6901 escaping in a path token.
func jsonPointerUnescape(s string) string {
	s = strings.ReplaceAll(s, "~1", "/")
	return strings.ReplaceAll(s, "~0", "~")
}
