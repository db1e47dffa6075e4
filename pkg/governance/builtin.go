package governance

import (
	"fmt"
	"sort"
	"strings"

	"lakefront-data/warden/pkg/manifest"
)

// BuiltinPolicies configures the pre-existing naming, coverage, and
// documentation checks. Each check can be disabled independently via the
// per-policy-type enable flags.
type BuiltinPolicies struct {
	// Naming requires model names to start with one of the allowed layer
	// prefixes.
	Naming NamingPolicy `yaml:"naming"`

	// Coverage requires a minimum number of data tests per model.
	Coverage CoveragePolicy `yaml:"coverage"`

	// Documentation requires models to carry a description and an owner.
	Documentation DocumentationPolicy `yaml:"documentation"`
}

// NamingPolicy configures the layer-prefix naming check.
type NamingPolicy struct {
	// Enabled controls whether the check runs. Default: true.
	Enabled *bool `yaml:"enabled"`

	// AllowedPrefixes lists the accepted model-name prefixes
	// (e.g. ["stg_", "int_", "fct_", "dim_"]). Empty disables the check.
	AllowedPrefixes []string `yaml:"allowed_prefixes"`

	// Severity of naming violations. Default: warning.
	Severity Severity `yaml:"severity"`
}

// CoveragePolicy configures the test-coverage check.
type CoveragePolicy struct {
	// Enabled controls whether the check runs. Default: true.
	Enabled *bool `yaml:"enabled"`

	// MinTests is the minimum number of data tests a model must declare.
	// Default: 1.
	MinTests int `yaml:"min_tests"`

	// Severity of coverage violations. Default: warning.
	Severity Severity `yaml:"severity"`
}

// DocumentationPolicy configures the documentation check.
type DocumentationPolicy struct {
	// Enabled controls whether the check runs. Default: true.
	Enabled *bool `yaml:"enabled"`

	// RequireOwner additionally requires a non-empty owner field.
	RequireOwner bool `yaml:"require_owner"`

	// Severity of documentation violations. Default: warning.
	Severity Severity `yaml:"severity"`
}

func enabled(flag *bool) bool {
	return flag == nil || *flag
}

func severityOr(s Severity, fallback Severity) Severity {
	if s == "" {
		return fallback
	}
	return s
}

// BuiltinValidator runs the naming, coverage, and documentation checks.
type BuiltinValidator struct {
	policies BuiltinPolicies
}

// NewBuiltinValidator creates a validator for the built-in policies.
func NewBuiltinValidator(policies BuiltinPolicies) *BuiltinValidator {
	return &BuiltinValidator{policies: policies}
}

// Validate runs every enabled built-in check over all models in sorted
// name order.
func (v *BuiltinValidator) Validate(m *manifest.Manifest) []Violation {
	names := make([]string, 0, len(m.Models))
	for name := range m.Models {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []Violation
	for _, name := range names {
		model := m.Models[name]
		out = append(out, v.checkNaming(model)...)
		out = append(out, v.checkCoverage(model)...)
		out = append(out, v.checkDocumentation(model)...)
	}
	return out
}

func (v *BuiltinValidator) checkNaming(model *manifest.Model) []Violation {
	p := v.policies.Naming
	if !enabled(p.Enabled) || len(p.AllowedPrefixes) == 0 {
		return nil
	}
	for _, prefix := range p.AllowedPrefixes {
		if strings.HasPrefix(model.Name, prefix) {
			return nil
		}
	}
	return []Violation{{
		ErrorCode:  CodeNamingPrefix,
		PolicyType: PolicyTypeNaming,
		ModelName:  model.Name,
		Message: fmt.Sprintf("model '%s' does not start with an allowed layer prefix (%s)",
			model.Name, strings.Join(p.AllowedPrefixes, ", ")),
		Suggestion: fmt.Sprintf("Rename the model to start with one of: %s", strings.Join(p.AllowedPrefixes, ", ")),
		Severity:   severityOr(p.Severity, SeverityWarning),
		FilePath:   model.FilePath,
	}}
}

func (v *BuiltinValidator) checkCoverage(model *manifest.Model) []Violation {
	p := v.policies.Coverage
	if !enabled(p.Enabled) {
		return nil
	}
	minTests := p.MinTests
	if minTests <= 0 {
		minTests = 1
	}
	if len(model.Tests) >= minTests {
		return nil
	}
	return []Violation{{
		ErrorCode:  CodeLowTestCoverage,
		PolicyType: PolicyTypeCoverage,
		ModelName:  model.Name,
		Message: fmt.Sprintf("model '%s' declares %d data test(s), fewer than the required %d",
			model.Name, len(model.Tests), minTests),
		Suggestion: "Add not_null or unique tests to the model's key columns",
		Severity:   severityOr(p.Severity, SeverityWarning),
		FilePath:   model.FilePath,
	}}
}

func (v *BuiltinValidator) checkDocumentation(model *manifest.Model) []Violation {
	p := v.policies.Documentation
	if !enabled(p.Enabled) {
		return nil
	}
	var out []Violation
	if strings.TrimSpace(model.Description) == "" {
		out = append(out, Violation{
			ErrorCode:  CodeMissingDescription,
			PolicyType: PolicyTypeDocumentation,
			ModelName:  model.Name,
			Message:    fmt.Sprintf("model '%s' has no description", model.Name),
			Suggestion: "Add a description to the model's documentation block",
			Severity:   severityOr(p.Severity, SeverityWarning),
			FilePath:   model.FilePath,
		})
	}
	if p.RequireOwner && strings.TrimSpace(model.Owner) == "" {
		out = append(out, Violation{
			ErrorCode:  CodeMissingOwner,
			PolicyType: PolicyTypeDocumentation,
			ModelName:  model.Name,
			Message:    fmt.Sprintf("model '%s' has no owner", model.Name),
			Suggestion: "Set the owner field to the responsible team",
			Severity:   severityOr(p.Severity, SeverityWarning),
			FilePath:   model.FilePath,
		})
	}
	return out
}
