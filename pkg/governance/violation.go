package governance

import (
	"sort"
	"time"
)

// Severity is the severity of a violation.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// PolicyType categorizes which policy family produced a violation.
type PolicyType string

const (
	PolicyTypeNaming        PolicyType = "naming"
	PolicyTypeCoverage      PolicyType = "coverage"
	PolicyTypeDocumentation PolicyType = "documentation"
	PolicyTypeSemantic      PolicyType = "semantic"
	PolicyTypeCustom        PolicyType = "custom"
)

// AllPolicyTypes lists every policy family in a fixed order, used for
// summary counting and per-type enable flags.
var AllPolicyTypes = []PolicyType{
	PolicyTypeNaming,
	PolicyTypeCoverage,
	PolicyTypeDocumentation,
	PolicyTypeSemantic,
	PolicyTypeCustom,
}

// Error codes. Codes are stable across runs for the same condition:
// historical tracking and override provenance both key on them.
const (
	CodeMissingRef       = "WDN101" // reference to a node absent from the graph
	CodeUndeclaredSource = "WDN102" // reference to an undeclared source
	CodeCircularRef      = "WDN103" // model participates in a reference cycle

	CodeNamingPrefix = "WDN201" // model name violates layer prefix convention

	CodeLowTestCoverage = "WDN301" // model has fewer tests than required

	CodeMissingDescription = "WDN401" // model has no description
	CodeMissingOwner       = "WDN402" // model has no owner

	CodeMissingTags      = "WDN501" // require_tags_for_prefix failed
	CodeMissingMetaField = "WDN502" // require_meta_field failed
	CodeMissingTestType  = "WDN503" // require_tests_of_type failed

	CodeFreshnessBreach    = "WDN601" // contract freshness threshold exceeded
	CodeSchemaDrift        = "WDN602" // live schema diverged from contract
	CodeUnavailable        = "WDN603" // dataset connectivity probe failed
	CodeQualityBelowTarget = "WDN604" // quality score below contract threshold
)

// Violation is one detected policy breach. Violations are values: the
// enforcer and resolver return adjusted copies rather than mutating
// shared state, so a raw violation's original severity is never lost.
type Violation struct {
	// ErrorCode is the stable identifier for the condition (e.g. "WDN103").
	ErrorCode string `json:"error_code"`

	// PolicyType is the policy family that produced this violation.
	PolicyType PolicyType `json:"policy_type"`

	// ModelName is the model (or contract dataset) the violation is about.
	ModelName string `json:"model_name"`

	// Message describes what was found.
	Message string `json:"message"`

	// Suggestion describes how to fix it, when a fix can be suggested.
	Suggestion string `json:"suggestion,omitempty"`

	// Severity is error or warning. After override resolution this holds
	// the resolved value; OverrideApplied records the provenance.
	Severity Severity `json:"severity"`

	// ColumnName is set when the violation is column-scoped.
	ColumnName string `json:"column_name,omitempty"`

	// FilePath is the source file of the offending model, when known.
	FilePath string `json:"file_path,omitempty"`

	// DownstreamImpact lists dependent model names. Populated only when
	// impact enrichment is requested; it requires a reverse-graph walk.
	DownstreamImpact []string `json:"downstream_impact,omitempty"`

	// FirstDetected and Occurrences are set by the contract monitor for
	// recurring run-time violations, from the durable history store.
	FirstDetected time.Time `json:"first_detected,omitzero"`
	Occurrences   int       `json:"occurrences,omitempty"`

	// OverrideApplied is the pattern of the override that modified this
	// violation, if any.
	OverrideApplied string `json:"override_applied,omitempty"`
}

// EnforcementLevel controls whether violations are generated at all and
// whether they count toward the pass/fail verdict.
type EnforcementLevel string

const (
	LevelOff    EnforcementLevel = "off"
	LevelWarn   EnforcementLevel = "warn"
	LevelStrict EnforcementLevel = "strict"
)

// Valid reports whether the level is one of off, warn, strict.
func (l EnforcementLevel) Valid() bool {
	switch l {
	case LevelOff, LevelWarn, LevelStrict:
		return true
	}
	return false
}

// Summary holds aggregate counts for one enforcement pass.
type Summary struct {
	// ByPolicyType counts violations per policy family.
	ByPolicyType map[PolicyType]int `json:"by_policy_type"`

	// ErrorCount and WarningCount are post-override severity counts.
	ErrorCount   int `json:"error_count"`
	WarningCount int `json:"warning_count"`

	// OverridesApplied is the number of overrides that actually modified
	// or removed a violation.
	OverridesApplied int `json:"overrides_applied"`

	// ModelCount is the number of models in the checked manifest.
	ModelCount int `json:"model_count"`

	// Duration is how long the enforcement pass took.
	Duration time.Duration `json:"duration"`
}

// EnforcementResult is the outcome of one enforcement pass. It is created
// once per invocation and never modified afterwards; persistence, if any,
// is the caller's concern.
type EnforcementResult struct {
	// Passed is false iff at least one unresolved error-severity violation
	// remains after overrides, and only under strict enforcement.
	Passed bool `json:"passed"`

	// Violations is the complete post-override violation list.
	Violations []Violation `json:"violations"`

	// Summary holds aggregate counts.
	Summary Summary `json:"summary"`

	// EnforcementLevel is the level this pass ran under.
	EnforcementLevel EnforcementLevel `json:"enforcement_level"`

	// Timestamp is when the pass completed.
	Timestamp time.Time `json:"timestamp"`

	// ManifestVersion is the schema version of the checked manifest.
	ManifestVersion int `json:"manifest_version"`
}

// ViolationsByModel groups the result's violations by model name.
// The grouping is derived on demand, never stored independently.
func (r *EnforcementResult) ViolationsByModel() map[string][]Violation {
	out := make(map[string][]Violation)
	for _, v := range r.Violations {
		out[v.ModelName] = append(out[v.ModelName], v)
	}
	return out
}

// ResultSummary is the lightweight artifact handed back to the build
// pipeline for embedding into its own persisted output. It is additive:
// consumers of the prior artifact shape are unaffected by its presence.
type ResultSummary struct {
	Passed             bool     `json:"passed"`
	ErrorCount         int      `json:"error_count"`
	WarningCount       int      `json:"warning_count"`
	PolicyTypesChecked []string `json:"policy_types_checked"`
	ModelCount         int      `json:"model_count"`
	EnforcementLevel   string   `json:"enforcement_level"`
}

// ToResultSummary derives the pipeline-facing summary from a result.
func (r *EnforcementResult) ToResultSummary() ResultSummary {
	types := make([]string, 0, len(r.Summary.ByPolicyType))
	for pt := range r.Summary.ByPolicyType {
		types = append(types, string(pt))
	}
	sort.Strings(types)
	return ResultSummary{
		Passed:             r.Passed,
		ErrorCount:         r.Summary.ErrorCount,
		WarningCount:       r.Summary.WarningCount,
		PolicyTypesChecked: types,
		ModelCount:         r.Summary.ModelCount,
		EnforcementLevel:   string(r.EnforcementLevel),
	}
}

// sortViolations orders violations deterministically: by model name, then
// policy type, then error code, then column. Two enforcement passes over
// identical inputs produce identical violation lists.
func sortViolations(vs []Violation) {
	sort.SliceStable(vs, func(i, j int) bool {
		a, b := vs[i], vs[j]
		if a.ModelName != b.ModelName {
			return a.ModelName < b.ModelName
		}
		if a.PolicyType != b.PolicyType {
			return a.PolicyType < b.PolicyType
		}
		if a.ErrorCode != b.ErrorCode {
			return a.ErrorCode < b.ErrorCode
		}
		return a.ColumnName < b.ColumnName
	})
}
