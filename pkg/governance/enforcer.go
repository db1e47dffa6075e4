package governance

import (
	"fmt"
	"log/slog"
	"time"

	"lakefront-data/warden/pkg/manifest"
)

// GovernanceConfig is the governance configuration consumed by the
// enforcer: enforcement level, built-in policy settings, custom rules,
// and overrides. It is validated eagerly by Validate before any
// enforcement runs; the enforcer itself never re-checks shapes.
type GovernanceConfig struct {
	// EnforcementLevel is off, warn, or strict. Default: warn.
	EnforcementLevel EnforcementLevel `yaml:"enforcement_level"`

	// Builtin configures the naming, coverage, and documentation checks.
	Builtin BuiltinPolicies `yaml:"builtin"`

	// SemanticEnabled controls the semantic validator. Default: true.
	SemanticEnabled *bool `yaml:"semantic_enabled"`

	// CustomRules are evaluated in declaration order.
	CustomRules []CustomRule `yaml:"custom_rules"`

	// PolicyOverrides are evaluated in declaration order; first match wins.
	PolicyOverrides []PolicyOverride `yaml:"policy_overrides"`
}

// Validate eagerly checks every rule and override. All shape errors are
// reported at load time with the offending rule named; nothing is
// deferred to evaluation.
func (c *GovernanceConfig) Validate() error {
	if c.EnforcementLevel != "" && !c.EnforcementLevel.Valid() {
		return fmt.Errorf("enforcement_level: invalid value %q (must be off, warn, or strict)", c.EnforcementLevel)
	}
	for i := range c.CustomRules {
		if err := c.CustomRules[i].Validate(); err != nil {
			return fmt.Errorf("custom_rules[%d]: %w", i, err)
		}
	}
	for i := range c.PolicyOverrides {
		if err := c.PolicyOverrides[i].Validate(); err != nil {
			return fmt.Errorf("policy_overrides[%d]: %w", i, err)
		}
	}
	return nil
}

// Level returns the configured enforcement level, defaulting to warn.
func (c *GovernanceConfig) Level() EnforcementLevel {
	if c.EnforcementLevel == "" {
		return LevelWarn
	}
	return c.EnforcementLevel
}

// EnforceOptions tune a single enforcement pass.
type EnforceOptions struct {
	// ComputeImpact enables downstream-impact enrichment on the final
	// violation list. Off by default: it requires a reverse-graph
	// traversal per violation and the verdict does not need it.
	ComputeImpact bool
}

// Enforcer orchestrates the validators and the override resolver for
// build-time enforcement. An Enforcer is safe for repeated use; each call
// to Enforce treats its inputs as immutable for the duration of the call.
type Enforcer struct {
	config *GovernanceConfig
	logger *slog.Logger
}

// NewEnforcer creates an enforcer for a validated governance config.
func NewEnforcer(config *GovernanceConfig, logger *slog.Logger) (*Enforcer, error) {
	if config == nil {
		return nil, fmt.Errorf("governance config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid governance config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Enforcer{
		config: config,
		logger: logger.With("component", "governance.enforcer"),
	}, nil
}

// Enforce runs one enforcement pass over a compiled manifest.
//
// All validators run independently and unconditionally; none can
// short-circuit another. Under level off the pass returns immediately
// with no violations generated. Under warn the full violation set is
// returned but Passed is always true. Under strict, Passed is false iff
// any error-severity violation survives override resolution.
func (e *Enforcer) Enforce(m *manifest.Manifest, opts EnforceOptions) (*EnforcementResult, error) {
	if m == nil {
		return nil, fmt.Errorf("manifest cannot be nil")
	}
	start := time.Now()
	level := e.config.Level()

	result := &EnforcementResult{
		Passed:           true,
		EnforcementLevel: level,
		ManifestVersion:  m.SchemaVersion,
		Summary: Summary{
			ByPolicyType: make(map[PolicyType]int),
			ModelCount:   len(m.Models),
		},
	}

	if level == LevelOff {
		result.Timestamp = time.Now().UTC()
		result.Summary.Duration = time.Since(start)
		e.logger.Debug("enforcement is off, skipping validators")
		return result, nil
	}

	graph := manifest.BuildGraph(m)

	// Seed the per-type counts with every type that will run, so a clean
	// pass still reports which policy families were checked.
	for _, pt := range e.checkedPolicyTypes() {
		result.Summary.ByPolicyType[pt] = 0
	}

	var raw []Violation
	raw = append(raw, NewBuiltinValidator(e.config.Builtin).Validate(m)...)
	if e.config.SemanticEnabled == nil || *e.config.SemanticEnabled {
		raw = append(raw, NewSemanticValidator().Validate(m, graph)...)
	}
	raw = append(raw, NewCustomRuleValidator(e.config.CustomRules, e.logger).Validate(m)...)

	resolver := NewOverrideResolver(e.config.PolicyOverrides, e.logger)
	final, overridesApplied := resolver.Resolve(raw)
	sortViolations(final)

	if opts.ComputeImpact {
		final = EnrichDownstreamImpact(final, graph)
	}

	for _, v := range final {
		result.Summary.ByPolicyType[v.PolicyType]++
		switch v.Severity {
		case SeverityError:
			result.Summary.ErrorCount++
		case SeverityWarning:
			result.Summary.WarningCount++
		}
	}
	result.Violations = final
	result.Summary.OverridesApplied = overridesApplied
	result.Summary.Duration = time.Since(start)
	result.Timestamp = time.Now().UTC()

	if level == LevelStrict && result.Summary.ErrorCount > 0 {
		result.Passed = false
	}

	e.logger.Info("enforcement pass completed",
		"level", string(level),
		"models", result.Summary.ModelCount,
		"violations", len(final),
		"errors", result.Summary.ErrorCount,
		"warnings", result.Summary.WarningCount,
		"overrides_applied", overridesApplied,
		"passed", result.Passed,
		"duration", result.Summary.Duration,
	)

	return result, nil
}

// checkedPolicyTypes lists the policy families the configured validators
// evaluate, mirroring the gating each validator applies itself.
func (e *Enforcer) checkedPolicyTypes() []PolicyType {
	var types []PolicyType
	b := e.config.Builtin
	if enabled(b.Naming.Enabled) && len(b.Naming.AllowedPrefixes) > 0 {
		types = append(types, PolicyTypeNaming)
	}
	if enabled(b.Coverage.Enabled) {
		types = append(types, PolicyTypeCoverage)
	}
	if enabled(b.Documentation.Enabled) {
		types = append(types, PolicyTypeDocumentation)
	}
	if e.config.SemanticEnabled == nil || *e.config.SemanticEnabled {
		types = append(types, PolicyTypeSemantic)
	}
	if len(e.config.CustomRules) > 0 {
		types = append(types, PolicyTypeCustom)
	}
	return types
}
