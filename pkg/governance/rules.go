package governance

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"lakefront-data/warden/pkg/manifest"
)

// RuleType discriminates the closed set of custom rule variants.
// Unknown variants are rejected at configuration-load time, never at
// evaluation time.
type RuleType string

const (
	RuleRequireTagsForPrefix RuleType = "require_tags_for_prefix"
	RuleRequireMetaField     RuleType = "require_meta_field"
	RuleRequireTestsOfType   RuleType = "require_tests_of_type"
)

// CustomRule is one user-declared declarative rule. The parameter fields
// that apply depend on Type; Validate enforces the shape.
type CustomRule struct {
	// Name identifies the rule in logs and violation messages.
	Name string `yaml:"name"`

	// Type selects the rule variant.
	Type RuleType `yaml:"type"`

	// AppliesTo is a glob over model names selecting the rule's scope.
	// Empty means match all models.
	AppliesTo string `yaml:"applies_to"`

	// Severity of violations produced by this rule. Default: error.
	Severity Severity `yaml:"severity"`

	// Prefix and RequiredTags parameterize require_tags_for_prefix.
	Prefix       string   `yaml:"prefix"`
	RequiredTags []string `yaml:"required_tags"`

	// MetaKey and RequireNonEmpty parameterize require_meta_field.
	MetaKey         string `yaml:"meta_key"`
	RequireNonEmpty bool   `yaml:"require_non_empty"`

	// TestTypes and MinColumns parameterize require_tests_of_type.
	// MinColumns is the number of distinct columns that must carry a test
	// of one of the listed types. Default: 1.
	TestTypes  []string `yaml:"test_types"`
	MinColumns int      `yaml:"min_columns"`
}

// Validate checks that the rule's parameter shape matches its declared
// variant. Returned errors name the rule and the offending field.
func (r *CustomRule) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("custom rule: name is required")
	}
	if r.AppliesTo != "" {
		if _, err := filepath.Match(r.AppliesTo, "probe"); err != nil {
			return fmt.Errorf("custom rule %q: invalid applies_to pattern %q: %w", r.Name, r.AppliesTo, err)
		}
	}
	if r.Severity != "" && r.Severity != SeverityError && r.Severity != SeverityWarning {
		return fmt.Errorf("custom rule %q: invalid severity %q (must be error or warning)", r.Name, r.Severity)
	}

	switch r.Type {
	case RuleRequireTagsForPrefix:
		if r.Prefix == "" {
			return fmt.Errorf("custom rule %q: require_tags_for_prefix requires a prefix", r.Name)
		}
		if len(r.RequiredTags) == 0 {
			return fmt.Errorf("custom rule %q: require_tags_for_prefix requires required_tags", r.Name)
		}
	case RuleRequireMetaField:
		if r.MetaKey == "" {
			return fmt.Errorf("custom rule %q: require_meta_field requires a meta_key", r.Name)
		}
	case RuleRequireTestsOfType:
		if len(r.TestTypes) == 0 {
			return fmt.Errorf("custom rule %q: require_tests_of_type requires test_types", r.Name)
		}
		if r.MinColumns < 0 {
			return fmt.Errorf("custom rule %q: min_columns must not be negative", r.Name)
		}
	case "":
		return fmt.Errorf("custom rule %q: type is required", r.Name)
	default:
		return fmt.Errorf("custom rule %q: unknown rule type %q (valid: %s, %s, %s)",
			r.Name, r.Type, RuleRequireTagsForPrefix, RuleRequireMetaField, RuleRequireTestsOfType)
	}
	return nil
}

func (r *CustomRule) severity() Severity {
	if r.Severity == "" {
		return SeverityError
	}
	return r.Severity
}

// CustomRuleValidator evaluates user-declared rules against the model set.
// Rules are evaluated in declaration order and independently: no rule can
// suppress another, and a model failing several rules collects one
// violation per failed rule.
type CustomRuleValidator struct {
	rules  []CustomRule
	logger *slog.Logger
}

// NewCustomRuleValidator creates a validator for the given rules. The
// rules must already have passed Validate at configuration-load time.
func NewCustomRuleValidator(rules []CustomRule, logger *slog.Logger) *CustomRuleValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &CustomRuleValidator{
		rules:  rules,
		logger: logger.With("component", "governance.custom_rules"),
	}
}

// Validate runs every rule against the models its applies_to pattern
// selects. A pattern matching zero models is valid (the layer may not
// exist yet) but is logged for operator visibility.
func (v *CustomRuleValidator) Validate(m *manifest.Manifest) []Violation {
	names := make([]string, 0, len(m.Models))
	for name := range m.Models {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []Violation
	for i := range v.rules {
		rule := &v.rules[i]
		matched := 0
		for _, name := range names {
			ok, err := matchesPattern(rule.AppliesTo, name)
			if err != nil {
				// Patterns were validated at load time; a match error here
				// means load-time validation was bypassed.
				panic(fmt.Sprintf("custom rule %q: pattern %q failed after load-time validation: %v", rule.Name, rule.AppliesTo, err))
			}
			if !ok {
				continue
			}
			matched++
			if viol := evaluateRule(rule, m.Models[name]); viol != nil {
				out = append(out, *viol)
			}
		}
		if matched == 0 {
			v.logger.Debug("custom rule matched no models",
				"rule", rule.Name,
				"applies_to", rule.AppliesTo,
			)
		}
	}
	return out
}

// matchesPattern matches a model name against a glob pattern. An empty
// pattern matches everything.
func matchesPattern(pattern, name string) (bool, error) {
	if pattern == "" {
		return true, nil
	}
	return filepath.Match(pattern, name)
}

// evaluateRule dispatches to the per-variant check. It is a pure function
// of rule and model metadata; nil means the model passes.
func evaluateRule(rule *CustomRule, model *manifest.Model) *Violation {
	switch rule.Type {
	case RuleRequireTagsForPrefix:
		return checkRequiredTags(rule, model)
	case RuleRequireMetaField:
		return checkMetaField(rule, model)
	case RuleRequireTestsOfType:
		return checkTestTypes(rule, model)
	}
	return nil
}

func checkRequiredTags(rule *CustomRule, model *manifest.Model) *Violation {
	if !strings.HasPrefix(model.Name, rule.Prefix) {
		return nil
	}
	var missing []string
	for _, tag := range rule.RequiredTags {
		if !model.HasTag(tag) {
			missing = append(missing, tag)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &Violation{
		ErrorCode:  CodeMissingTags,
		PolicyType: PolicyTypeCustom,
		ModelName:  model.Name,
		Message: fmt.Sprintf("model '%s' matches prefix '%s' but is missing required tags: %s",
			model.Name, rule.Prefix, strings.Join(missing, ", ")),
		Suggestion: fmt.Sprintf("Add the missing tags to the model's configuration (rule: %s)", rule.Name),
		Severity:   rule.severity(),
		FilePath:   model.FilePath,
	}
}

func checkMetaField(rule *CustomRule, model *manifest.Model) *Violation {
	value, present := "", false
	if model.Meta != nil {
		value, present = model.Meta[rule.MetaKey]
	}
	if present && (!rule.RequireNonEmpty || strings.TrimSpace(value) != "") {
		return nil
	}

	what := "missing"
	if present {
		what = "empty"
	}
	return &Violation{
		ErrorCode:  CodeMissingMetaField,
		PolicyType: PolicyTypeCustom,
		ModelName:  model.Name,
		Message:    fmt.Sprintf("model '%s' has %s meta field '%s'", model.Name, what, rule.MetaKey),
		Suggestion: fmt.Sprintf("Set meta.%s on the model (rule: %s)", rule.MetaKey, rule.Name),
		Severity:   rule.severity(),
		FilePath:   model.FilePath,
	}
}

func checkTestTypes(rule *CustomRule, model *manifest.Model) *Violation {
	covered := make(map[string]bool)
	for _, test := range model.TestsOfType(rule.TestTypes) {
		if test.Column != "" {
			covered[test.Column] = true
		}
	}
	required := rule.MinColumns
	if required == 0 {
		required = 1
	}
	if len(covered) >= required {
		return nil
	}
	return &Violation{
		ErrorCode:  CodeMissingTestType,
		PolicyType: PolicyTypeCustom,
		ModelName:  model.Name,
		Message: fmt.Sprintf("model '%s' has tests of type [%s] on %d column(s), fewer than the required %d",
			model.Name, strings.Join(rule.TestTypes, ", "), len(covered), required),
		Suggestion: fmt.Sprintf("Add %s tests to more columns (rule: %s)", strings.Join(rule.TestTypes, "/"), rule.Name),
		Severity:   rule.severity(),
		FilePath:   model.FilePath,
	}
}
