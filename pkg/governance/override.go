package governance

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"
)

// OverrideAction is what a matching override does to a violation.
type OverrideAction string

const (
	// ActionDowngrade rewrites an error-severity violation to warning.
	ActionDowngrade OverrideAction = "downgrade"

	// ActionExclude removes the violation from the result entirely.
	ActionExclude OverrideAction = "exclude"
)

// PolicyOverride is a configured exception to normal enforcement.
// Overrides are evaluated in declaration order; the first matching,
// non-expired override for a violation wins. No stacking.
type PolicyOverride struct {
	// Pattern is a glob over model names.
	Pattern string `yaml:"pattern"`

	// Action is downgrade or exclude.
	Action OverrideAction `yaml:"action"`

	// Reason documents why the exception exists. Audit-mandatory.
	Reason string `yaml:"reason"`

	// Expires is an optional expiry date ("2006-01-02"). An expired
	// override is skipped and flagged once per run.
	Expires string `yaml:"expires"`

	// PolicyTypes optionally restricts which policy families the override
	// applies to. Empty means all.
	PolicyTypes []PolicyType `yaml:"policy_types"`
}

// Validate checks the override's shape. Returned errors name the
// offending field so misconfiguration is caught at load time.
func (o *PolicyOverride) Validate() error {
	if o.Pattern == "" {
		return fmt.Errorf("override: pattern is required")
	}
	if _, err := filepath.Match(o.Pattern, "probe"); err != nil {
		return fmt.Errorf("override %q: invalid pattern: %w", o.Pattern, err)
	}
	if o.Action != ActionDowngrade && o.Action != ActionExclude {
		return fmt.Errorf("override %q: invalid action %q (must be downgrade or exclude)", o.Pattern, o.Action)
	}
	if o.Reason == "" {
		return fmt.Errorf("override %q: reason is required for audit purposes", o.Pattern)
	}
	if o.Expires != "" {
		if _, err := time.Parse("2006-01-02", o.Expires); err != nil {
			return fmt.Errorf("override %q: invalid expires date %q (expected YYYY-MM-DD): %w", o.Pattern, o.Expires, err)
		}
	}
	for _, pt := range o.PolicyTypes {
		if !validPolicyType(pt) {
			return fmt.Errorf("override %q: unknown policy type %q", o.Pattern, pt)
		}
	}
	return nil
}

func validPolicyType(pt PolicyType) bool {
	for _, known := range AllPolicyTypes {
		if pt == known {
			return true
		}
	}
	return false
}

// expired reports whether the override is past its expiry at the given
// instant. An override without an expiry never expires.
func (o *PolicyOverride) expired(now time.Time) bool {
	if o.Expires == "" {
		return false
	}
	expires, err := time.Parse("2006-01-02", o.Expires)
	if err != nil {
		// Dates are validated at load time.
		return false
	}
	return now.After(expires.Add(24 * time.Hour))
}

func (o *PolicyOverride) appliesToType(pt PolicyType) bool {
	if len(o.PolicyTypes) == 0 {
		return true
	}
	for _, t := range o.PolicyTypes {
		if t == pt {
			return true
		}
	}
	return false
}

// OverrideResolver applies pattern-matched severity overrides on top of
// raw violations.
type OverrideResolver struct {
	overrides []PolicyOverride
	logger    *slog.Logger
	now       func() time.Time
}

// NewOverrideResolver creates a resolver for the given overrides, which
// must already have passed Validate.
func NewOverrideResolver(overrides []PolicyOverride, logger *slog.Logger) *OverrideResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &OverrideResolver{
		overrides: overrides,
		logger:    logger.With("component", "governance.overrides"),
		now:       time.Now,
	}
}

// Resolve returns the adjusted violation list and the number of overrides
// actually applied. Expired overrides are skipped with one warning per
// override per run; an override whose pattern matched no violation at all
// is surfaced as a likely-stale warning.
func (r *OverrideResolver) Resolve(violations []Violation) ([]Violation, int) {
	now := r.now()
	applied := 0
	warnedExpired := make(map[int]bool)
	matchedAny := make(map[int]bool)

	out := make([]Violation, 0, len(violations))
	for _, v := range violations {
		idx := r.firstMatch(v, now, warnedExpired)
		if idx < 0 {
			out = append(out, v)
			continue
		}
		matchedAny[idx] = true
		ov := &r.overrides[idx]

		switch ov.Action {
		case ActionExclude:
			applied++
			r.logger.Debug("violation excluded by override",
				"pattern", ov.Pattern,
				"model", v.ModelName,
				"error_code", v.ErrorCode,
				"reason", ov.Reason,
			)
		case ActionDowngrade:
			if v.Severity == SeverityError {
				v.Severity = SeverityWarning
			}
			v.OverrideApplied = ov.Pattern
			applied++
			out = append(out, v)
		}
	}

	for i := range r.overrides {
		if matchedAny[i] || warnedExpired[i] {
			continue
		}
		ov := &r.overrides[i]
		if ov.expired(now) {
			// Expired and never encountered during matching; still a
			// configuration warning, not merely a stale pattern.
			r.logger.Warn("ignoring expired override",
				"pattern", ov.Pattern,
				"expires", ov.Expires,
				"reason", ov.Reason,
			)
			continue
		}
		r.logger.Warn("override matched no violations, it may be stale",
			"pattern", ov.Pattern,
			"action", string(ov.Action),
		)
	}

	return out, applied
}

// firstMatch finds the first non-expired override matching the violation,
// warning once per expired override encountered along the way.
func (r *OverrideResolver) firstMatch(v Violation, now time.Time, warnedExpired map[int]bool) int {
	for i := range r.overrides {
		ov := &r.overrides[i]
		matched, err := filepath.Match(ov.Pattern, v.ModelName)
		if err != nil || !matched || !ov.appliesToType(v.PolicyType) {
			continue
		}
		if ov.expired(now) {
			if !warnedExpired[i] {
				warnedExpired[i] = true
				r.logger.Warn("ignoring expired override",
					"pattern", ov.Pattern,
					"expires", ov.Expires,
					"reason", ov.Reason,
				)
			}
			continue
		}
		return i
	}
	return -1
}
