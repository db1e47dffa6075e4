// Package governance implements build-time policy enforcement over a
// compiled model manifest.
//
// # Overview
//
// The governance package validates a compiled dependency graph against
// declared policies and returns an aggregated EnforcementResult:
//
//   - Built-in checks: naming conventions, test coverage, documentation
//   - Semantic validation: broken references, undeclared sources, cycles
//   - Custom rules: user-declared tag/metadata/test requirements scoped
//     by glob pattern
//   - Overrides: pattern-matched severity downgrades and exclusions with
//     expiry and audit reasons
//
// # Enforcement Flow
//
//	enforcer, err := governance.NewEnforcer(cfg, logger)
//	result, err := enforcer.Enforce(manifest, governance.EnforceOptions{})
//	if !result.Passed {
//	    // block the build
//	}
//
// Validators run independently and never short-circuit each other. Raw
// violations pass through the override resolver before aggregation, so a
// violation's post-override severity and its override provenance are both
// visible in the result.
//
// # Failure Semantics
//
// Policy breaches are Violations, returned as first-class values and
// never raised as errors. Malformed configuration (unknown rule variant,
// bad glob, bad expiry date) fails at configuration-load time with the
// offending field named. An unsupported manifest version is a hard error
// from Enforce itself.
package governance
