// Package config loads and validates Warden's YAML configuration.
//
// Configuration is validated eagerly at load time: unknown custom-rule
// variants, unparseable override patterns, bad expiry dates, and
// malformed contracts all fail the load with the offending field named.
// Nothing is deferred to evaluation time.
//
// Environment variables prefixed WARDEN_ override file values
// (e.g. WARDEN_ENFORCEMENT_LEVEL, WARDEN_HISTORY_PATH).
package config
