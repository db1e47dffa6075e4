// Warden is a policy enforcement and contract monitoring engine for
// data-pipeline platforms.
//
// At build time it validates a compiled model graph against declared
// governance policies (naming, coverage, documentation, semantic
// integrity, custom rules) and gates the pipeline on the result. At run
// time it continuously checks deployed datasets against declared
// contracts (freshness, schema drift, availability, quality) and emits
// violation events and metrics.
//
// Usage:
//
//	# Enforce governance policies against a compiled manifest
//	warden enforce --manifest target/manifest.json
//
//	# Run the contract monitor
//	warden monitor --config warden.yaml
//
//	# Validate configuration and manifest without enforcing
//	warden validate --manifest target/manifest.json
//
//	# Show version information
//	warden version
package main

func main() {
	Execute()
}
