package governance

import "lakefront-data/warden/pkg/manifest"

// EnrichDownstreamImpact fills each violation's DownstreamImpact with the
// transitive dependents of its model. The walk costs a reverse-graph
// traversal per distinct model, so the enforcer only runs it when the
// caller asks; the pass/fail verdict never depends on it.
func EnrichDownstreamImpact(violations []Violation, g *manifest.Graph) []Violation {
	cache := make(map[string][]string)
	out := make([]Violation, len(violations))
	for i, v := range violations {
		impact, ok := cache[v.ModelName]
		if !ok {
			impact = g.TransitiveDependents(v.ModelName)
			cache[v.ModelName] = impact
		}
		if len(impact) > 0 {
			v.DownstreamImpact = impact
		}
		out[i] = v
	}
	return out
}
