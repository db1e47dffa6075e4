package manifest

import "sort"

// Graph is the dependency graph derived from a manifest. Nodes are model
// and source names; edges are ref/source relationships. The graph is
// read-only after construction.
type Graph struct {
	// nodes is the existence set for all models and sources.
	nodes map[string]bool

	// forward maps a model name to the names it references (models only;
	// source edges are tracked separately since sources cannot form cycles).
	forward map[string][]string

	// reverse maps a node name to the models that reference it.
	reverse map[string][]string

	// modelNames is the sorted list of model names, for deterministic
	// iteration across runs.
	modelNames []string
}

// BuildGraph derives the dependency graph from a manifest.
func BuildGraph(m *Manifest) *Graph {
	g := &Graph{
		nodes:   make(map[string]bool, len(m.Models)+len(m.Sources)),
		forward: make(map[string][]string, len(m.Models)),
		reverse: make(map[string][]string),
	}

	for name := range m.Models {
		g.nodes[name] = true
		g.modelNames = append(g.modelNames, name)
	}
	for name := range m.Sources {
		g.nodes[name] = true
	}
	sort.Strings(g.modelNames)

	for _, name := range g.modelNames {
		model := m.Models[name]
		refs := append([]string(nil), model.Refs...)
		sort.Strings(refs)
		g.forward[name] = refs
		for _, ref := range refs {
			g.reverse[ref] = append(g.reverse[ref], name)
		}
		for _, src := range model.SourceRefs {
			g.reverse[src] = append(g.reverse[src], name)
		}
	}
	for _, deps := range g.reverse {
		sort.Strings(deps)
	}

	return g
}

// HasNode reports whether a model or source with the given name exists.
func (g *Graph) HasNode(name string) bool {
	return g.nodes[name]
}

// ModelNames returns all model names in sorted order.
func (g *Graph) ModelNames() []string {
	return g.modelNames
}

// Refs returns the models referenced by the named model, sorted.
func (g *Graph) Refs(name string) []string {
	return g.forward[name]
}

// Dependents returns the models that directly reference the named node,
// sorted.
func (g *Graph) Dependents(name string) []string {
	return g.reverse[name]
}

// TransitiveDependents returns every model downstream of the named node,
// in sorted order. Used for downstream-impact enrichment.
func (g *Graph) TransitiveDependents(name string) []string {
	seen := make(map[string]bool)
	stack := append([]string(nil), g.reverse[name]...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n] {
			continue
		}
		seen[n] = true
		stack = append(stack, g.reverse[n]...)
	}

	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
