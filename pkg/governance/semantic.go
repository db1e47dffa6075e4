package governance

import (
	"fmt"
	"sort"
	"strings"

	"lakefront-data/warden/pkg/manifest"
)

// SemanticValidator checks reference integrity over the compiled graph:
// references to missing nodes, references to undeclared sources, and
// reference cycles. It treats the graph as read-only input and is pure
// computation; the only failure mode is a violation, never an error.
type SemanticValidator struct{}

// NewSemanticValidator creates a semantic validator.
func NewSemanticValidator() *SemanticValidator {
	return &SemanticValidator{}
}

// Validate produces violations for broken references, undeclared sources,
// and cycles. Models are visited in sorted name order so output is stable
// across runs.
func (v *SemanticValidator) Validate(m *manifest.Manifest, g *manifest.Graph) []Violation {
	var out []Violation

	knownModels := g.ModelNames()
	knownSources := make([]string, 0, len(m.Sources))
	for name := range m.Sources {
		knownSources = append(knownSources, name)
	}
	sort.Strings(knownSources)

	for _, name := range knownModels {
		model := m.Models[name]

		for _, ref := range g.Refs(name) {
			if g.HasNode(ref) {
				continue
			}
			out = append(out, Violation{
				ErrorCode:  CodeMissingRef,
				PolicyType: PolicyTypeSemantic,
				ModelName:  name,
				Message:    fmt.Sprintf("model '%s' references '%s', which does not exist in the project", name, ref),
				Suggestion: suggestName(ref, knownModels),
				Severity:   SeverityError,
				FilePath:   model.FilePath,
			})
		}

		for _, src := range model.SourceRefs {
			if _, ok := m.Sources[src]; ok {
				continue
			}
			out = append(out, Violation{
				ErrorCode:  CodeUndeclaredSource,
				PolicyType: PolicyTypeSemantic,
				ModelName:  name,
				Message:    fmt.Sprintf("model '%s' reads from source '%s', which is not declared", name, src),
				Suggestion: suggestName(src, knownSources),
				Severity:   SeverityError,
				FilePath:   model.FilePath,
			})
		}
	}

	out = append(out, v.detectCycles(m, g)...)
	return out
}

// node colors for the iterative DFS.
const (
	white = iota // unvisited
	grey         // on the current DFS path
	black        // fully explored
)

// detectCycles finds reference cycles with an iterative DFS over the
// model graph, O(V+E). When a grey node is re-entered, the slice of the
// current path from that node's first occurrence is a minimal cycle;
// every node on it receives one violation so all contributing models are
// flagged, not only the first one encountered.
func (v *SemanticValidator) detectCycles(m *manifest.Manifest, g *manifest.Graph) []Violation {
	color := make(map[string]int, len(g.ModelNames()))
	var out []Violation

	for _, start := range g.ModelNames() {
		if color[start] != white {
			continue
		}

		type frame struct {
			node string
			next int
		}
		stack := []frame{{node: start}}
		path := []string{}
		color[start] = grey
		path = append(path, start)

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			refs := g.Refs(top.node)

			advanced := false
			for top.next < len(refs) {
				ref := refs[top.next]
				top.next++

				// Edges into sources or missing nodes cannot close a cycle.
				if _, ok := m.Models[ref]; !ok {
					continue
				}

				switch color[ref] {
				case grey:
					out = append(out, cycleViolations(m, path, ref)...)
				case white:
					color[ref] = grey
					path = append(path, ref)
					stack = append(stack, frame{node: ref})
					advanced = true
				}
				if advanced {
					break
				}
			}

			if !advanced {
				color[top.node] = black
				path = path[:len(path)-1]
				stack = stack[:len(stack)-1]
			}
		}
	}

	return out
}

// cycleViolations emits one violation per node on the minimal cycle
// closing at entry. The cycle is rotated to start at its
// lexicographically smallest node so identical inputs produce identical
// messages regardless of traversal order.
func cycleViolations(m *manifest.Manifest, path []string, entry string) []Violation {
	start := -1
	for i, n := range path {
		if n == entry {
			start = i
			break
		}
	}
	if start < 0 {
		// The grey invariant guarantees entry is on the path; a miss means
		// the traversal state is corrupt.
		panic(fmt.Sprintf("cycle entry %q not on DFS path %v", entry, path))
	}

	cycle := append([]string(nil), path[start:]...)
	cycle = canonicalizeCycle(cycle)

	display := strings.Join(append(cycle, cycle[0]), " -> ")
	out := make([]Violation, 0, len(cycle))
	for _, name := range cycle {
		var filePath string
		if model, ok := m.Models[name]; ok {
			filePath = model.FilePath
		}
		out = append(out, Violation{
			ErrorCode:  CodeCircularRef,
			PolicyType: PolicyTypeSemantic,
			ModelName:  name,
			Message:    fmt.Sprintf("model '%s' is part of a reference cycle: %s", name, display),
			Suggestion: "Break the cycle by removing one of the references or introducing an intermediate model",
			Severity:   SeverityError,
			FilePath:   filePath,
		})
	}
	return out
}

// canonicalizeCycle rotates the cycle so the lexicographically smallest
// node comes first.
func canonicalizeCycle(cycle []string) []string {
	if len(cycle) <= 1 {
		return cycle
	}
	smallest := 0
	for i, n := range cycle {
		if n < cycle[smallest] {
			smallest = i
		}
	}
	return append(cycle[smallest:], cycle[:smallest]...)
}
