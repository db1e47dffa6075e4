package manifest

import (
	"reflect"
	"testing"
)

func graphFixture() *Graph {
	m := &Manifest{
		SchemaVersion: 1,
		Models: map[string]*Model{
			"stg_a": {Name: "stg_a"},
			"stg_b": {Name: "stg_b"},
			"int_c": {Name: "int_c", Refs: []string{"stg_a", "stg_b"}},
			"fct_d": {Name: "fct_d", Refs: []string{"int_c", "stg_a"}},
			"fct_e": {Name: "fct_e", Refs: []string{"ghost"}},
		},
	}
	return BuildGraph(m)
}

func TestGraph_HasNode(t *testing.T) {
	g := graphFixture()
	if !g.HasNode("stg_a") {
		t.Error("stg_a should be a node")
	}
	if g.HasNode("ghost") {
		t.Error("a dangling ref target must not become a node")
	}
}

func TestGraph_ModelNames(t *testing.T) {
	g := graphFixture()
	want := []string{"fct_d", "fct_e", "int_c", "stg_a", "stg_b"}
	if got := g.ModelNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("model names = %v, want sorted %v", got, want)
	}
}

func TestGraph_Dependents(t *testing.T) {
	g := graphFixture()
	tests := []struct {
		node string
		want []string
	}{
		{"stg_a", []string{"fct_d", "int_c"}},
		{"int_c", []string{"fct_d"}},
		{"fct_d", nil},
	}
	for _, tt := range tests {
		if got := g.Dependents(tt.node); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Dependents(%q) = %v, want %v", tt.node, got, tt.want)
		}
	}
}

func TestGraph_TransitiveDependents(t *testing.T) {
	g := graphFixture()
	tests := []struct {
		node string
		want []string
	}{
		{"stg_a", []string{"fct_d", "int_c"}},
		{"stg_b", []string{"fct_d", "int_c"}},
		{"int_c", []string{"fct_d"}},
		{"fct_d", []string{}},
		{"nonexistent", []string{}},
	}
	for _, tt := range tests {
		if got := g.TransitiveDependents(tt.node); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("TransitiveDependents(%q) = %v, want %v", tt.node, got, tt.want)
		}
	}
}

func TestGraph_TransitiveDependentsWithCycle(t *testing.T) {
	m := &Manifest{
		SchemaVersion: 1,
		Models: map[string]*Model{
			"a": {Name: "a", Refs: []string{"b"}},
			"b": {Name: "b", Refs: []string{"a"}},
		},
	}
	g := BuildGraph(m)
	// Must terminate; the start node appears because it is reachable from
	// itself through the cycle.
	got := g.TransitiveDependents("a")
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("TransitiveDependents in a cycle = %v, want [a b]", got)
	}
}
