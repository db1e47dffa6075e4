package governance

import (
	"reflect"
	"strings"
	"testing"

	"lakefront-data/warden/pkg/manifest"
)

func testManifest(models map[string]*manifest.Model, sources ...string) *manifest.Manifest {
	m := &manifest.Manifest{
		SchemaVersion: 1,
		Models:        models,
		Sources:       make(map[string]*manifest.Source),
	}
	for name, model := range models {
		if model.Name == "" {
			model.Name = name
		}
	}
	for _, s := range sources {
		m.Sources[s] = &manifest.Source{Name: s}
	}
	return m
}

func semanticViolations(t *testing.T, m *manifest.Manifest) []Violation {
	t.Helper()
	return NewSemanticValidator().Validate(m, manifest.BuildGraph(m))
}

func TestSemanticValidator_MissingRef(t *testing.T) {
	m := testManifest(map[string]*manifest.Model{
		"customers": {},
		"orders":    {Refs: []string{"custommers"}},
	})

	got := semanticViolations(t, m)
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 violation, got %d: %+v", len(got), got)
	}
	v := got[0]
	if v.PolicyType != PolicyTypeSemantic {
		t.Errorf("policy type = %q, want semantic", v.PolicyType)
	}
	if v.ModelName != "orders" {
		t.Errorf("model name = %q, want orders", v.ModelName)
	}
	if v.ErrorCode != CodeMissingRef {
		t.Errorf("error code = %q, want %q", v.ErrorCode, CodeMissingRef)
	}
	if !strings.Contains(v.Suggestion, "customers") {
		t.Errorf("suggestion %q should mention the close match 'customers'", v.Suggestion)
	}
}

func TestSemanticValidator_UndeclaredSource(t *testing.T) {
	m := testManifest(map[string]*manifest.Model{
		"stg_events": {SourceRefs: []string{"raw_events"}},
	}, "raw_event_log")

	got := semanticViolations(t, m)
	if len(got) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(got))
	}
	if got[0].ErrorCode != CodeUndeclaredSource {
		t.Errorf("error code = %q, want %q", got[0].ErrorCode, CodeUndeclaredSource)
	}
}

func TestSemanticValidator_DeclaredRefsAndSources(t *testing.T) {
	m := testManifest(map[string]*manifest.Model{
		"stg_orders": {SourceRefs: []string{"raw_orders"}},
		"fct_orders": {Refs: []string{"stg_orders"}},
	}, "raw_orders")

	if got := semanticViolations(t, m); len(got) != 0 {
		t.Fatalf("expected no violations, got %+v", got)
	}
}

func TestSemanticValidator_CycleFlagsEveryNode(t *testing.T) {
	m := testManifest(map[string]*manifest.Model{
		"a": {Refs: []string{"b"}},
		"b": {Refs: []string{"c"}},
		"c": {Refs: []string{"a"}},
	})

	got := semanticViolations(t, m)
	if len(got) != 3 {
		t.Fatalf("expected 3 cycle violations, got %d: %+v", len(got), got)
	}

	flagged := make(map[string]bool)
	for _, v := range got {
		if v.ErrorCode != CodeCircularRef {
			t.Errorf("error code = %q, want %q", v.ErrorCode, CodeCircularRef)
		}
		if v.Severity != SeverityError {
			t.Errorf("severity = %q, want error", v.Severity)
		}
		flagged[v.ModelName] = true
		if !strings.Contains(v.Message, "a -> b -> c -> a") {
			t.Errorf("message %q should contain the canonical cycle path", v.Message)
		}
	}
	for _, name := range []string{"a", "b", "c"} {
		if !flagged[name] {
			t.Errorf("model %q on the cycle was not flagged", name)
		}
	}
}

func TestSemanticValidator_SelfReference(t *testing.T) {
	m := testManifest(map[string]*manifest.Model{
		"recursive": {Refs: []string{"recursive"}},
	})

	got := semanticViolations(t, m)
	if len(got) != 1 {
		t.Fatalf("expected 1 violation for a self-reference, got %d", len(got))
	}
	if got[0].ErrorCode != CodeCircularRef {
		t.Errorf("error code = %q, want %q", got[0].ErrorCode, CodeCircularRef)
	}
}

func TestSemanticValidator_AcyclicGraphIsClean(t *testing.T) {
	m := testManifest(map[string]*manifest.Model{
		"stg_a": {},
		"stg_b": {},
		"int_c": {Refs: []string{"stg_a", "stg_b"}},
		"fct_d": {Refs: []string{"int_c", "stg_a"}},
	})

	for _, v := range semanticViolations(t, m) {
		if v.ErrorCode == CodeCircularRef {
			t.Fatalf("acyclic graph produced cycle violation: %+v", v)
		}
	}
}

func TestSemanticValidator_TwoDisjointCycles(t *testing.T) {
	m := testManifest(map[string]*manifest.Model{
		"a": {Refs: []string{"b"}},
		"b": {Refs: []string{"a"}},
		"x": {Refs: []string{"y"}},
		"y": {Refs: []string{"x"}},
	})

	got := semanticViolations(t, m)
	if len(got) != 4 {
		t.Fatalf("expected 4 violations across two cycles, got %d", len(got))
	}
}

func TestSemanticValidator_Deterministic(t *testing.T) {
	m := testManifest(map[string]*manifest.Model{
		"m1": {Refs: []string{"missing_a", "missing_b"}},
		"m2": {Refs: []string{"m1"}},
		"m3": {Refs: []string{"m2", "m3"}},
	})

	first := semanticViolations(t, m)
	for range 10 {
		again := semanticViolations(t, m)
		if len(again) != len(first) {
			t.Fatalf("violation count varies between runs: %d vs %d", len(first), len(again))
		}
		for i := range first {
			if !reflect.DeepEqual(first[i], again[i]) {
				t.Fatalf("violation %d differs between runs:\n  %+v\n  %+v", i, first[i], again[i])
			}
		}
	}
}
