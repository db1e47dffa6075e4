package governance

import (
	"testing"

	"lakefront-data/warden/pkg/manifest"
)

func boolPtr(v bool) *bool { return &v }

func TestBuiltinValidator_Naming(t *testing.T) {
	prefixes := []string{"stg_", "int_", "fct_", "dim_"}

	tests := []struct {
		name       string
		policy     NamingPolicy
		model      string
		wantCount  int
		wantSeverity Severity
	}{
		{
			name:      "allowed prefix",
			policy:    NamingPolicy{AllowedPrefixes: prefixes},
			model:     "stg_orders",
			wantCount: 0,
		},
		{
			name:         "disallowed prefix",
			policy:       NamingPolicy{AllowedPrefixes: prefixes},
			model:        "orders",
			wantCount:    1,
			wantSeverity: SeverityWarning,
		},
		{
			name:         "severity override",
			policy:       NamingPolicy{AllowedPrefixes: prefixes, Severity: SeverityError},
			model:        "orders",
			wantCount:    1,
			wantSeverity: SeverityError,
		},
		{
			name:      "disabled",
			policy:    NamingPolicy{Enabled: boolPtr(false), AllowedPrefixes: prefixes},
			model:     "orders",
			wantCount: 0,
		},
		{
			name:      "no prefixes configured",
			policy:    NamingPolicy{},
			model:     "orders",
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testManifest(map[string]*manifest.Model{
				tt.model: {Description: "d", Tests: []manifest.TestDef{{Type: "not_null"}}},
			})
			v := NewBuiltinValidator(BuiltinPolicies{Naming: tt.policy})
			got := v.Validate(m)
			if len(got) != tt.wantCount {
				t.Fatalf("expected %d violations, got %d: %+v", tt.wantCount, len(got), got)
			}
			if tt.wantCount > 0 {
				if got[0].ErrorCode != CodeNamingPrefix {
					t.Errorf("error code = %q, want %q", got[0].ErrorCode, CodeNamingPrefix)
				}
				if got[0].Severity != tt.wantSeverity {
					t.Errorf("severity = %q, want %q", got[0].Severity, tt.wantSeverity)
				}
			}
		})
	}
}

func TestBuiltinValidator_Coverage(t *testing.T) {
	tests := []struct {
		name      string
		policy    CoveragePolicy
		tests     []manifest.TestDef
		wantCount int
	}{
		{name: "meets default minimum", tests: []manifest.TestDef{{Type: "unique"}}, wantCount: 0},
		{name: "no tests", wantCount: 1},
		{
			name:      "below raised minimum",
			policy:    CoveragePolicy{MinTests: 2},
			tests:     []manifest.TestDef{{Type: "unique"}},
			wantCount: 1,
		},
		{name: "disabled", policy: CoveragePolicy{Enabled: boolPtr(false)}, wantCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testManifest(map[string]*manifest.Model{
				"fct_orders": {Description: "d", Tests: tt.tests},
			})
			policies := BuiltinPolicies{Coverage: tt.policy}
			got := NewBuiltinValidator(policies).Validate(m)

			coverage := 0
			for _, v := range got {
				if v.ErrorCode == CodeLowTestCoverage {
					coverage++
				}
			}
			if coverage != tt.wantCount {
				t.Fatalf("expected %d coverage violations, got %d: %+v", tt.wantCount, coverage, got)
			}
		})
	}
}

func TestBuiltinValidator_Documentation(t *testing.T) {
	tests := []struct {
		name      string
		policy    DocumentationPolicy
		model     manifest.Model
		wantCodes []string
	}{
		{
			name:  "documented",
			model: manifest.Model{Description: "orders fact table", Owner: "data-eng"},
		},
		{
			name:      "missing description",
			model:     manifest.Model{Owner: "data-eng"},
			wantCodes: []string{CodeMissingDescription},
		},
		{
			name:      "whitespace description",
			model:     manifest.Model{Description: "   "},
			wantCodes: []string{CodeMissingDescription},
		},
		{
			name:      "owner required and missing",
			policy:    DocumentationPolicy{RequireOwner: true},
			model:     manifest.Model{Description: "d"},
			wantCodes: []string{CodeMissingOwner},
		},
		{
			name:      "both missing",
			policy:    DocumentationPolicy{RequireOwner: true},
			model:     manifest.Model{},
			wantCodes: []string{CodeMissingDescription, CodeMissingOwner},
		},
		{
			name:   "owner not required",
			model:  manifest.Model{Description: "d"},
			policy: DocumentationPolicy{RequireOwner: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := tt.model
			model.Name = "fct_x"
			model.Tests = []manifest.TestDef{{Type: "not_null"}}
			m := testManifest(map[string]*manifest.Model{"fct_x": &model})

			got := NewBuiltinValidator(BuiltinPolicies{Documentation: tt.policy}).Validate(m)
			var codes []string
			for _, v := range got {
				if v.PolicyType == PolicyTypeDocumentation {
					codes = append(codes, v.ErrorCode)
				}
			}
			if len(codes) != len(tt.wantCodes) {
				t.Fatalf("codes = %v, want %v", codes, tt.wantCodes)
			}
			for i := range codes {
				if codes[i] != tt.wantCodes[i] {
					t.Errorf("codes = %v, want %v", codes, tt.wantCodes)
					break
				}
			}
		})
	}
}
