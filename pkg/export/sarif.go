package export

import (
	"encoding/json"
	"fmt"
	"sort"

	"lakefront-data/warden/pkg/governance"
)

// SARIF 2.1.0 document structures, limited to the fields warden emits.
type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	InformationURI string      `json:"informationUri,omitempty"`
	Version        string      `json:"version,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string            `json:"id"`
	Name             string            `json:"name,omitempty"`
	ShortDescription *sarifMessage     `json:"shortDescription,omitempty"`
	Properties       map[string]string `json:"properties,omitempty"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	RuleIndex int             `json:"ruleIndex"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation *sarifPhysicalLocation `json:"physicalLocation,omitempty"`
	LogicalLocations []sarifLogicalLocation `json:"logicalLocations,omitempty"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifLogicalLocation struct {
	Name string `json:"name"`
	Kind string `json:"kind,omitempty"`
}

// SARIFExporter renders an enforcement result as a SARIF 2.1.0 document
// for static-analysis tooling. Every distinct error code in the result
// becomes one rule entry; every violation becomes a result referencing
// its rule, severity level, and location when known.
type SARIFExporter struct {
	// ToolVersion is embedded in the driver block.
	ToolVersion string
}

// NewSARIFExporter creates a SARIF exporter.
func NewSARIFExporter(toolVersion string) *SARIFExporter {
	return &SARIFExporter{ToolVersion: toolVersion}
}

// Export renders the result.
func (e *SARIFExporter) Export(result *governance.EnforcementResult) ([]byte, error) {
	ruleIndex := make(map[string]int)
	var rules []sarifRule
	for _, v := range result.Violations {
		if _, ok := ruleIndex[v.ErrorCode]; ok {
			continue
		}
		ruleIndex[v.ErrorCode] = len(rules)
		rules = append(rules, sarifRule{
			ID:   v.ErrorCode,
			Name: ruleName(v.PolicyType),
			ShortDescription: &sarifMessage{
				Text: fmt.Sprintf("%s policy violation", v.PolicyType),
			},
			Properties: map[string]string{
				"policyType": string(v.PolicyType),
			},
		})
	}
	sortRulesStable(rules, ruleIndex)

	results := make([]sarifResult, 0, len(result.Violations))
	for _, v := range result.Violations {
		r := sarifResult{
			RuleID:    v.ErrorCode,
			RuleIndex: ruleIndex[v.ErrorCode],
			Level:     sarifLevel(v.Severity),
			Message:   sarifMessage{Text: resultText(v)},
		}
		loc := sarifLocation{
			LogicalLocations: []sarifLogicalLocation{{Name: v.ModelName, Kind: "member"}},
		}
		if v.FilePath != "" {
			loc.PhysicalLocation = &sarifPhysicalLocation{
				ArtifactLocation: sarifArtifactLocation{URI: v.FilePath},
			}
		}
		r.Locations = []sarifLocation{loc}
		results = append(results, r)
	}

	doc := sarifLog{
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool: sarifTool{
				Driver: sarifDriver{
					Name:    "warden",
					Version: e.ToolVersion,
					Rules:   rules,
				},
			},
			Results: results,
		}},
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal SARIF document: %w", err)
	}
	return data, nil
}

// sortRulesStable orders rules by ID and rewrites the index map to match,
// so the document is identical across runs regardless of violation order.
func sortRulesStable(rules []sarifRule, index map[string]int) {
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	for i, r := range rules {
		index[r.ID] = i
	}
}

func sarifLevel(s governance.Severity) string {
	if s == governance.SeverityError {
		return "error"
	}
	return "warning"
}

func ruleName(pt governance.PolicyType) string {
	return string(pt) + "-policy"
}

func resultText(v governance.Violation) string {
	if v.Suggestion != "" {
		return v.Message + ". Suggestion: " + v.Suggestion
	}
	return v.Message
}
