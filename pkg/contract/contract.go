package contract

import (
	"fmt"
	"time"
)

// LifecycleState is the externally-declared lifecycle state of a
// contract. The monitor never computes transitions; it only adjusts its
// enforcement behavior to the declared state.
type LifecycleState string

const (
	StateActive     LifecycleState = "active"
	StateDeprecated LifecycleState = "deprecated"
	StateSunset     LifecycleState = "sunset"
	StateRetired    LifecycleState = "retired"
)

// Valid reports whether the state is one of the declared lifecycle states.
func (s LifecycleState) Valid() bool {
	switch s {
	case StateActive, StateDeprecated, StateSunset, StateRetired:
		return true
	}
	return false
}

// CheckType identifies one of the monitor's check families.
type CheckType string

const (
	CheckFreshness    CheckType = "freshness"
	CheckSchemaDrift  CheckType = "schema_drift"
	CheckAvailability CheckType = "availability"
	CheckQuality      CheckType = "quality"
)

// Contract is a declared service-level agreement for a live dataset.
// Checks are opt-in: a nil spec means that check is not scheduled.
type Contract struct {
	// Name uniquely identifies the contract.
	Name string `yaml:"name"`

	// Version is the contract's declared version, carried on events.
	Version string `yaml:"version"`

	// Dataset is the physical dataset identifier the checks run against.
	Dataset string `yaml:"dataset"`

	// State is the declared lifecycle state. Default: active.
	// Retired contracts are not scheduled at all.
	State LifecycleState `yaml:"state"`

	// Freshness configures the data-age check.
	Freshness *FreshnessSpec `yaml:"freshness"`

	// Schema configures the schema-drift check.
	Schema *SchemaSpec `yaml:"schema"`

	// Availability configures the connectivity probe.
	Availability *AvailabilitySpec `yaml:"availability"`

	// Quality configures the delegated quality check.
	Quality *QualitySpec `yaml:"quality"`
}

// FreshnessSpec declares how stale the dataset may be.
type FreshnessSpec struct {
	// MaxAge is the maximum allowed age of the dataset's newest row.
	MaxAge time.Duration `yaml:"max_age"`

	// TimestampColumn is the column holding the row timestamp.
	TimestampColumn string `yaml:"timestamp_column"`

	// Interval is how often the check runs. Default: 15m.
	Interval time.Duration `yaml:"interval"`
}

// SchemaSpec declares the contract's expected schema.
type SchemaSpec struct {
	// Columns are the declared columns.
	Columns []ColumnSpec `yaml:"columns"`

	// Interval is how often the check runs. Default: 1h.
	Interval time.Duration `yaml:"interval"`
}

// ColumnSpec is one declared column in a contract schema.
type ColumnSpec struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`

	// Required marks the column as mandatory for consumers. Removing or
	// retyping a required column is a breaking change.
	Required bool `yaml:"required"`
}

// AvailabilitySpec declares the connectivity probe.
type AvailabilitySpec struct {
	// Interval is how often the probe runs. Default: 5m.
	Interval time.Duration `yaml:"interval"`
}

// QualitySpec declares the delegated quality check.
type QualitySpec struct {
	// MinScore is the minimum acceptable quality score in [0, 1].
	MinScore float64 `yaml:"min_score"`

	// Interval is how often the check runs. Default: 1h.
	Interval time.Duration `yaml:"interval"`
}

// Validate checks the contract's shape eagerly at load time.
func (c *Contract) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("contract: name is required")
	}
	if c.Dataset == "" {
		return fmt.Errorf("contract %q: dataset is required", c.Name)
	}
	if c.State != "" && !c.State.Valid() {
		return fmt.Errorf("contract %q: invalid state %q (must be active, deprecated, sunset, or retired)", c.Name, c.State)
	}
	if c.Freshness != nil {
		if c.Freshness.MaxAge <= 0 {
			return fmt.Errorf("contract %q: freshness.max_age must be positive", c.Name)
		}
		if c.Freshness.TimestampColumn == "" {
			return fmt.Errorf("contract %q: freshness.timestamp_column is required", c.Name)
		}
		if c.Freshness.Interval < 0 {
			return fmt.Errorf("contract %q: freshness.interval must not be negative", c.Name)
		}
	}
	if c.Schema != nil {
		if len(c.Schema.Columns) == 0 {
			return fmt.Errorf("contract %q: schema.columns must not be empty", c.Name)
		}
		seen := make(map[string]bool)
		for _, col := range c.Schema.Columns {
			if col.Name == "" {
				return fmt.Errorf("contract %q: schema column name is required", c.Name)
			}
			if seen[col.Name] {
				return fmt.Errorf("contract %q: duplicate schema column %q", c.Name, col.Name)
			}
			seen[col.Name] = true
		}
	}
	if c.Quality != nil {
		if c.Quality.MinScore < 0 || c.Quality.MinScore > 1 {
			return fmt.Errorf("contract %q: quality.min_score must be between 0 and 1", c.Name)
		}
	}
	if c.Freshness == nil && c.Schema == nil && c.Availability == nil && c.Quality == nil {
		return fmt.Errorf("contract %q: at least one check must be declared", c.Name)
	}
	return nil
}

// EffectiveState returns the declared state, defaulting to active.
func (c *Contract) EffectiveState() LifecycleState {
	if c.State == "" {
		return StateActive
	}
	return c.State
}

// CheckTypes returns the check families this contract declares, in a
// fixed order.
func (c *Contract) CheckTypes() []CheckType {
	var out []CheckType
	if c.Freshness != nil {
		out = append(out, CheckFreshness)
	}
	if c.Schema != nil {
		out = append(out, CheckSchemaDrift)
	}
	if c.Availability != nil {
		out = append(out, CheckAvailability)
	}
	if c.Quality != nil {
		out = append(out, CheckQuality)
	}
	return out
}
