package contract

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestContract_Validate(t *testing.T) {
	valid := Contract{
		Name:    "orders_daily",
		Dataset: "analytics.orders",
		Freshness: &FreshnessSpec{
			MaxAge:          6 * time.Hour,
			TimestampColumn: "loaded_at",
		},
	}

	tests := []struct {
		name    string
		mutate  func(c *Contract)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Contract) {}},
		{name: "missing name", mutate: func(c *Contract) { c.Name = "" }, wantErr: "name is required"},
		{name: "missing dataset", mutate: func(c *Contract) { c.Dataset = "" }, wantErr: "dataset is required"},
		{name: "bad state", mutate: func(c *Contract) { c.State = "zombie" }, wantErr: "invalid state"},
		{
			name:    "freshness without max_age",
			mutate:  func(c *Contract) { c.Freshness.MaxAge = 0 },
			wantErr: "max_age must be positive",
		},
		{
			name:    "freshness without column",
			mutate:  func(c *Contract) { c.Freshness.TimestampColumn = "" },
			wantErr: "timestamp_column is required",
		},
		{
			name: "empty schema",
			mutate: func(c *Contract) {
				c.Schema = &SchemaSpec{}
			},
			wantErr: "schema.columns must not be empty",
		},
		{
			name: "duplicate schema column",
			mutate: func(c *Contract) {
				c.Schema = &SchemaSpec{Columns: []ColumnSpec{{Name: "id"}, {Name: "id"}}}
			},
			wantErr: "duplicate schema column",
		},
		{
			name: "quality score out of range",
			mutate: func(c *Contract) {
				c.Quality = &QualitySpec{MinScore: 1.5}
			},
			wantErr: "min_score must be between 0 and 1",
		},
		{
			name:    "no checks declared",
			mutate:  func(c *Contract) { c.Freshness = nil },
			wantErr: "at least one check",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			fresh := *valid.Freshness
			c.Freshness = &fresh
			tt.mutate(&c)

			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestContract_EffectiveState(t *testing.T) {
	c := Contract{}
	if got := c.EffectiveState(); got != StateActive {
		t.Errorf("default state = %q, want active", got)
	}
	c.State = StateSunset
	if got := c.EffectiveState(); got != StateSunset {
		t.Errorf("state = %q, want sunset", got)
	}
}

func TestContract_CheckTypes(t *testing.T) {
	c := Contract{
		Freshness: &FreshnessSpec{},
		Quality:   &QualitySpec{},
	}
	want := []CheckType{CheckFreshness, CheckQuality}
	if got := c.CheckTypes(); !reflect.DeepEqual(got, want) {
		t.Errorf("check types = %v, want %v", got, want)
	}
	if got := (&Contract{}).CheckTypes(); len(got) != 0 {
		t.Errorf("a contract without specs should declare no checks, got %v", got)
	}
}

func TestCheckInterval(t *testing.T) {
	c := &Contract{
		Freshness:    &FreshnessSpec{Interval: 2 * time.Minute},
		Schema:       &SchemaSpec{},
		Availability: &AvailabilitySpec{},
		Quality:      &QualitySpec{Interval: 30 * time.Minute},
	}

	tests := []struct {
		check CheckType
		want  time.Duration
	}{
		{CheckFreshness, 2 * time.Minute},
		{CheckSchemaDrift, DefaultDriftInterval},
		{CheckAvailability, DefaultAvailabilityInterval},
		{CheckQuality, 30 * time.Minute},
	}
	for _, tt := range tests {
		if got := checkInterval(c, tt.check); got != tt.want {
			t.Errorf("checkInterval(%s) = %v, want %v", tt.check, got, tt.want)
		}
	}
}
