package config

import (
	"fmt"
	"strings"
)

// FieldError is a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field.
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError aggregates every validation error found in a
// configuration, so operators fix a bad file in one round trip.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate eagerly validates the entire configuration, collecting every
// error rather than failing on the first. Malformed custom rules,
// override patterns, and contracts are all rejected here, never at
// evaluation time.
func Validate(cfg *Config) error {
	var errs []FieldError

	if err := cfg.Governance.Validate(); err != nil {
		errs = append(errs, FieldError{Field: "governance", Message: err.Error()})
	}

	seen := make(map[string]bool)
	for i := range cfg.Contracts {
		field := fmt.Sprintf("contracts[%d]", i)
		if err := cfg.Contracts[i].Validate(); err != nil {
			errs = append(errs, FieldError{Field: field, Message: err.Error()})
			continue
		}
		if seen[cfg.Contracts[i].Name] {
			errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf("duplicate contract name %q", cfg.Contracts[i].Name)})
		}
		seen[cfg.Contracts[i].Name] = true
	}

	if len(cfg.Contracts) > 0 && cfg.Datasource.DSN == "" {
		errs = append(errs, FieldError{Field: "datasource.dsn", Message: "required when contracts are configured"})
	}
	for i := range cfg.Contracts {
		if cfg.Contracts[i].Quality != nil && len(cfg.Quality.Command) == 0 {
			errs = append(errs, FieldError{
				Field:   "quality.command",
				Message: fmt.Sprintf("required: contract %q declares a quality check", cfg.Contracts[i].Name),
			})
			break
		}
	}

	switch cfg.History.Backend {
	case "sqlite", "memory":
	default:
		errs = append(errs, FieldError{
			Field:   "history.backend",
			Message: fmt.Sprintf("invalid backend %q (must be sqlite or memory)", cfg.History.Backend),
		})
	}
	if cfg.History.Backend == "sqlite" && cfg.History.Path == "" {
		errs = append(errs, FieldError{Field: "history.path", Message: "path is required for the sqlite backend"})
	}

	if cfg.Monitor.ConnectTimeout < 0 {
		errs = append(errs, FieldError{Field: "monitor.connect_timeout", Message: "must not be negative"})
	}
	if cfg.Monitor.QueryTimeout < 0 {
		errs = append(errs, FieldError{Field: "monitor.query_timeout", Message: "must not be negative"})
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}
