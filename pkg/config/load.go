package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var structValidator = validator.New()

// Load reads a YAML configuration file, overlays it on the defaults,
// applies RIFT_* environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadIfPresent behaves like Load but falls back to the defaults when
// the file does not exist. An empty path always yields the defaults.
func LoadIfPresent(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultConfig()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays RIFT_* environment variables on the configuration.
// Overrides are applied before validation so a bad value still fails
// the load.
func (c *Config) applyEnv() {
	if v := os.Getenv("RIFT_LOG_LEVEL"); v != "" {
		c.Telemetry.LogLevel = v
	}
	if v := os.Getenv("RIFT_LOG_FORMAT"); v != "" {
		c.Telemetry.LogFormat = v
	}
	if v := os.Getenv("RIFT_METRICS_ADDR"); v != "" {
		c.Telemetry.MetricsAddr = v
	}
	if v := os.Getenv("RIFT_TRACING_ENDPOINT"); v != "" {
		c.Telemetry.TracingEndpoint = v
	}
	if v := os.Getenv("RIFT_WORK_DIR"); v != "" {
		c.Executor.WorkDir = v
	}
	if v := os.Getenv("RIFT_DEPLOY_DIR"); v != "" {
		c.Deploy.LocalDir = v
	}
	if v := os.Getenv("RIFT_POLICY_MODE"); v != "" {
		c.Policy.Mode = v
	}
	if v := os.Getenv("RIFT_HISTORY_PATH"); v != "" {
		c.History.Path = v
	}
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	err := structValidator.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}

	details := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, ValidationError{
			Field:   fe.Namespace(),
			Value:   fmt.Sprintf("%v", fe.Value()),
			Message: constraintMessage(fe),
		})
	}
	return &InvalidConfigError{Errors: details}
}

func constraintMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "value is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "hostname_port":
		return "must be a host:port address"
	default:
		return fmt.Sprintf("failed %q constraint", fe.Tag())
	}
}

// ValidationError describes a single field constraint failure.
type ValidationError struct {
	// Field is the dotted path to the failing field.
	Field string `json:"field"`

	// Value is the rejected value rendered as a string.
	Value string `json:"value,omitempty"`

	// Message describes the failed constraint.
	Message string `json:"message"`
}

// InvalidConfigError aggregates every constraint failure found in one
// validation pass.
type InvalidConfigError struct {
	Errors []ValidationError
}

func (e *InvalidConfigError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		parts[i] = fmt.Sprintf("%s: %s", ve.Field, ve.Message)
	}
	return "invalid config: " + strings.Join(parts, "; ")
}
