package app

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ScriptPath string `flag:"script" validate:"required"` // .hcl file or directory

	LogFormat       string `flag:"log-format" validate:"oneof=text json auto"`
	LogLevel        string `flag:"log-level" validate:"oneof=debug info warn error"`
	HealthcheckPort int    `flag:"healthcheck-port" validate:"gte=0,lte=65535"`
	PrintVars       bool   `flag:"print-vars"`
}

// NewConfig fills in defaults and validates cfg.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.LogFormat == "" {
		cfg.LogFormat = "auto"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("flag")
	})

	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, err
		}
		problems := make([]error, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			problems = append(problems, describe(fe))
		}
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(problems...))
	}
	return &cfg, nil
}

func describe(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", fe.Field())
	case "oneof":
		return fmt.Errorf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value())
	default:
		return fmt.Errorf("%s fails %s=%s, got %v", fe.Field(), fe.Tag(), fe.Param(), fe.Value())
	}
}
