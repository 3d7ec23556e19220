// Copyright 2025 The DialAddr Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the process configuration once at startup.
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvAPIKey is the environment variable holding the Google Maps API key.
const EnvAPIKey = "GOOGLE_MAPS_API_KEY"

// ErrMissingAPIKey is returned when no credential could be found.
var ErrMissingAPIKey = errors.New(EnvAPIKey + " environment variable is required")

// Config is immutable once returned by Load.
type Config struct {
	APIKey         string        `mapstructure:"api_key" validate:"required"`
	Timeout        time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxAttempts    int           `mapstructure:"max_attempts" validate:"min=1,max=10"`
	MaxSuggestions int           `mapstructure:"max_suggestions" validate:"min=1,max=20"`
	H3Resolution   int           `mapstructure:"h3_resolution" validate:"min=-1,max=15,ne=0"`
	Region         string        `mapstructure:"region" validate:"omitempty,len=2,alpha"`
	Language       string        `mapstructure:"language" validate:"omitempty,bcp47_language_tag"`
	Listen         string        `mapstructure:"listen" validate:"required,hostname_port"`
	DbPath         string        `mapstructure:"db_path" validate:"required"`
	Journal        bool          `mapstructure:"journal"`
	LogLevel       string        `mapstructure:"log_level" validate:"oneof=trace debug info warn error"`
	UseADC         bool          `mapstructure:"adc"`
	ADCProject     string        `mapstructure:"adc_project"`
	ADCKeyName     string        `mapstructure:"adc_key_name"`
	TraceHTTP      bool          `mapstructure:"trace_http"`
	TraceHTTPBody  bool          `mapstructure:"trace_http_body"`
}

// Defaults applied before reading the environment and flags.
var Defaults = map[string]any{
	"timeout":         10 * time.Second,
	"max_attempts":    3,
	"max_suggestions": 5,
	"h3_resolution":   9,
	"region":          "",
	"language":        "",
	"listen":          "localhost:8080",
	"db_path":         "db",
	"journal":         false,
	"log_level":       "info",
	"adc":             false,
	"adc_project":     "",
	"adc_key_name":    "DialAddr Geocoding Key",
	"trace_http":      false,
	"trace_http_body": false,
}

// New returns a viper instance with defaults and environment bindings.
// Every key maps to DIALADDR_<KEY>; the API key also reads GOOGLE_MAPS_API_KEY.
func New() *viper.Viper {
	v := viper.New()

	for k, val := range Defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix("DIALADDR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("api_key", EnvAPIKey, "DIALADDR_API_KEY")

	return v
}

// KeyFinder retrieves an API key when none was configured.
type KeyFinder func(ctx context.Context, project, displayName string) (string, error)

// Load builds the Config from v. When the key is missing and ADC lookup is
// enabled, find is used to retrieve it. A missing key is always an error.
func Load(ctx context.Context, v *viper.Viper, find KeyFinder) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.APIKey = strings.TrimSpace(cfg.APIKey)

	if cfg.APIKey == "" && cfg.UseADC && find != nil {
		key, err := find(ctx, cfg.ADCProject, cfg.ADCKeyName)
		if err != nil {
			return nil, errors.Join(ErrMissingAPIKey, fmt.Errorf("retrieving API key via ADC: %w", err))
		}

		cfg.APIKey = key
	}

	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that the configuration fields are present and sane.
func (c *Config) Validate() error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validating config: %w", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s fails %q (got %v)", fe.Field(), fe.Tag(), redact(fe)))
	}

	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func redact(fe validator.FieldError) any {
	if fe.Field() == "APIKey" {
		return "***"
	}

	return fe.Value()
}

type plainConfig Config

// String hides the credential.
func (c Config) String() string {
	c.APIKey = "***"

	return fmt.Sprintf("%+v", plainConfig(c))
}
