package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return DefaultConfig()
}

func TestValidate_DefaultsAreValid(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Errorf("expected default config to validate, got: %v", err)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.ListenAddress = ""
	cfg.Layouts.Dir = ""
	cfg.History.Backend = "cassandra"
	cfg.Telemetry.Logging.Level = "loud"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}

	verr, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(verr.Errors) != 4 {
		t.Errorf("expected 4 field errors, got %d: %v", len(verr.Errors), verr.Errors)
	}
}

func TestValidate_FieldErrorPaths(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{
			name:   "missing listen address",
			mutate: func(c *Config) { c.Server.ListenAddress = "" },
			field:  "server.listen_address",
		},
		{
			name:   "negative request timeout",
			mutate: func(c *Config) { c.Server.RequestTimeout = -1 },
			field:  "server.request_timeout",
		},
		{
			name:   "missing layout dir",
			mutate: func(c *Config) { c.Layouts.Dir = "" },
			field:  "layouts.dir",
		},
		{
			name:   "invalid entries base url",
			mutate: func(c *Config) { c.Entries.BaseURL = "not a url" },
			field:  "entries.base_url",
		},
		{
			name:   "bad retention schedule",
			mutate: func(c *Config) { c.History.Retention.Schedule = "every day at 3" },
			field:  "history.retention.schedule",
		},
		{
			name:   "default limit above max",
			mutate: func(c *Config) { c.History.Query.DefaultLimit = 5000 },
			field:  "history.query.default_limit",
		},
		{
			name:   "bad sweep schedule",
			mutate: func(c *Config) { c.Revalidation.SweepSchedule = "often" },
			field:  "revalidation.sweep_schedule",
		},
		{
			name:   "metrics path without slash",
			mutate: func(c *Config) { c.Telemetry.Metrics.Path = "metrics" },
			field:  "telemetry.metrics.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("expected error mentioning %q, got: %v", tt.field, err)
			}
		})
	}
}

func TestValidate_DisabledHistorySkipsBackendChecks(t *testing.T) {
	cfg := validConfig()
	cfg.History.Enabled = false
	cfg.History.Backend = "cassandra"

	if err := Validate(cfg); err != nil {
		t.Errorf("expected disabled history to skip backend checks, got: %v", err)
	}
}

func TestValidate_ValidCronSchedules(t *testing.T) {
	cfg := validConfig()
	cfg.History.Retention.Schedule = "*/5 * * * *"
	cfg.Revalidation.SweepSchedule = "0 */2 * * *"

	if err := Validate(cfg); err != nil {
		t.Errorf("expected cron schedules to validate, got: %v", err)
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	first := *cfg
	ApplyDefaults(cfg)

	if cfg.Server.ListenAddress != first.Server.ListenAddress {
		t.Error("expected second ApplyDefaults to be a no-op")
	}
	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("expected default listen address, got %q", cfg.Server.ListenAddress)
	}
	if cfg.History.SQLite.Path != DefaultHistorySQLitePath {
		t.Errorf("expected default sqlite path, got %q", cfg.History.SQLite.Path)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.ListenAddress = "10.0.0.1:80"
	cfg.Telemetry.Logging.Level = "warn"
	ApplyDefaults(cfg)

	if cfg.Server.ListenAddress != "10.0.0.1:80" {
		t.Errorf("expected explicit listen address to survive, got %q", cfg.Server.ListenAddress)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("expected explicit level to survive, got %q", cfg.Telemetry.Logging.Level)
	}
}
