package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.App.Name != "wirebus" {
		t.Errorf("expected app name 'wirebus', got %s", cfg.App.Name)
	}
	if cfg.App.Environment != "development" {
		t.Errorf("expected environment 'development', got %s", cfg.App.Environment)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected server port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.HTTP.ReadTimeout != 30*time.Second {
		t.Errorf("expected read timeout 30s, got %v", cfg.Server.HTTP.ReadTimeout)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("expected log format 'json', got %s", cfg.Log.Format)
	}

	if cfg.Metrics.Port != 9091 {
		t.Errorf("expected metrics port 9091, got %d", cfg.Metrics.Port)
	}
	if cfg.Tracing.Enabled {
		t.Error("expected tracing.enabled to be false")
	}

	if cfg.Demo.Aggregate.Producers != 3 {
		t.Errorf("expected demo.aggregate.producers 3, got %d", cfg.Demo.Aggregate.Producers)
	}
}

func TestValidateWithDetails(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid defaults",
			mutate:  func(cfg *Config) {},
			wantErr: false,
		},
		{
			name:    "missing app name",
			mutate:  func(cfg *Config) { cfg.App.Name = "" },
			wantErr: true,
		},
		{
			name:    "invalid environment",
			mutate:  func(cfg *Config) { cfg.App.Environment = "invalid" },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(cfg *Config) { cfg.Log.Level = "trace" },
			wantErr: true,
		},
		{
			name:    "invalid server port",
			mutate:  func(cfg *Config) { cfg.Server.Port = 99999 },
			wantErr: true,
		},
		{
			name:    "invalid sample ratio",
			mutate:  func(cfg *Config) { cfg.Tracing.SampleRatio = 1.5 },
			wantErr: true,
		},
		{
			name:    "zero demo orders",
			mutate:  func(cfg *Config) { cfg.Demo.Order.Orders = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := ValidateWithDetails(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateWithDetails() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "server.port", Message: "must be at most 65535", Value: 99999},
		{Field: "log.level", Message: "must be one of [debug info warn error]", Value: "trace"},
	}

	errMsg := errs.Error()
	if errMsg == "" {
		t.Error("expected error message")
	}
	if errMsg == "no validation errors" {
		t.Error("expected error details")
	}
}

func TestValidateWithDetails_ReturnsDetails(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Port = 0
	cfg.Log.Level = "trace"

	err := ValidateWithDetails(cfg)
	if err == nil {
		t.Fatal("expected validation error details")
	}

	details, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(details) < 2 {
		t.Fatalf("expected at least 2 validation errors, got %d", len(details))
	}
}

func TestConfig_String(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.String() == "" {
		t.Error("expected non-empty string representation")
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.App.Name != "wirebus" {
		t.Errorf("expected 'wirebus', got '%s'", cfg.App.Name)
	}
	if cfg.Server.HTTP.IdleTimeout != 120*time.Second {
		t.Errorf("expected idle timeout 120s, got %v", cfg.Server.HTTP.IdleTimeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load("", map[string]interface{}{
		"log.level":   "debug",
		"server.port": 9999,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected 'debug', got '%s'", cfg.Log.Level)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("expected 9999, got %d", cfg.Server.Port)
	}
	// Untouched sections keep their defaults.
	if cfg.App.Name != "wirebus" {
		t.Errorf("expected 'wirebus', got '%s'", cfg.App.Name)
	}
}

func TestLoader_LoadYAMLFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
app:
  name: yaml-test
  environment: production
server:
  port: 9999
log:
  level: debug
  format: text
bus:
  trace_emits: true
demo:
  aggregate:
    producers: 5
    workers: 4
    timeout: 10s
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := NewLoader().Load(configPath, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.App.Name != "yaml-test" {
		t.Errorf("expected 'yaml-test', got '%s'", cfg.App.Name)
	}
	if cfg.App.Environment != "production" {
		t.Errorf("expected 'production', got '%s'", cfg.App.Environment)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("expected 9999, got %d", cfg.Server.Port)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("expected 'text', got '%s'", cfg.Log.Format)
	}
	if !cfg.Bus.TraceEmits {
		t.Error("expected bus.trace_emits to be true")
	}
	if cfg.Demo.Aggregate.Producers != 5 {
		t.Errorf("expected 5 producers, got %d", cfg.Demo.Aggregate.Producers)
	}
	if cfg.Demo.Aggregate.Timeout != 10*time.Second {
		t.Errorf("expected 10s timeout, got %v", cfg.Demo.Aggregate.Timeout)
	}
	// Sections absent from the file keep their defaults.
	if cfg.Metrics.Port != 9091 {
		t.Errorf("expected default metrics port 9091, got %d", cfg.Metrics.Port)
	}
	if cfg.Demo.Order.Orders != 3 {
		t.Errorf("expected default demo.order.orders 3, got %d", cfg.Demo.Order.Orders)
	}
}

func TestLoader_LoadJSONFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	jsonContent := `{
		"app": {
			"name": "json-test",
			"environment": "staging"
		},
		"server": {
			"port": 8888
		},
		"log": {
			"level": "warn",
			"format": "json"
		}
	}`
	if err := os.WriteFile(configPath, []byte(jsonContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := NewLoader().Load(configPath, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.App.Name != "json-test" {
		t.Errorf("expected 'json-test', got '%s'", cfg.App.Name)
	}
	if cfg.Server.Port != 8888 {
		t.Errorf("expected 8888, got %d", cfg.Server.Port)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected 'warn', got '%s'", cfg.Log.Level)
	}
}

func TestLoader_LoadInvalidFile(t *testing.T) {
	_, err := NewLoader().Load("/nonexistent/config.yaml", nil)
	if err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestLoader_LoadUnsupportedFormat(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	if err := os.WriteFile(configPath, []byte("app = 'test'"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	_, err := NewLoader().Load(configPath, nil)
	if err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestLoader_EnvVars(t *testing.T) {
	t.Setenv("WIREBUS_APP__NAME", "env-test")
	t.Setenv("WIREBUS_SERVER__PORT", "7777")
	t.Setenv("WIREBUS_LOG__LEVEL", "error")

	cfg, err := NewLoader().Load("", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.App.Name != "env-test" {
		t.Errorf("expected 'env-test', got '%s'", cfg.App.Name)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("expected 7777, got %d", cfg.Server.Port)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("expected 'error', got '%s'", cfg.Log.Level)
	}
}

func TestLoader_EnvVarWithUnderscoreKey(t *testing.T) {
	t.Setenv("WIREBUS_BUS__TRACE_EMITS", "true")

	cfg, err := NewLoader().Load("", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Bus.TraceEmits {
		t.Error("expected bus.trace_emits to be true")
	}
}

func TestLoader_GetSet(t *testing.T) {
	loader := NewLoader()
	if _, err := loader.Load("", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if loader.Get("app.name") == nil {
		t.Error("expected non-nil value for app.name")
	}

	if err := loader.Set("app.name", "custom-app"); err != nil {
		t.Errorf("unexpected error setting value: %v", err)
	}
	if loader.Get("app.name") != "custom-app" {
		t.Errorf("expected 'custom-app', got '%v'", loader.Get("app.name"))
	}
}
