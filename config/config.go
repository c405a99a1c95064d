// Package config provides configuration management for Wirebus.
package config

import (
	"fmt"
	"time"
)

// Config is the global configuration for Wirebus.
type Config struct {
	// App is the application configuration.
	App AppConfig `mapstructure:"app" validate:"required"`

	// Log is the logging configuration.
	Log LogConfig `mapstructure:"log" validate:"required"`

	// Server is the diagnostics HTTP server configuration.
	Server ServerConfig `mapstructure:"server"`

	// Metrics is the observability configuration.
	Metrics MetricsConfig `mapstructure:"metrics"`

	// Tracing is the distributed tracing configuration.
	Tracing TracingConfig `mapstructure:"tracing"`

	// Bus is the signal bus configuration.
	Bus BusConfig `mapstructure:"bus"`

	// Demo configures the bundled demo pipelines.
	Demo DemoConfig `mapstructure:"demo"`
}

// AppConfig holds application metadata and settings.
type AppConfig struct {
	// Name is the application name.
	Name string `mapstructure:"name" validate:"required"`

	// Version is the application version.
	Version string `mapstructure:"version"`

	// Environment is the runtime environment (development, staging, production).
	Environment string `mapstructure:"environment" validate:"oneof=development staging production"`

	// Debug enables debug mode with verbose logging.
	Debug bool `mapstructure:"debug"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`

	// Format is the log output format (json or text).
	Format string `mapstructure:"format" validate:"oneof=json text"`

	// Output is the log destination: stdout, stderr, or a file path.
	Output string `mapstructure:"output"`
}

// ServerConfig holds the diagnostics HTTP server configuration.
type ServerConfig struct {
	// Enabled enables the diagnostics API.
	Enabled bool `mapstructure:"enabled"`

	// Host is the bind address.
	Host string `mapstructure:"host"`

	// Port is the diagnostics API port.
	Port int `mapstructure:"port" validate:"min=1,max=65535"`

	// HTTP is the HTTP server configuration.
	HTTP HTTPConfig `mapstructure:"http"`

	// Events is the websocket event-tap configuration.
	Events EventsConfig `mapstructure:"events"`
}

// HTTPConfig holds HTTP server timeouts.
type HTTPConfig struct {
	// ReadTimeout is the maximum duration for reading a request.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// IdleTimeout is the maximum keep-alive idle time.
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
}

// EventsConfig holds websocket event-tap settings.
type EventsConfig struct {
	// Enabled enables the /ws/events endpoint.
	Enabled bool `mapstructure:"enabled"`

	// Buffer is the per-subscriber channel buffer.
	Buffer int `mapstructure:"buffer" validate:"min=0"`

	// RatePerSec caps broadcast throughput; excess events are dropped.
	RatePerSec float64 `mapstructure:"rate_per_sec" validate:"min=0"`

	// Burst is the rate limiter burst size.
	Burst int `mapstructure:"burst" validate:"min=0"`

	// MaxConnections limits concurrent websocket clients.
	MaxConnections int `mapstructure:"max_connections" validate:"min=0"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	// Enabled enables metrics collection and the /metrics server.
	Enabled bool `mapstructure:"enabled"`

	// Port is the metrics server port.
	Port int `mapstructure:"port" validate:"min=1,max=65535"`

	// Path is the exposition path.
	Path string `mapstructure:"path"`
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	// Enabled enables span export.
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the exporter kind; only "otlp" is supported.
	Exporter string `mapstructure:"exporter"`

	// Endpoint is the OTLP gRPC collector endpoint (host:port).
	Endpoint string `mapstructure:"endpoint"`

	// Timeout is the export timeout.
	Timeout time.Duration `mapstructure:"timeout"`

	// SampleRatio is the trace sampling ratio in [0,1].
	SampleRatio float64 `mapstructure:"sample_ratio" validate:"min=0,max=1"`

	// Headers are extra headers sent to the collector.
	Headers map[string]string `mapstructure:"headers"`
}

// BusConfig holds signal bus settings.
type BusConfig struct {
	// TraceEmits wraps every emit in an OpenTelemetry span.
	TraceEmits bool `mapstructure:"trace_emits"`
}

// DemoConfig parameterizes the bundled demo pipelines.
type DemoConfig struct {
	// Order configures the order-processing demo.
	Order OrderDemoConfig `mapstructure:"order"`

	// Pipeline configures the sequential pipeline demo.
	Pipeline PipelineDemoConfig `mapstructure:"pipeline"`

	// Aggregate configures the parallel aggregation demo.
	Aggregate AggregateDemoConfig `mapstructure:"aggregate"`
}

// OrderDemoConfig configures the order-processing demo.
type OrderDemoConfig struct {
	// Orders is the number of orders to place.
	Orders int `mapstructure:"orders" validate:"min=1"`
}

// PipelineDemoConfig configures the sequential pipeline demo.
type PipelineDemoConfig struct {
	// Stages is the number of chained stages.
	Stages int `mapstructure:"stages" validate:"min=1"`
}

// AggregateDemoConfig configures the parallel aggregation demo.
type AggregateDemoConfig struct {
	// Producers is the number of parallel emitters to aggregate.
	Producers int `mapstructure:"producers" validate:"min=1"`

	// Workers is the worker pool size running the emitters.
	Workers int `mapstructure:"workers" validate:"min=1"`

	// Timeout bounds the wait for all producers to finish.
	Timeout time.Duration `mapstructure:"timeout"`
}

// String returns a short human-readable summary of the configuration.
func (c *Config) String() string {
	return fmt.Sprintf("app=%s env=%s log=%s/%s server=%v:%d metrics=%v tracing=%v",
		c.App.Name, c.App.Environment,
		c.Log.Level, c.Log.Format,
		c.Server.Enabled, c.Server.Port,
		c.Metrics.Enabled, c.Tracing.Enabled,
	)
}
