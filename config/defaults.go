package config

import "time"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "wirebus",
			Version:     "dev",
			Environment: "development",
			Debug:       false,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Server: ServerConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    8080,
			HTTP: HTTPConfig{
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 30 * time.Second,
				IdleTimeout:  120 * time.Second,
			},
			Events: EventsConfig{
				Enabled:        true,
				Buffer:         64,
				RatePerSec:     200,
				Burst:          50,
				MaxConnections: 100,
			},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9091,
			Path:    "/metrics",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			Exporter:    "otlp",
			Endpoint:    "localhost:4317",
			Timeout:     10 * time.Second,
			SampleRatio: 1.0,
		},
		Bus: BusConfig{
			TraceEmits: false,
		},
		Demo: DemoConfig{
			Order: OrderDemoConfig{
				Orders: 3,
			},
			Pipeline: PipelineDemoConfig{
				Stages: 4,
			},
			Aggregate: AggregateDemoConfig{
				Producers: 3,
				Workers:   2,
				Timeout:   5 * time.Second,
			},
		},
	}
}
