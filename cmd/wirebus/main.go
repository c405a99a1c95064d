package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/wirebus/wirebus/config"
	"github.com/wirebus/wirebus/pkg/api"
	"github.com/wirebus/wirebus/pkg/api/events"
	"github.com/wirebus/wirebus/pkg/api/handlers"
	"github.com/wirebus/wirebus/pkg/logger"
	"github.com/wirebus/wirebus/pkg/metrics"
	"github.com/wirebus/wirebus/pkg/services"
	buspkg "github.com/wirebus/wirebus/pkg/signal"
	"github.com/wirebus/wirebus/pkg/telemetry/tracing"
	"github.com/wirebus/wirebus/pkg/version"
)

var (
	configPath  = flag.String("config", "", "Path to configuration file")
	versionFlag = flag.Bool("version", false, "Print version information")
	helpFlag    = flag.Bool("help", false, "Print help information")
	demosFlag   = flag.String("demos", "order,pipeline,aggregate", "Comma-separated demos to run (order, pipeline, aggregate); empty skips demos")

	// CLI overrides
	appName    = flag.String("app-name", "", "Override app name")
	serverPort = flag.Int("port", 0, "Override server port")
	logLevel   = flag.String("log-level", "", "Override log level")
	debugMode  = flag.Bool("debug", false, "Enable debug mode")
)

func main() {
	flag.Parse()

	if *helpFlag {
		printHelp()
		os.Exit(0)
	}
	if *versionFlag {
		printVersion()
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath, buildOverrides())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration:\n%s\n", err)
		os.Exit(1)
	}

	logCfg := &logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	if cfg.App.Debug || *debugMode {
		logCfg.Level = logger.DebugLevel
	}
	log := logger.New(logCfg)
	logger.SetGlobal(log)

	log.Info("Starting wirebus",
		"version", version.Version,
		"buildTime", version.BuildTime,
		"gitCommit", version.GitCommit,
		"app", cfg.App.Name,
		"environment", cfg.App.Environment,
	)
	log.Debug("Configuration loaded", "config", cfg.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Tracing is process-wide; a disabled config installs a noop provider.
	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, cfg.App.Name, version.Version)
	if err != nil {
		log.Error("Failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	metricsManager := metrics.NewManager(metrics.Config{
		Enabled:             cfg.Metrics.Enabled,
		Port:                cfg.Metrics.Port,
		Path:                cfg.Metrics.Path,
		EmitDurationBuckets: metrics.DefaultConfig().EmitDurationBuckets,
		HTTPDurationBuckets: metrics.DefaultConfig().HTTPDurationBuckets,
	})
	buspkg.SetMetricsRecorder(metricsManager)

	if metricsManager.Enabled() {
		go func() {
			log.Info("Starting metrics server", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
			if err := metricsManager.StartServer(ctx, cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
				log.Error("Metrics server error", "error", err)
			}
		}()
	}

	// The broadcaster taps bus lifecycle events for websocket subscribers.
	var broadcaster *events.Broadcaster
	if cfg.Server.Enabled && cfg.Server.Events.Enabled {
		broadcaster = events.NewBroadcaster(events.Config{
			RatePerSec: cfg.Server.Events.RatePerSec,
			Burst:      cfg.Server.Events.Burst,
		})
		defer broadcaster.Close()
	}

	busOpts := []buspkg.Option{buspkg.WithLogger(log)}
	if cfg.Bus.TraceEmits {
		busOpts = append(busOpts, buspkg.WithTracer(otel.Tracer("wirebus.bus")))
	}
	if broadcaster != nil {
		busOpts = append(busOpts, buspkg.WithObserver(broadcaster))
	}
	bus := buspkg.New(busOpts...)

	var httpServer *api.HTTPServer
	var wsHandler *handlers.WebSocketHandler
	serverErrChan := make(chan error, 1)
	if cfg.Server.Enabled {
		if broadcaster != nil {
			wsHandler = handlers.NewWebSocketHandler(log, broadcaster, handlers.WebSocketConfig{
				MaxConnections: cfg.Server.Events.MaxConnections,
				EventBuffer:    cfg.Server.Events.Buffer,
			})
		}

		apiHandlers := &api.Handlers{
			Signals:   handlers.NewSignalsHandler(bus),
			Health:    handlers.NewHealthHandler(bus, version.Version),
			WebSocket: wsHandler,
		}
		if metricsManager.Enabled() {
			apiHandlers.Metrics = metricsManager
		}

		httpServer = api.NewHTTPServer(cfg, log, apiHandlers)
		go func() {
			if err := httpServer.Start(); err != nil {
				serverErrChan <- err
			}
		}()
	}

	watcher := startConfigWatcher(ctx, cfg, log)

	if err := runDemos(ctx, cfg, bus, log); err != nil {
		log.Error("Demo run failed", "error", err)
	}

	stats := bus.Stats()
	log.Info("wirebus is running",
		"emitters", stats.Emitters,
		"signals", stats.Signals,
		"bindings", stats.Bindings,
		"http_enabled", cfg.Server.Enabled,
		"http_port", cfg.Server.Port,
		"metrics_port", cfg.Metrics.Port,
	)
	log.Info("Press Ctrl+C to stop")

	select {
	case sig := <-sigChan:
		log.Info("Received shutdown signal", "signal", sig)
	case err := <-serverErrChan:
		log.Error("HTTP server error", "error", err)
	case <-ctx.Done():
		log.Info("Context cancelled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			log.Error("Error stopping config watcher", "error", err)
		}
	}
	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down HTTP server", "error", err)
		}
	}
	if wsHandler != nil {
		wsHandler.Close()
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("Error shutting down tracing", "error", err)
	}

	log.Info("wirebus stopped gracefully")
}

// startConfigWatcher hot-reloads log settings when the config file changes.
// Returns nil when no config file is in play.
func startConfigWatcher(ctx context.Context, cfg *config.Config, log logger.Logger) *config.Watcher {
	if *configPath == "" {
		return nil
	}

	watcher, err := config.NewWatcher(*configPath, config.NewLoader())
	if err != nil {
		log.Warn("Config watcher unavailable", "error", err, "path", *configPath)
		return nil
	}

	current := config.ExtractHotReloadable(cfg)
	watcher.OnChange(func(next *config.Config) {
		updated := config.ExtractHotReloadable(next)
		if !current.Changed(updated) {
			return
		}
		log.Info("Applying hot-reloaded log settings",
			"level", updated.LogLevel,
			"format", updated.LogFormat,
		)
		log.SetLevel(logger.ParseLevel(updated.LogLevel))
		current = updated
	})

	go func() {
		if err := watcher.Watch(ctx); err != nil {
			log.Warn("Config watcher stopped", "error", err)
		}
	}()
	return watcher
}

func runDemos(ctx context.Context, cfg *config.Config, bus *buspkg.Bus, log logger.Logger) error {
	for _, name := range strings.Split(*demosFlag, ",") {
		switch strings.TrimSpace(name) {
		case "":
			continue
		case "order":
			demo, err := services.NewOrderDemo(bus, log)
			if err != nil {
				return fmt.Errorf("order demo setup: %w", err)
			}
			if err := demo.Run(ctx, cfg.Demo.Order.Orders); err != nil {
				log.Warn("Order demo finished with slot failures", "error", err)
			}
		case "pipeline":
			demo, err := services.NewPipelineDemo(bus, log, cfg.Demo.Pipeline.Stages)
			if err != nil {
				return fmt.Errorf("pipeline demo setup: %w", err)
			}
			result, err := demo.Run(ctx, 1)
			if err != nil {
				return fmt.Errorf("pipeline demo: %w", err)
			}
			log.Info("Pipeline demo finished", "stages", demo.Stages(), "result", result)
		case "aggregate":
			demo, err := services.NewAggregateDemo(bus, log,
				cfg.Demo.Aggregate.Producers,
				cfg.Demo.Aggregate.Workers,
				cfg.Demo.Aggregate.Timeout,
			)
			if err != nil {
				return fmt.Errorf("aggregate demo setup: %w", err)
			}
			results, err := demo.Run(ctx)
			if err != nil {
				return fmt.Errorf("aggregate demo: %w", err)
			}
			log.Info("Aggregate demo finished", "results", len(results))
		default:
			return fmt.Errorf("unknown demo %q", name)
		}
	}
	return nil
}

func buildOverrides() map[string]interface{} {
	overrides := make(map[string]interface{})

	if *appName != "" {
		overrides["app.name"] = *appName
	}
	if *serverPort != 0 {
		overrides["server.port"] = *serverPort
	}
	if *logLevel != "" {
		overrides["log.level"] = *logLevel
	}
	if *debugMode {
		overrides["app.debug"] = true
	}

	return overrides
}

func printVersion() {
	fmt.Printf("wirebus - Signal Dispatch Service\n")
	fmt.Printf("Version:    %s\n", version.Version)
	fmt.Printf("Build Time: %s\n", version.BuildTime)
	fmt.Printf("Git Commit: %s\n", version.GitCommit)
	fmt.Printf("Go Version: %s\n", version.GoVersion)
}

func printHelp() {
	fmt.Printf("wirebus - In-process signal dispatch with a diagnostics API\n\n")
	fmt.Printf("Usage: wirebus [options]\n\n")
	fmt.Printf("Options:\n")
	flag.PrintDefaults()
	fmt.Printf("\nExamples:\n")
	fmt.Printf("  wirebus                                    # Run with default config\n")
	fmt.Printf("  wirebus -config config.yaml                # Use specific config file\n")
	fmt.Printf("  wirebus -port 9090 -log-level debug        # Override specific options\n")
	fmt.Printf("  wirebus -demos order                       # Run only the order demo\n")
	fmt.Printf("  wirebus -version                           # Print version info\n")
}
