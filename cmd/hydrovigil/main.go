package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"hydrovigil/config"
	"hydrovigil/internal/api"
	"hydrovigil/internal/control"
	"hydrovigil/internal/engine"
	inputredis "hydrovigil/internal/input/redis"
	"hydrovigil/internal/logger"
	"hydrovigil/internal/metrics"
	"hydrovigil/internal/output/eventclickhouse"
	"hydrovigil/internal/output/eventhttp"
	"hydrovigil/internal/output/eventjson"
	"hydrovigil/internal/output/eventredis"
	"hydrovigil/internal/pipeline"
	"hydrovigil/internal/prediction"
	"hydrovigil/internal/websocket"
)

const defaultConfigName = "hydrovigil.yml"

func findConfigFile(configArg string) string {
	if configArg != "" {
		path := configArg
		if _, err := os.Stat(path); err == nil {
			return path
		}
		log.Printf("Warning: config file not found at %s, trying default locations", path)
	}

	if _, err := os.Stat(defaultConfigName); err == nil {
		return defaultConfigName
	}

	exePath, err := os.Executable()
	if err == nil {
		exeDir := filepath.Dir(exePath)
		path := filepath.Join(exeDir, defaultConfigName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadConfig reads the config file if one is found and falls back to defaults.
func loadConfig(configArg string) (*config.Config, string) {
	configPath := findConfigFile(configArg)

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	} else {
		log.Printf("Warning: no config file found, using defaults")
	}
	config.ApplyEnv(cfg, nil)
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	return cfg, configPath
}

func initLogger(cfg config.LoggingConfig) {
	if err := logger.Init(logger.Options{
		Enabled: cfg.Enabled,
		Level:   cfg.Level,
		File:    cfg.File,
		Console: cfg.Console,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
}

func newExportWriter(cfg config.ExportConfig) (pipeline.EventWriter, error) {
	switch cfg.Mode {
	case "file":
		w, err := eventjson.NewWriter(cfg.File.Path)
		if err != nil {
			return nil, err
		}
		logger.Infof("Export mode: file (%s)", cfg.File.Path)
		return w, nil
	case "http":
		w, err := eventhttp.NewWriter(eventhttp.Config{
			URL:     cfg.HTTP.URL,
			Timeout: cfg.HTTP.Timeout,
			Headers: cfg.HTTP.Headers,
		})
		if err != nil {
			return nil, err
		}
		logger.Infof("Export mode: http (%s)", cfg.HTTP.URL)
		return w, nil
	case "clickhouse":
		w, err := eventclickhouse.NewWriter(eventclickhouse.Config{
			URL:      cfg.ClickHouse.URL,
			Database: cfg.ClickHouse.Database,
			Table:    cfg.ClickHouse.Table,
			Username: cfg.ClickHouse.Username,
			Password: cfg.ClickHouse.Password,
			Timeout:  cfg.ClickHouse.Timeout,
			Headers:  cfg.ClickHouse.Headers,
		})
		if err != nil {
			return nil, err
		}
		logger.Infof("Export mode: clickhouse (%s)", cfg.ClickHouse.URL)
		return w, nil
	case "redis":
		w, err := eventredis.NewWriter(eventredis.Config{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
			MaxLen:    cfg.Redis.MaxLen,
		})
		if err != nil {
			return nil, err
		}
		logger.Infof("Export mode: redis (%s, prefix=%s)", cfg.Redis.Addr, cfg.Redis.KeyPrefix)
		return w, nil
	default:
		return nil, errors.New("unknown export mode: " + cfg.Mode)
	}
}

func engineConfig(cfg config.SimulationConfig) engine.Config {
	return engine.Config{
		TickInterval:  cfg.TickInterval,
		EscalateAfter: cfg.EscalateAfter,
		ContainAfter:  cfg.ContainAfter,
		ToastTTL:      cfg.ToastTTL,
		Seed:          cfg.Seed,
		InitialTarget: cfg.InitialTarget,
	}
}

func runServer(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configFlag := fs.String("config", "", "path to config file")
	fs.Parse(args)

	configArg := *configFlag
	if configArg == "" && fs.NArg() > 0 {
		configArg = fs.Arg(0)
	}

	cfg, configPath := loadConfig(configArg)
	hv := cfg.HydroVigil
	initLogger(hv.Logging)
	defer logger.Close()

	logger.Infof("HydroVigil starting")
	if configPath != "" {
		logger.Infof("Config loaded from: %s", configPath)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := metrics.NewRegistry()
	sinks := []engine.Sink{reg}

	var hub *websocket.Hub
	if *hv.Server.WebSocket {
		hub = websocket.NewHub(reg)
		go hub.Run(ctx)
		sinks = append(sinks, hub)
	}

	var exporter *pipeline.ExportPipeline
	var sensors api.SensorReader
	if hv.Export.Enabled {
		w, err := newExportWriter(hv.Export)
		if err != nil {
			logger.Errorf("Failed to create export writer: %v", err)
			log.Fatalf("Failed to create export writer: %v", err)
		}
		if sr, ok := w.(api.SensorReader); ok {
			sensors = sr
		}
		exporter = pipeline.NewExportPipeline(w, pipeline.Options{
			BufferSize:       hv.Export.BufferSize,
			BatchSize:        hv.Export.BatchSize,
			FlushInterval:    hv.Export.FlushInterval,
			DrainTimeout:     hv.Server.ShutdownTimeout,
			IncludeTelemetry: hv.Export.IncludeTelemetry,
			Observer:         reg,
		})
		exporter.Start(ctx)
		sinks = append(sinks, exporter)
	}

	eng := engine.New(engineConfig(hv.Simulation), nil, sinks...)

	var consumer *inputredis.Consumer
	if hv.Control.Enabled {
		c, err := inputredis.NewConsumer(inputredis.Config{
			Addr:         hv.Control.Redis.Addr,
			Password:     hv.Control.Redis.Password,
			DB:           hv.Control.Redis.DB,
			Key:          hv.Control.Redis.Key,
			BlockTimeout: hv.Control.Redis.BlockTimeout,
		})
		if err != nil {
			logger.Errorf("Failed to create Redis consumer: %v", err)
			log.Fatalf("Failed to create Redis consumer: %v", err)
		}
		consumer = c
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		err = consumer.Ping(pingCtx)
		pingCancel()
		if err != nil {
			logger.Errorf("Redis control list unreachable: %v", err)
			log.Fatalf("Redis control list unreachable: %v", err)
		}
		loop := control.NewLoop(consumer, eng, reg)
		go func() {
			if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorf("Command loop error: %v", err)
			}
		}()
		logger.Infof("Remote commands: redis list %s at %s", consumer.Key(), hv.Control.Redis.Addr)
	}

	opts := api.Options{Hub: hub, Recorder: reg, Sensors: sensors, PredictTimeout: hv.Prediction.Timeout}
	if hv.Prediction.Enabled {
		client := prediction.NewClient(prediction.Config{
			BaseURL: hv.Prediction.BaseURL,
			Timeout: hv.Prediction.Timeout,
			Headers: hv.Prediction.Headers,
		})
		opts.Predictor = client
		logger.Infof("Prediction service: %s", client.URL())
	}

	var metricsHandler http.Handler
	if hv.Metrics.Enabled {
		metricsHandler = reg.Handler()
	}
	router := api.NewRouter(api.NewHandler(eng, opts), reg, hv.Metrics.Path, metricsHandler)

	srv := &http.Server{
		Addr:         hv.Server.ListenAddr,
		Handler:      router,
		ReadTimeout:  hv.Server.ReadTimeout,
		WriteTimeout: hv.Server.WriteTimeout,
	}

	eng.Start()

	go func() {
		logger.Infof("HTTP server listening on %s", hv.Server.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("HTTP server error: %v", err)
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Infof("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), hv.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP shutdown error: %v", err)
	}

	eng.Close()
	cancel()

	if exporter != nil {
		if err := exporter.Close(); err != nil {
			logger.Errorf("Error closing export pipeline: %v", err)
		}
		if n := exporter.Dropped(); n > 0 {
			logger.Warnf("Export buffer overflowed: %d events dropped", n)
		}
	}
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Errorf("Error closing Redis consumer: %v", err)
		}
	}

	logger.Infof("HydroVigil stopped")
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "serve":
			runServer(os.Args[2:])
			return
		case "simulate":
			os.Exit(runSimulate(os.Args[2:]))
		case "send":
			os.Exit(runSend(os.Args[2:]))
		default:
			// First arg is a config path.
			runServer(os.Args[1:])
			return
		}
	}

	runServer(nil)
}
