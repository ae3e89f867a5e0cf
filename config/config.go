package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"hydrovigil/internal/prediction"
)

// Environment overrides.
const (
	EnvMLAPIURL   = "HYDROVIGIL_ML_API_URL"
	EnvRedisAddr  = "HYDROVIGIL_REDIS_ADDR"
	EnvListenAddr = "HYDROVIGIL_LISTEN_ADDR"
)

// Config is the root configuration.
type Config struct {
	HydroVigil HydroVigilConfig `yaml:"hydrovigil"`
}

// HydroVigilConfig is the project configuration.
type HydroVigilConfig struct {
	Server     ServerConfig     `yaml:"server"`
	Simulation SimulationConfig `yaml:"simulation"`
	Prediction PredictionConfig `yaml:"prediction"`
	Control    ControlConfig    `yaml:"control"`
	Export     ExportConfig     `yaml:"export"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	ListenAddr      string        `yaml:"listen_addr" validate:"required,hostname_port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
	WebSocket       *bool         `yaml:"websocket"`
}

// SimulationConfig controls scenario timing.
type SimulationConfig struct {
	TickInterval  time.Duration `yaml:"tick_interval" validate:"gt=0"`
	EscalateAfter time.Duration `yaml:"escalate_after" validate:"gt=0"`
	ContainAfter  time.Duration `yaml:"contain_after" validate:"gt=0"`
	ToastTTL      time.Duration `yaml:"toast_ttl" validate:"gt=0"`
	Seed          int64         `yaml:"seed"`
	InitialTarget string        `yaml:"initial_target" validate:"required"`
}

// PredictionConfig controls the external scoring service.
type PredictionConfig struct {
	Enabled bool              `yaml:"enabled"`
	BaseURL string            `yaml:"base_url" validate:"omitempty,url"`
	Timeout time.Duration     `yaml:"timeout" validate:"gt=0"`
	Headers map[string]string `yaml:"headers"`
}

// ControlConfig controls remote commands over a Redis list.
type ControlConfig struct {
	Enabled bool        `yaml:"enabled"`
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig controls Redis input.
type RedisConfig struct {
	Addr         string        `yaml:"addr" validate:"required,hostname_port"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db" validate:"gte=0"`
	Key          string        `yaml:"key" validate:"required"`
	BlockTimeout time.Duration `yaml:"block_timeout" validate:"gt=0"`
}

// ExportConfig controls the event export pipeline.
type ExportConfig struct {
	Enabled          bool                   `yaml:"enabled"`
	Mode             string                 `yaml:"mode" validate:"oneof=file http clickhouse redis"`
	IncludeTelemetry bool                   `yaml:"include_telemetry"`
	BufferSize       int                    `yaml:"buffer_size" validate:"gt=0"`
	BatchSize        int                    `yaml:"batch_size" validate:"gt=0"`
	FlushInterval    time.Duration          `yaml:"flush_interval" validate:"gt=0"`
	File             FileOutputConfig       `yaml:"file"`
	HTTP             HTTPOutputConfig       `yaml:"http"`
	ClickHouse       ClickHouseOutputConfig `yaml:"clickhouse"`
	Redis            RedisOutputConfig      `yaml:"redis"`
}

// FileOutputConfig config for local JSON output.
type FileOutputConfig struct {
	Path string `yaml:"path"`
}

// HTTPOutputConfig config for remote output.
type HTTPOutputConfig struct {
	URL     string            `yaml:"url" validate:"omitempty,url"`
	Timeout time.Duration     `yaml:"timeout"`
	Headers map[string]string `yaml:"headers"`
}

// ClickHouseOutputConfig config for ClickHouse HTTP JSONEachRow writes.
type ClickHouseOutputConfig struct {
	URL      string            `yaml:"url" validate:"omitempty,url"`
	Database string            `yaml:"database"`
	Table    string            `yaml:"table"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	Timeout  time.Duration     `yaml:"timeout"`
	Headers  map[string]string `yaml:"headers"`
}

// RedisOutputConfig config for Redis list export.
type RedisOutputConfig struct {
	Addr      string `yaml:"addr" validate:"omitempty,hostname_port"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db" validate:"gte=0"`
	KeyPrefix string `yaml:"key_prefix"`
	MaxLen    int64  `yaml:"max_len" validate:"gte=0"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path" validate:"startswith=/"`
}

// LoggingConfig controls logging output.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level" validate:"oneof=debug info warn warning error"`
	File    string `yaml:"file"`
	Console bool   `yaml:"console"`
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	ApplyDefaults(cfg)
	return cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.HydroVigil.Logging.Enabled = true
	cfg.HydroVigil.Logging.Console = true
	cfg.HydroVigil.Metrics.Enabled = true
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every unset value.
func ApplyDefaults(cfg *Config) {
	hv := &cfg.HydroVigil

	if hv.Server.ListenAddr == "" {
		hv.Server.ListenAddr = ":8080"
	}
	if hv.Server.ReadTimeout == 0 {
		hv.Server.ReadTimeout = 10 * time.Second
	}
	if hv.Server.WriteTimeout == 0 {
		hv.Server.WriteTimeout = 15 * time.Second
	}
	if hv.Server.ShutdownTimeout == 0 {
		hv.Server.ShutdownTimeout = 5 * time.Second
	}
	if hv.Server.WebSocket == nil {
		on := true
		hv.Server.WebSocket = &on
	}

	if hv.Simulation.TickInterval == 0 {
		hv.Simulation.TickInterval = time.Second
	}
	if hv.Simulation.EscalateAfter == 0 {
		hv.Simulation.EscalateAfter = 2 * time.Second
	}
	if hv.Simulation.ContainAfter == 0 {
		hv.Simulation.ContainAfter = 3600 * time.Millisecond
	}
	if hv.Simulation.ToastTTL == 0 {
		hv.Simulation.ToastTTL = 4600 * time.Millisecond
	}
	if hv.Simulation.InitialTarget == "" {
		hv.Simulation.InitialTarget = "P-23"
	}

	if hv.Prediction.BaseURL == "" {
		hv.Prediction.BaseURL = prediction.DefaultBaseURL
	}
	if hv.Prediction.Timeout == 0 {
		hv.Prediction.Timeout = 10 * time.Second
	}

	if hv.Control.Redis.Addr == "" {
		hv.Control.Redis.Addr = "127.0.0.1:6379"
	}
	if hv.Control.Redis.Key == "" {
		hv.Control.Redis.Key = "hydrovigil:commands"
	}
	if hv.Control.Redis.BlockTimeout == 0 {
		hv.Control.Redis.BlockTimeout = 5 * time.Second
	}

	if hv.Export.Mode == "" {
		hv.Export.Mode = "file"
	}
	if hv.Export.BufferSize == 0 {
		hv.Export.BufferSize = 1024
	}
	if hv.Export.BatchSize == 0 {
		hv.Export.BatchSize = 100
	}
	if hv.Export.FlushInterval == 0 {
		hv.Export.FlushInterval = 2 * time.Second
	}
	if hv.Export.File.Path == "" {
		hv.Export.File.Path = "output/events.jsonl"
	}
	if hv.Export.Redis.Addr == "" {
		hv.Export.Redis.Addr = "127.0.0.1:6379"
	}
	if hv.Export.Redis.KeyPrefix == "" {
		hv.Export.Redis.KeyPrefix = "hydrovigil"
	}

	if hv.Metrics.Path == "" {
		hv.Metrics.Path = "/metrics"
	}

	if hv.Logging.Level == "" {
		hv.Logging.Level = "info"
	}
}

// ApplyEnv applies environment overrides using lookup; nil means os.LookupEnv.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	hv := &cfg.HydroVigil
	if v, ok := get(EnvMLAPIURL); ok {
		hv.Prediction.BaseURL = v
	}
	if v, ok := get(EnvRedisAddr); ok {
		hv.Control.Redis.Addr = v
		hv.Export.Redis.Addr = v
	}
	if v, ok := get(EnvListenAddr); ok {
		hv.Server.ListenAddr = v
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks field constraints and the settings each enabled feature needs.
func Validate(cfg *Config) error {
	hv := &cfg.HydroVigil
	var errs []error

	if err := validate.Struct(hv.Server); err != nil {
		errs = append(errs, formatValidationError("server", err))
	}
	if err := validate.Struct(hv.Simulation); err != nil {
		errs = append(errs, formatValidationError("simulation", err))
	}
	if err := validate.Struct(hv.Metrics); err != nil {
		errs = append(errs, formatValidationError("metrics", err))
	}
	if err := validate.Struct(hv.Logging); err != nil {
		errs = append(errs, formatValidationError("logging", err))
	}
	if hv.Prediction.Enabled {
		if err := validate.Struct(hv.Prediction); err != nil {
			errs = append(errs, formatValidationError("prediction", err))
		}
	}
	if hv.Control.Enabled {
		if err := validate.Struct(hv.Control.Redis); err != nil {
			errs = append(errs, formatValidationError("control.redis", err))
		}
	}
	if hv.Export.Enabled {
		if err := validate.Struct(hv.Export); err != nil {
			errs = append(errs, formatValidationError("export", err))
		}
		switch hv.Export.Mode {
		case "file":
			if hv.Export.File.Path == "" {
				errs = append(errs, errors.New("export.file.path: required for file mode"))
			}
		case "http":
			if hv.Export.HTTP.URL == "" {
				errs = append(errs, errors.New("export.http.url: required for http mode"))
			}
		case "clickhouse":
			if hv.Export.ClickHouse.URL == "" {
				errs = append(errs, errors.New("export.clickhouse.url: required for clickhouse mode"))
			}
		}
	}
	return errors.Join(errs...)
}

func formatValidationError(section string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%s: %w", section, err)
	}
	msgs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		msg := fmt.Sprintf("%s.%s: failed %q", section, field, fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("%s.%s: failed %q (%s)", section, field, fe.Tag(), fe.Param())
		}
		msgs = append(msgs, errors.New(msg))
	}
	return errors.Join(msgs...)
}
