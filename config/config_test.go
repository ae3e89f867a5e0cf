package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	hv := cfg.HydroVigil
	if hv.Server.ListenAddr != ":8080" || hv.Simulation.EscalateAfter != 2*time.Second || hv.Simulation.ContainAfter != 3600*time.Millisecond {
		t.Fatalf("unexpected defaults: %+v", hv)
	}
	if hv.Prediction.BaseURL != "http://127.0.0.1:8000" || !*hv.Server.WebSocket {
		t.Fatalf("unexpected defaults: %+v", hv.Prediction)
	}
}

func TestLoadConfigOverridesAndDefaults(t *testing.T) {
	path := writeConfig(t, `
hydrovigil:
  server:
    listen_addr: "127.0.0.1:9090"
    websocket: false
  simulation:
    escalate_after: 500ms
    seed: 7
  export:
    enabled: true
    mode: redis
    redis:
      key_prefix: soc
  logging:
    level: debug
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	hv := cfg.HydroVigil
	if hv.Server.ListenAddr != "127.0.0.1:9090" || *hv.Server.WebSocket {
		t.Fatalf("server overrides not applied: %+v", hv.Server)
	}
	if hv.Simulation.EscalateAfter != 500*time.Millisecond || hv.Simulation.ContainAfter != 3600*time.Millisecond || hv.Simulation.Seed != 7 {
		t.Fatalf("simulation not merged: %+v", hv.Simulation)
	}
	if hv.Export.Redis.KeyPrefix != "soc" || hv.Export.BatchSize != 100 {
		t.Fatalf("export not merged: %+v", hv.Export)
	}
	if !hv.Logging.Enabled || hv.Logging.Level != "debug" {
		t.Fatalf("logging defaults lost: %+v", hv.Logging)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if _, err := LoadConfig(writeConfig(t, "hydrovigil: [")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	env := map[string]string{
		EnvMLAPIURL:   "http://ml.internal:8000",
		EnvRedisAddr:  "redis.internal:6379",
		EnvListenAddr: "  ",
	}
	ApplyEnv(cfg, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	hv := cfg.HydroVigil
	if hv.Prediction.BaseURL != "http://ml.internal:8000" {
		t.Fatalf("ml url not applied: %s", hv.Prediction.BaseURL)
	}
	if hv.Control.Redis.Addr != "redis.internal:6379" || hv.Export.Redis.Addr != "redis.internal:6379" {
		t.Fatalf("redis addr not applied")
	}
	if hv.Server.ListenAddr != ":8080" {
		t.Fatalf("blank override should be ignored, got %q", hv.Server.ListenAddr)
	}
}

func TestValidateReportsFieldNames(t *testing.T) {
	cfg := Default()
	cfg.HydroVigil.Logging.Level = "verbose"
	cfg.HydroVigil.Metrics.Path = "metrics"
	cfg.HydroVigil.Export.Enabled = true
	cfg.HydroVigil.Export.Mode = "kafka"
	cfg.HydroVigil.Prediction.Enabled = true
	cfg.HydroVigil.Prediction.BaseURL = "not a url"

	err := Validate(cfg)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"logging.level", "metrics.path", "export.mode", "prediction.base_url"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestValidateModeRequirements(t *testing.T) {
	cfg := Default()
	cfg.HydroVigil.Export.Enabled = true
	cfg.HydroVigil.Export.Mode = "http"
	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "export.http.url") {
		t.Fatalf("expected http url requirement, got %v", err)
	}
	cfg.HydroVigil.Export.HTTP.URL = "http://collector:9000/events"
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDisabledSectionsAreNotValidated(t *testing.T) {
	cfg := Default()
	cfg.HydroVigil.Control.Redis.Key = ""
	cfg.HydroVigil.Export.Mode = "kafka"
	if err := Validate(cfg); err != nil {
		t.Fatalf("disabled sections should be ignored: %v", err)
	}
}
