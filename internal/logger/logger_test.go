package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, Warn)
	defer SetOutput(os.Stdout, Info)

	Infof("hidden %d", 1)
	Warnf("shown %d", 2)
	For("engine").Errorf("phase %s", "phase2")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line leaked at warn level: %q", out)
	}
	if !strings.Contains(out, "[WARN] shown 2") {
		t.Fatalf("missing warn line: %q", out)
	}
	if !strings.Contains(out, "[ERROR] [engine] phase phase2") {
		t.Fatalf("missing component line: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"debug": Debug, "INFO": Info, "warning": Warn, "error": Error, "": Info, "bogus": Info}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestInitWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "hydrovigil.log")
	if err := Init(Options{Enabled: true, Level: "debug", File: path}); err != nil {
		t.Fatalf("init: %v", err)
	}
	Debugf("to file")
	if err := Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	SetOutput(os.Stdout, Info)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "[DEBUG] to file") {
		t.Fatalf("unexpected log file content: %q", data)
	}
}

func TestDisabledLoggerDropsEverything(t *testing.T) {
	if err := Init(Options{Enabled: false}); err != nil {
		t.Fatalf("init: %v", err)
	}
	Errorf("nobody hears this")
	SetOutput(os.Stdout, Info)
}
