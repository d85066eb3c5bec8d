package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devmaster24/shelly-smartplug-exporter/exporter/internal/config"
)

func TestNewLogger_DefaultsToJSON(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, config.Default().Exporter).Error("invalid configuration", "err", "boom")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("bootstrap log line is not JSON: %v\n%s", err, buf.String())
	}
	if rec["msg"] != "invalid configuration" || rec["level"] != "ERROR" {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestNewLogger_Text(t *testing.T) {
	cfg := config.Default().Exporter
	cfg.LogFormat = "text"
	cfg.LogLevel = "warn"

	var buf bytes.Buffer
	log := newLogger(&buf, cfg)
	log.Info("dropped")
	log.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("info record written at warn level: %q", out)
	}
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "msg=kept") {
		t.Errorf("text record: got %q", out)
	}
}

func TestLoadConfig_FlagsOnly(t *testing.T) {
	cfg, err := loadConfig("", []string{"10.0.0.1", "10.0.0.2"}, []string{"10.0.0.2:porch"}, 9100)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Exporter.Port != 9100 {
		t.Errorf("port: got %d, want 9100", cfg.Exporter.Port)
	}
	if len(cfg.Devices) != 2 || cfg.Devices[1].Alias != "porch" {
		t.Errorf("devices: got %+v", cfg.Devices)
	}
}

func TestLoadConfig_FileAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "exporter:\n  port: 9002\ndevices:\n  - address: 10.0.0.1\n    alias: kitchen\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path, []string{"10.0.0.9"}, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Exporter.Port != 9002 {
		t.Errorf("port: got %d, want 9002 from file", cfg.Exporter.Port)
	}
	if len(cfg.Devices) != 2 || cfg.Devices[0].Alias != "kitchen" || cfg.Devices[1].Address != "10.0.0.9" {
		t.Errorf("devices: got %+v", cfg.Devices)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"), nil, nil, 0); err == nil {
		t.Error("missing file: expected error")
	}
	if _, err := loadConfig("", nil, nil, 70000); err == nil {
		t.Error("port out of range: expected error")
	}
}
