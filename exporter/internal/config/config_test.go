package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestLoad_Valid(t *testing.T) {
	yaml := `
exporter:
  port: 9002
  fetch_timeout: 3s
  log_level: debug
  log_format: text
devices:
  - address: 10.0.0.1
    alias: kitchen
  - address: 10.0.0.2
`
	cfg := loadFromString(t, yaml)

	if cfg.Exporter.Port != 9002 {
		t.Errorf("port: got %d", cfg.Exporter.Port)
	}
	if cfg.Exporter.FetchTimeout != 3*time.Second {
		t.Errorf("fetch_timeout: got %v", cfg.Exporter.FetchTimeout)
	}
	if cfg.Exporter.Level() != slog.LevelDebug {
		t.Errorf("level: got %v", cfg.Exporter.Level())
	}
	if len(cfg.Devices) != 2 {
		t.Fatalf("devices: got %d, want 2", len(cfg.Devices))
	}
	if cfg.Devices[0].Alias != "kitchen" {
		t.Errorf("devices[0].alias: got %q", cfg.Devices[0].Alias)
	}
	if cfg.Devices[1].Alias != "" {
		t.Errorf("devices[1].alias: got %q, want empty", cfg.Devices[1].Alias)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := loadFromString(t, "devices: []\n")

	if cfg.Exporter.Port != DefaultPort {
		t.Errorf("default port: got %d, want %d", cfg.Exporter.Port, DefaultPort)
	}
	if cfg.Exporter.FetchTimeout != DefaultFetchTimeout {
		t.Errorf("default fetch_timeout: got %v, want %v", cfg.Exporter.FetchTimeout, DefaultFetchTimeout)
	}
	if cfg.Exporter.Level() != slog.LevelInfo {
		t.Errorf("default level: got %v", cfg.Exporter.Level())
	}
	if cfg.Exporter.LogFormat != "json" {
		t.Errorf("default log_format: got %q", cfg.Exporter.LogFormat)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"port out of range", "exporter:\n  port: 70000\n"},
		{"negative timeout", "exporter:\n  fetch_timeout: -1s\n"},
		{"unknown level", "exporter:\n  log_level: loud\n"},
		{"unknown format", "exporter:\n  log_format: xml\n"},
		{"missing address", "devices:\n  - alias: nowhere\n"},
		{"bad yaml", "exporter: [\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := loadStringErr(t, tc.yaml); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestAddDevices_Mappings(t *testing.T) {
	cfg := Default()
	cfg.AddDevices(
		[]string{"10.0.0.1", "10.0.0.2", "10.0.0.3"},
		[]string{"10.0.0.1~something_invalid", "10.0.0.2:valid"},
	)

	if len(cfg.Devices) != 3 {
		t.Fatalf("devices: got %d, want 3", len(cfg.Devices))
	}
	if cfg.Devices[0].Alias != "" {
		t.Errorf("invalid mapping applied: got %q", cfg.Devices[0].Alias)
	}
	if cfg.Devices[1].Alias != "valid" {
		t.Errorf("devices[1].alias: got %q, want valid", cfg.Devices[1].Alias)
	}
	if cfg.Devices[2].Address != "10.0.0.3" || cfg.Devices[2].Alias != "" {
		t.Errorf("devices[2]: got %+v", cfg.Devices[2])
	}
}

func TestAddDevices_AddressWithPort(t *testing.T) {
	cfg := Default()
	cfg.AddDevices([]string{"10.0.0.1:8080"}, []string{"10.0.0.1:8080:garage"})
	if cfg.Devices[0].Alias != "garage" {
		t.Errorf("alias: got %q, want garage", cfg.Devices[0].Alias)
	}
}

func TestStringList_Set(t *testing.T) {
	var l StringList
	_ = l.Set("10.0.0.1 10.0.0.2")
	_ = l.Set("10.0.0.3")
	if len(l) != 3 || l[2] != "10.0.0.3" {
		t.Errorf("got %v", l)
	}
	if l.String() != "10.0.0.1 10.0.0.2 10.0.0.3" {
		t.Errorf("String(): got %q", l.String())
	}
}

func TestWatch_ReportsChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("devices: []\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan *Config, 1)
	go func() {
		_ = Watch(ctx, path, func(c *Config) {
			// A write can be observed mid-truncate; wait for the full file.
			if len(c.Devices) == 0 {
				return
			}
			select {
			case changed <- c:
			default:
			}
		})
	}()

	// Keep rewriting until the watcher is armed and reports.
	deadline := time.After(5 * time.Second)
	for {
		_ = os.WriteFile(path, []byte("devices:\n  - address: 10.0.0.9\n"), 0o600)
		select {
		case c := <-changed:
			if len(c.Devices) != 1 || c.Devices[0].Address != "10.0.0.9" {
				t.Fatalf("reloaded devices: got %+v", c.Devices)
			}
			return
		case <-deadline:
			t.Fatal("no change reported")
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func TestWatch_SurvivesAtomicSaves(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("devices: []\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	// saveAtomic writes a sibling temp file and renames it over path, the
	// way most editors and config management tools save.
	saveAtomic := func(addr string) {
		tmp := filepath.Join(dir, ".config.yaml.tmp")
		if err := os.WriteFile(tmp, []byte("devices:\n  - address: "+addr+"\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		if err := os.Rename(tmp, path); err != nil {
			t.Fatal(err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seen := make(chan string, 64)
	go func() {
		_ = Watch(ctx, path, func(c *Config) {
			if len(c.Devices) == 0 {
				return
			}
			select {
			case seen <- c.Devices[0].Address:
			default:
			}
		})
	}()

	waitFor := func(addr string, retry func()) {
		t.Helper()
		deadline := time.After(5 * time.Second)
		for {
			select {
			case got := <-seen:
				if got == addr {
					return
				}
			case <-deadline:
				t.Fatalf("reload with %s never reported", addr)
			case <-time.After(100 * time.Millisecond):
				if retry != nil {
					retry()
				}
			}
		}
	}

	// Repeat the first save until the watcher is armed.
	saveAtomic("10.0.0.1")
	waitFor("10.0.0.1", func() { saveAtomic("10.0.0.1") })

	// From here on each edit happens once and must still be seen.
	saveAtomic("10.0.0.2")
	waitFor("10.0.0.2", nil)

	if err := os.WriteFile(path, []byte("devices:\n  - address: 10.0.0.3\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	waitFor("10.0.0.3", nil)
}

func TestDeviceDiff(t *testing.T) {
	tests := []struct {
		name        string
		running     []string
		devices     []Device
		wantAdded   []string
		wantRemoved []string
	}{
		{"unchanged", []string{"10.0.0.1", "10.0.0.2"}, []Device{{Address: "10.0.0.2"}, {Address: "10.0.0.1", Alias: "renamed"}}, nil, nil},
		{"added", []string{"10.0.0.1"}, []Device{{Address: "10.0.0.1"}, {Address: "10.0.0.5"}}, []string{"10.0.0.5"}, nil},
		{"removed", []string{"10.0.0.1", "10.0.0.2"}, []Device{{Address: "10.0.0.2"}}, nil, []string{"10.0.0.1"}},
		{"both", []string{"10.0.0.1"}, []Device{{Address: " 10.0.0.7 "}}, []string{"10.0.0.7"}, []string{"10.0.0.1"}},
		{"all removed", []string{"10.0.0.1"}, nil, nil, []string{"10.0.0.1"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{Devices: tc.devices}
			added, removed := cfg.DeviceDiff(tc.running)
			if !slices.Equal(added, tc.wantAdded) {
				t.Errorf("added: got %v, want %v", added, tc.wantAdded)
			}
			if !slices.Equal(removed, tc.wantRemoved) {
				t.Errorf("removed: got %v, want %v", removed, tc.wantRemoved)
			}
		})
	}
}

// loadFromString writes yaml to a temp file and calls Load, failing on error.
func loadFromString(t *testing.T, content string) *Config {
	t.Helper()
	cfg, err := loadStringErr(t, content)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	return cfg
}

// loadStringErr writes yaml to a temp file and calls Load, returning any error.
func loadStringErr(t *testing.T, content string) (*Config, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return Load(path)
}
