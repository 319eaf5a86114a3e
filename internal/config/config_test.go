package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Web.Port != "8000" {
		t.Errorf("port: got %s, want 8000", cfg.Web.Port)
	}
	if cfg.Negotiation.Cooldown != 30*time.Second {
		t.Errorf("cooldown: got %v, want 30s", cfg.Negotiation.Cooldown)
	}
	if len(cfg.Negotiation.Hubs) != 11 {
		t.Errorf("hubs: got %d, want 11", len(cfg.Negotiation.Hubs))
	}
	if cfg.Negotiation.InitialLocation != "充電ドック" {
		t.Errorf("initial location: got %s", cfg.Negotiation.InitialLocation)
	}
	if len(cfg.Rig.Axes) != 4 {
		t.Fatalf("axes: got %d, want 4", len(cfg.Rig.Axes))
	}
	for _, ax := range cfg.Rig.Axes {
		if ax.Axis == "vertical" && !ax.Inverted {
			t.Errorf("vertical axis for %s must be inverted", ax.User)
		}
		if ax.Axis == "horizontal" && ax.Inverted {
			t.Errorf("horizontal axis for %s must not be inverted", ax.User)
		}
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Web.Port != "8000" {
		t.Errorf("port: got %s, want default", cfg.Web.Port)
	}
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "duo.yaml")
	content := `log_level: debug
web:
  port: "9000"
negotiation:
  cooldown: 10s
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level: got %s", cfg.LogLevel)
	}
	if cfg.Web.Port != "9000" {
		t.Errorf("port: got %s, want 9000", cfg.Web.Port)
	}
	if cfg.Negotiation.Cooldown != 10*time.Second {
		t.Errorf("cooldown: got %v, want 10s", cfg.Negotiation.Cooldown)
	}
	// Untouched sections keep their defaults.
	if cfg.Kachaka.Port != "26502" {
		t.Errorf("kachaka port: got %s, want default", cfg.Kachaka.Port)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "duo.yaml")
	if err := os.WriteFile(path, []byte("web:\n  port: \"9000\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "9100")
	t.Setenv("KACHAKA_HOST", "192.168.1.50")
	t.Setenv("SERIAL_BAUD", "115200")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Web.Port != "9100" {
		t.Errorf("port: got %s, want env value 9100", cfg.Web.Port)
	}
	if cfg.Kachaka.Host != "192.168.1.50" {
		t.Errorf("kachaka host: got %s", cfg.Kachaka.Host)
	}
	if cfg.Serial.BaudRate != 115200 {
		t.Errorf("baud: got %d", cfg.Serial.BaudRate)
	}
}

func TestKachakaURL(t *testing.T) {
	k := KachakaConfig{Host: "10.40.5.108", Port: "26502"}
	if got := k.URL(); got != "http://10.40.5.108:26502" {
		t.Errorf("URL: got %s", got)
	}
}
