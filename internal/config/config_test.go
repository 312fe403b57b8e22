package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_FirstRunWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "agendacal.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != "127.0.0.1:8080" {
		t.Errorf("Listen = %q", cfg.Listen)
	}
	if cfg.Agenda.Width != 480 || cfg.Agenda.Height != 800 {
		t.Errorf("default surface size = %gx%g", cfg.Agenda.Width, cfg.Agenda.Height)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config file permissions = %o, want 0600", perm)
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agendacal.yaml")

	cfg := DefaultConfig()
	cfg.Listen = "0.0.0.0:9090"
	cfg.Locale = "ko"
	cfg.Agenda.TimedItemHeight = 72
	cfg.ICS = []ICSConfig{{URL: "https://example.com/work.ics", ID: "work", Name: "Work", Color: "#336699"}}
	cfg.BasicAuth = &BasicAuthConfig{Username: "admin", Password: "secret"}

	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if loaded.Listen != "0.0.0.0:9090" || loaded.Locale != "ko" {
		t.Errorf("roundtrip lost top-level fields: %+v", loaded)
	}
	if loaded.Agenda.TimedItemHeight != 72 {
		t.Errorf("roundtrip lost agenda settings: %+v", loaded.Agenda)
	}
	if len(loaded.ICS) != 1 || loaded.ICS[0].ID != "work" {
		t.Errorf("roundtrip lost ICS sources: %+v", loaded.ICS)
	}
	if loaded.BasicAuth == nil || loaded.BasicAuth.Username != "admin" {
		t.Errorf("roundtrip lost basic auth: %+v", loaded.BasicAuth)
	}
}

func TestNormalize_FillsZeroValues(t *testing.T) {
	cfg := &Config{}
	cfg.Normalize()

	if cfg.Listen == "" || cfg.Timezone == "" || cfg.Locale == "" || cfg.RefreshCron == "" {
		t.Errorf("Normalize left empty top-level fields: %+v", cfg)
	}
	if cfg.Agenda.Width != 480 || cfg.Agenda.Height != 800 {
		t.Errorf("Normalize left zero surface size: %+v", cfg.Agenda)
	}
	if cfg.Agenda.TextScale != 1 {
		t.Errorf("TextScale = %g, want 1", cfg.Agenda.TextScale)
	}
	if cfg.ICS == nil || cfg.HighlightRed == nil {
		t.Error("Normalize left nil slices")
	}
}

func TestNormalize_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{Listen: "10.0.0.1:80", Locale: "de"}
	cfg.Agenda.TimedItemHeight = 44
	cfg.Normalize()

	if cfg.Listen != "10.0.0.1:80" || cfg.Locale != "de" {
		t.Errorf("Normalize overwrote explicit fields: %+v", cfg)
	}
	if cfg.Agenda.TimedItemHeight != 44 {
		t.Errorf("Normalize overwrote explicit row height: %g", cfg.Agenda.TimedItemHeight)
	}
}

func TestSave_InvalidArgs(t *testing.T) {
	if err := Save("", DefaultConfig()); err == nil {
		t.Error("empty path accepted")
	}
	if err := Save(filepath.Join(t.TempDir(), "c.yaml"), nil); err == nil {
		t.Error("nil config accepted")
	}
}
