package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "xoom.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if err := cfg.validate(); err != nil {
		t.Fatalf("default config does not validate: %v", err)
	}
	if cfg.Window.Width != 800 || cfg.Window.Height != 600 {
		t.Errorf("default window %dx%d, want 800x600", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.BSP.Strategy != "first" {
		t.Errorf("default strategy %q, want first", cfg.BSP.Strategy)
	}
}

func TestLoadMissingDefaultFile(t *testing.T) {
	dir := t.TempDir()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(old)

	cfg, err := Load(DefaultFileName)
	if err != nil {
		t.Fatalf("missing default file should fall back to defaults, got %v", err)
	}
	if cfg != Default() {
		t.Error("missing default file did not yield the defaults")
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("missing explicit config file should be an error")
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
window:
  title: overlay test
player:
  speed: 55
bsp:
  strategy: random
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Window.Title != "overlay test" {
		t.Errorf("title %q not overlaid", cfg.Window.Title)
	}
	if cfg.Player.Speed != 55 {
		t.Errorf("speed %g not overlaid", cfg.Player.Speed)
	}
	if cfg.BSP.Strategy != "random" {
		t.Errorf("strategy %q not overlaid", cfg.BSP.Strategy)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Window.Width != 800 {
		t.Errorf("width %d, want default 800", cfg.Window.Width)
	}
	if cfg.Player.FOVDeg != 60 {
		t.Errorf("fov %g, want default 60", cfg.Player.FOVDeg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	testCases := []struct {
		Name string
		YAML string
	}{
		{"zero window", "window:\n  width: 0\n"},
		{"zero fps", "window:\n  fps: 0\n"},
		{"fov too wide", "player:\n  fov_deg: 200\n"},
		{"negative radius", "player:\n  radius: -1\n"},
		{"unknown strategy", "bsp:\n  strategy: widest\n"},
		{"zero max depth", "bsp:\n  max_depth: 0\n"},
		{"malformed yaml", "window: [\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.YAML)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
