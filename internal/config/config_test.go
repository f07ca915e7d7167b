package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}

	if cfg.Models.Dir != "models" {
		t.Errorf("expected models dir 'models', got %s", cfg.Models.Dir)
	}
	if cfg.Models.Selected != DefaultModelName {
		t.Errorf("expected selected %q, got %q", DefaultModelName, cfg.Models.Selected)
	}
	if cfg.Input.ToggleOverlay != "F8" {
		t.Errorf("expected toggle key F8, got %s", cfg.Input.ToggleOverlay)
	}
	if cfg.Input.Screenshot != "F12" {
		t.Errorf("expected screenshot key F12, got %s", cfg.Input.Screenshot)
	}
	if cfg.Graphics.ScreenshotDir != "screenshots" {
		t.Errorf("expected screenshot dir screenshots, got %s", cfg.Graphics.ScreenshotDir)
	}

	if cfg.Import.Scale != 1.0 {
		t.Errorf("expected import scale 1.0, got %f", cfg.Import.Scale)
	}
	if !cfg.Import.ConvertHandedness {
		t.Error("expected handedness conversion on by default")
	}
	if cfg.Import.MaxFallbackReports != 5 {
		t.Errorf("expected 5 fallback reports, got %d", cfg.Import.MaxFallbackReports)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true

models:
  dir: "/opt/skins"
  selected: "Knight"

input:
  toggle_overlay: "F10"

import:
  scale: 0.01
  convert_handedness: false
  max_fallback_reports: 2

texture:
  max_size: 1024

logging:
  level: "debug"
  log_file: "skinswap.log"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 || cfg.Graphics.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Models.Dir != "/opt/skins" {
		t.Errorf("expected models dir /opt/skins, got %s", cfg.Models.Dir)
	}
	if cfg.Models.Selected != "Knight" {
		t.Errorf("expected selected Knight, got %s", cfg.Models.Selected)
	}
	if cfg.Input.ToggleOverlay != "F10" {
		t.Errorf("expected toggle key F10, got %s", cfg.Input.ToggleOverlay)
	}
	if cfg.Import.Scale != 0.01 {
		t.Errorf("expected scale 0.01, got %f", cfg.Import.Scale)
	}
	if cfg.Import.ConvertHandedness {
		t.Error("expected handedness conversion off")
	}
	if cfg.Import.MaxFallbackReports != 2 {
		t.Errorf("expected 2 fallback reports, got %d", cfg.Import.MaxFallbackReports)
	}
	if cfg.Texture.MaxSize != 1024 {
		t.Errorf("expected max texture size 1024, got %d", cfg.Texture.MaxSize)
	}

	// Untouched sections keep their defaults
	if cfg.Host.Asset != "host.glb" {
		t.Errorf("expected default host asset, got %s", cfg.Host.Asset)
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync default to survive a partial file")
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "models flag",
			setup: func() { *flagModelsDir = "/srv/models" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Models.Dir != "/srv/models" {
					t.Errorf("expected models dir /srv/models, got %s", cfg.Models.Dir)
				}
			},
			teardown: func() { *flagModelsDir = "" },
		},
		{
			name:  "model flag",
			setup: func() { *flagModel = "Robot" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Models.Selected != "Robot" {
					t.Errorf("expected selected Robot, got %s", cfg.Models.Selected)
				}
			},
			teardown: func() { *flagModel = "" },
		},
		{
			name:  "host flag",
			setup: func() { *flagHost = "hero.gltf" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Host.Asset != "hero.gltf" {
					t.Errorf("expected host hero.gltf, got %s", cfg.Host.Asset)
				}
			},
			teardown: func() { *flagHost = "" },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Width != 2560 || cfg.Graphics.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, path, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if path != configPath {
		t.Errorf("expected path %s, got %s", configPath, path)
	}
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
}

func TestStorePersistsSelection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	store := NewStore(Default(), path)

	if got := store.SelectedModel(); got != DefaultModelName {
		t.Fatalf("expected %q before any selection, got %q", DefaultModelName, got)
	}
	if err := store.SetSelectedModel("Knight"); err != nil {
		t.Fatalf("SetSelectedModel: %v", err)
	}

	reloaded := Default()
	if err := loadFromFile(reloaded, path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Models.Selected != "Knight" {
		t.Errorf("expected persisted selection Knight, got %q", reloaded.Models.Selected)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should be renamed away")
	}
}

func TestStoreBlankSelectionMeansDefault(t *testing.T) {
	cfg := Default()
	cfg.Models.Selected = "  "
	store := NewStore(cfg, filepath.Join(t.TempDir(), "config.yaml"))

	if got := store.SelectedModel(); got != DefaultModelName {
		t.Errorf("expected %q, got %q", DefaultModelName, got)
	}
}
