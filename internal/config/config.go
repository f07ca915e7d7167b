// Package config handles skinswap configuration loading and persistence.
package config

// DefaultModelName is the selection value meaning "keep the host's own mesh".
const DefaultModelName = "Default"

// Config holds all settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Models   ModelsConfig   `yaml:"models"`
	Host     HostConfig     `yaml:"host"`
	Input    InputConfig    `yaml:"input"`
	Import   ImportConfig   `yaml:"import"`
	Texture  TextureConfig  `yaml:"texture"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings for the viewer.
type GraphicsConfig struct {
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	Fullscreen    bool   `yaml:"fullscreen"`
	VSync         bool   `yaml:"vsync"`
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// ModelsConfig holds the custom model directory and the persisted selection.
type ModelsConfig struct {
	Dir      string `yaml:"dir"`      // One subdirectory per model
	Selected string `yaml:"selected"` // Last applied model name
}

// HostConfig describes the host character the viewer spawns.
type HostConfig struct {
	Asset string `yaml:"asset"` // glTF/GLB file with a skinned character
}

// InputConfig holds hotkey bindings. Key names follow SDL scancode names.
type InputConfig struct {
	ToggleOverlay string `yaml:"toggle_overlay"`
	Screenshot    string `yaml:"screenshot"`
}

// ImportConfig holds mesh importer settings.
type ImportConfig struct {
	Scale              float32 `yaml:"scale"`
	ConvertHandedness  bool    `yaml:"convert_handedness"`
	MaxFallbackReports int     `yaml:"max_fallback_reports"`
}

// TextureConfig holds texture loading settings.
type TextureConfig struct {
	MaxSize int `yaml:"max_size"` // Longest edge in pixels, 0 = unlimited
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:         1280,
			Height:        720,
			VSync:         true,
			ScreenshotDir: "screenshots",
		},
		Models: ModelsConfig{
			Dir:      "models",
			Selected: DefaultModelName,
		},
		Host: HostConfig{
			Asset: "host.glb",
		},
		Input: InputConfig{
			ToggleOverlay: "F8",
			Screenshot:    "F12",
		},
		Import: ImportConfig{
			Scale:              1.0,
			ConvertHandedness:  true,
			MaxFallbackReports: 5,
		},
		Texture: TextureConfig{
			MaxSize: 4096,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
