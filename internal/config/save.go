package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SaveTo writes the config to a specific path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// Write then rename so a crash never leaves a truncated file behind.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Store is a config bound to the file it persists to. Setters write through
// immediately.
type Store struct {
	cfg  *Config
	path string
}

// NewStore wraps cfg so changes are saved to path.
func NewStore(cfg *Config, path string) *Store {
	return &Store{cfg: cfg, path: path}
}

// Config returns the live configuration.
func (s *Store) Config() *Config {
	return s.cfg
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// SelectedModel returns the persisted model selection.
func (s *Store) SelectedModel() string {
	if strings.TrimSpace(s.cfg.Models.Selected) == "" {
		return DefaultModelName
	}
	return s.cfg.Models.Selected
}

// SetSelectedModel records and persists the model selection.
func (s *Store) SetSelectedModel(name string) error {
	if s.cfg.Models.Selected == name {
		return nil
	}
	s.cfg.Models.Selected = name
	return s.cfg.SaveTo(s.path)
}

// ToggleKey returns the overlay hotkey name.
func (s *Store) ToggleKey() string {
	return s.cfg.Input.ToggleOverlay
}
