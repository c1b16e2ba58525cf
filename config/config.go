package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"scaleloop/pattern"
	"scaleloop/synth"
)

// AudioConfig stores audio output preferences
type AudioConfig struct {
	SampleRate int `json:"sampleRate,omitempty"`
}

// CatalogConfig points at the pattern catalog service
type CatalogConfig struct {
	URL string `json:"url,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	LastTempo int             `json:"lastTempo,omitempty"`
	LastVoice synth.VoiceType `json:"lastVoice,omitempty"`
	Metronome bool            `json:"metronome,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Audio   AudioConfig   `json:"audio,omitempty"`
	Catalog CatalogConfig `json:"catalog,omitempty"`
	UI      UIConfig      `json:"ui,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Audio: AudioConfig{
			SampleRate: 44100,
		},
		Catalog: CatalogConfig{
			URL: "http://localhost:8642",
		},
		UI: UIConfig{
			LastTempo: pattern.MinTempo,
			LastVoice: synth.VoicePluck,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "scaleloop"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Audio.SampleRate == 0 {
		cfg.Audio.SampleRate = 44100
	}
	if cfg.Catalog.URL == "" {
		cfg.Catalog.URL = DefaultConfig().Catalog.URL
	}
	if cfg.UI.LastTempo == 0 {
		cfg.UI.LastTempo = pattern.MinTempo
	}
	if cfg.UI.LastVoice == "" {
		cfg.UI.LastVoice = synth.VoicePluck
	}

	return &cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
