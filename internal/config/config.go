// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalid is returned by Validate for unusable settings.
var ErrInvalid = errors.New("invalid config")

// Config holds all viewer and dev-server settings.
type Config struct {
	Viewer  ViewerConfig  `yaml:"viewer"`
	Window  WindowConfig  `yaml:"window"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// ViewerConfig holds the embeddable viewer settings.
type ViewerConfig struct {
	BaseURL      string        `yaml:"base_url"`      // Site root serving /model-lookup, /models and /character-texture
	AssetVersion string        `yaml:"asset_version"` // Appended as ?v= to asset fetches
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	Debounce     time.Duration `yaml:"debounce"` // Character reload coalescing window
	FrameRate    int           `yaml:"frame_rate"`
	MinDistance  float32       `yaml:"min_distance"`
	MaxDistance  float32       `yaml:"max_distance"`
	FOV          float32       `yaml:"fov"` // Vertical field of view in degrees
}

// WindowConfig holds desktop window settings.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	VSync  bool   `yaml:"vsync"`
}

// ServerConfig holds the dev asset server settings.
type ServerConfig struct {
	Addr          string `yaml:"addr"`
	ModelRoot     string `yaml:"model_root"`
	CompositorURL string `yaml:"compositor_url"` // Upstream /character-texture, empty to disable
	Watch         bool   `yaml:"watch"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Viewer: ViewerConfig{
			BaseURL:      "http://127.0.0.1:8085",
			AssetVersion: "1",
			FetchTimeout: 15 * time.Second,
			Debounce:     150 * time.Millisecond,
			FrameRate:    60,
			MinDistance:  0.5,
			MaxDistance:  50,
			FOV:          75,
		},
		Window: WindowConfig{
			Title:  "Model Viewer",
			Width:  1024,
			Height: 768,
			VSync:  true,
		},
		Server: ServerConfig{
			Addr:      "127.0.0.1:8085",
			ModelRoot: "models",
			Watch:     true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	switch {
	case c.Viewer.BaseURL == "":
		return fmt.Errorf("%w: viewer.base_url is empty", ErrInvalid)
	case c.Viewer.AssetVersion == "":
		return fmt.Errorf("%w: viewer.asset_version is empty", ErrInvalid)
	case c.Viewer.FetchTimeout <= 0:
		return fmt.Errorf("%w: viewer.fetch_timeout must be positive", ErrInvalid)
	case c.Viewer.Debounce < 0:
		return fmt.Errorf("%w: viewer.debounce is negative", ErrInvalid)
	case c.Viewer.FrameRate <= 0:
		return fmt.Errorf("%w: viewer.frame_rate must be positive", ErrInvalid)
	case c.Viewer.MinDistance <= 0 || c.Viewer.MaxDistance < c.Viewer.MinDistance:
		return fmt.Errorf("%w: viewer distance range [%g, %g]", ErrInvalid, c.Viewer.MinDistance, c.Viewer.MaxDistance)
	case c.Viewer.FOV <= 0 || c.Viewer.FOV >= 180:
		return fmt.Errorf("%w: viewer.fov %g out of range", ErrInvalid, c.Viewer.FOV)
	}
	return nil
}
