// Package config resolves the runtime configuration handed to the platform
// at construction: display geometry, keyset, repaint policy and frame cap.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"midp/internal/logging"
)

// Phone selects the vendor keyset and platform properties.
type Phone string

const (
	PhoneStandard     Phone = "Standard"
	PhoneNokia        Phone = "Nokia"
	PhoneSiemens      Phone = "Siemens"
	PhoneMotorola     Phone = "Motorola"
	PhoneSonyEricsson Phone = "SonyEricsson"
)

// Valid reports whether p names a known keyset.
func (p Phone) Valid() bool {
	switch p {
	case PhoneStandard, PhoneNokia, PhoneSiemens, PhoneMotorola, PhoneSonyEricsson:
		return true
	}
	return false
}

// Settings are the per-application runtime settings.
type Settings struct {
	Width           int    `yaml:"width"`
	Height          int    `yaml:"height"`
	Sound           bool   `yaml:"sound"`
	Phone           Phone  `yaml:"phone"`
	Rotate          bool   `yaml:"rotate"`
	FPS             int    `yaml:"fps"`
	FontSize        int    `yaml:"font_size"`
	DGFormat        int    `yaml:"dg_format"`
	ForceFullscreen bool   `yaml:"force_fullscreen"`
	QueuedPaint     bool   `yaml:"queued_paint"`
	TextureFilter   bool   `yaml:"texture_filter"`
	Main            string `yaml:"main,omitempty"`
}

// Config is the on-disk layout of an application's configuration.
type Config struct {
	Settings         Settings          `yaml:"settings"`
	AppProperties    map[string]string `yaml:"app_properties,omitempty"`
	SystemProperties map[string]string `yaml:"system_properties,omitempty"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Settings: Settings{
			Width:    240,
			Height:   320,
			Sound:    true,
			Phone:    PhoneNokia,
			DGFormat: 4444,
		},
	}
}

const maxConfigSize = 1 << 20

// Load reads a YAML config file over the defaults. A missing file is not an
// error: the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Logger().Debug("config not found, using defaults", "path", path)
			return cfg, nil
		}
		return cfg, fmt.Errorf("stat config %q: %w", path, err)
	}
	if info.Size() > maxConfigSize {
		return cfg, fmt.Errorf("config %q: too large (%d bytes)", path, info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	if err := cfg.Settings.Validate(); err != nil {
		return cfg, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as YAML.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %q: %w", path, err)
	}
	return nil
}

// Validate checks ranges.
func (s Settings) Validate() error {
	if s.Width <= 0 || s.Height <= 0 || s.Width > 4096 || s.Height > 4096 {
		return fmt.Errorf("invalid display size %dx%d", s.Width, s.Height)
	}
	if s.FPS < 0 {
		return fmt.Errorf("invalid fps %d", s.FPS)
	}
	if !s.Phone.Valid() {
		return fmt.Errorf("unknown phone %q", s.Phone)
	}
	return nil
}

// FrameDelay is the limiter sleep per presented frame; zero means unlimited.
func (s Settings) FrameDelay() time.Duration {
	if s.FPS <= 0 {
		return 0
	}
	return time.Duration(1000/s.FPS) * time.Millisecond
}

// CanvasSize is the host surface size, swapped when the display is rotated.
func (s Settings) CanvasSize() (w, h int) {
	if s.Rotate {
		return s.Height, s.Width
	}
	return s.Width, s.Height
}
