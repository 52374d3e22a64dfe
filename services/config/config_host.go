//go:build !(rp2040 || rp2350)

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env"
	"gopkg.in/yaml.v3"
)

// DefaultBoard is the base for host configuration files without a board key.
const DefaultBoard = "host"

// Load reads a YAML file layered over the defaults of the board it names.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(raw)
}

// Parse layers YAML over board defaults.
func Parse(raw []byte) (Config, error) {
	var head struct {
		Board string `yaml:"board"`
	}
	if err := yaml.Unmarshal(raw, &head); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if head.Board == "" {
		head.Board = DefaultBoard
	}
	cfg, ok := ForBoard(head.Board)
	if !ok {
		return Config{}, fmt.Errorf("unknown board %q", head.Board)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg as YAML.
func Save(path string, cfg Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, raw, 0o644)
}

// envOverrides lists the F1LED_* variables. Unset variables keep the
// value already in the config.
type envOverrides struct {
	NumLEDs    int           `env:"F1LED_NUM_LEDS"`
	Brightness int           `env:"F1LED_BRIGHTNESS"`
	SPIHz      int           `env:"F1LED_SPI_HZ"`
	SPIDevice  string        `env:"F1LED_SPI_DEVICE"`
	Debounce   time.Duration `env:"F1LED_DEBOUNCE"`
	UpdateRate time.Duration `env:"F1LED_UPDATE_RATE"`
	Source     string        `env:"F1LED_SOURCE"`
	File       string        `env:"F1LED_FILE"`
	AutoStart  bool          `env:"F1LED_AUTOSTART"`
	UART       string        `env:"F1LED_UART"`
	Baud       int           `env:"F1LED_BAUD"`
}

// ApplyEnv overlays F1LED_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	o := envOverrides{
		NumLEDs:    cfg.Strip.NumLEDs,
		Brightness: int(cfg.Strip.Brightness),
		SPIHz:      int(cfg.Strip.FrequencyHz),
		SPIDevice:  cfg.Strip.Device,
		Debounce:   time.Duration(cfg.Button.DebounceMs) * time.Millisecond,
		UpdateRate: time.Duration(cfg.Playback.UpdateRateMs) * time.Millisecond,
		Source:     cfg.Playback.Source,
		File:       cfg.Playback.File,
		AutoStart:  cfg.Playback.AutoStart,
		UART:       cfg.Uplink.UART,
		Baud:       int(cfg.Uplink.Baud),
	}
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	if o.Brightness < 0 || o.Brightness > 255 {
		return fmt.Errorf("F1LED_BRIGHTNESS out of range: %d", o.Brightness)
	}
	cfg.Strip.NumLEDs = o.NumLEDs
	cfg.Strip.Brightness = uint8(o.Brightness)
	cfg.Strip.FrequencyHz = uint32(o.SPIHz)
	cfg.Strip.Device = o.SPIDevice
	cfg.Button.DebounceMs = uint32(o.Debounce / time.Millisecond)
	cfg.Playback.UpdateRateMs = uint32(o.UpdateRate / time.Millisecond)
	cfg.Playback.Source = o.Source
	cfg.Playback.File = o.File
	cfg.Playback.AutoStart = o.AutoStart
	cfg.Uplink.UART = o.UART
	cfg.Uplink.Baud = uint32(o.Baud)
	return nil
}
