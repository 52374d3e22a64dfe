package config

import (
	"context"
	"strconv"

	"f1led-go/bus"
	"f1led-go/errcode"
	"f1led-go/services/heartbeat"
)

// -----------------------------------------------------------------------------
// String constants (live in flash, not RAM)
// -----------------------------------------------------------------------------

const (
	serviceName  = "config"
	configPrefix = "config"
	CtxBoardKey  = "board" // context key used for the board name
)

// Playback sources.
const (
	SourceSample = "sample" // compiled-in dataset
	SourceUplink = "uplink" // binary frames over serial
	SourceFile   = "file"   // host only: container or binary file
)

type Gain struct {
	R uint8 `yaml:"r"`
	G uint8 `yaml:"g"`
	B uint8 `yaml:"b"`
}

type Strip struct {
	NumLEDs     int    `yaml:"num_leds"`
	Gain        Gain   `yaml:"gain"`
	Brightness  uint8  `yaml:"brightness"`
	FrequencyHz uint32 `yaml:"frequency_hz"`
	SCK         int    `yaml:"sck"`
	SDO         int    `yaml:"sdo"`
	Device      string `yaml:"device"` // host: spidev name, empty = simulator
}

type Button struct {
	Pin        int    `yaml:"pin"`
	DebounceMs uint32 `yaml:"debounce_ms"`
}

type Playback struct {
	UpdateRateMs uint32 `yaml:"update_rate_ms"`
	Source       string `yaml:"source"`
	File         string `yaml:"file"`
	AutoStart    bool   `yaml:"auto_start"`
}

type Uplink struct {
	UART   string `yaml:"uart"`
	Baud   uint32 `yaml:"baud"`
	TX     int    `yaml:"tx"`
	RX     int    `yaml:"rx"`
	IdleMs uint32 `yaml:"idle_ms"`
}

type Config struct {
	Board     string           `yaml:"board"`
	Strip     Strip            `yaml:"strip"`
	Button    Button           `yaml:"button"`
	Playback  Playback         `yaml:"playback"`
	Uplink    Uplink           `yaml:"uplink"`
	Heartbeat heartbeat.Config `yaml:"heartbeat"`
}

// EmbeddedConfigLookup allows overriding how board defaults are resolved.
var EmbeddedConfigLookup = func(board string) (Config, bool) {
	c, ok := embeddedConfigs[board]
	return c, ok
}

// ForBoard returns the compiled-in defaults for board.
func ForBoard(board string) (Config, bool) { return EmbeddedConfigLookup(board) }

// Validate rejects settings the firmware cannot honour.
func (c Config) Validate() error {
	const op = "config.validate"
	bad := func(field, why string) error {
		return errcode.New(errcode.InvalidParams, op, field+": "+why)
	}
	if c.Strip.NumLEDs < 1 || c.Strip.NumLEDs > 1024 {
		return bad("strip.num_leds", "must be 1..1024, got "+strconv.Itoa(c.Strip.NumLEDs))
	}
	if c.Strip.Gain.R > 31 || c.Strip.Gain.G > 31 || c.Strip.Gain.B > 31 {
		return bad("strip.gain", "channels are 0..31")
	}
	if c.Button.DebounceMs == 0 {
		return bad("button.debounce_ms", "must be positive")
	}
	switch c.Playback.Source {
	case SourceSample:
	case SourceUplink:
		if c.Uplink.UART == "" {
			return bad("uplink.uart", "required for the uplink source")
		}
	case SourceFile:
		if c.Playback.File == "" {
			return bad("playback.file", "required for the file source")
		}
	default:
		return bad("playback.source", "unknown source "+strconv.Quote(c.Playback.Source))
	}
	return nil
}

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

type ConfigService struct {
	Name string
}

func NewConfigService() *ConfigService {
	return &ConfigService{Name: serviceName}
}

// publishConfig resolves the board config and publishes each section retained
// under config/<section>.
func (s *ConfigService) publishConfig(ctx context.Context, conn *bus.Connection) error {
	board, _ := ctx.Value(CtxBoardKey).(string)
	if board == "" {
		return errcode.New(errcode.InvalidParams, "config.publish", "missing board in context")
	}
	c, ok := EmbeddedConfigLookup(board)
	if !ok {
		return errcode.New(errcode.InvalidParams, "config.publish", "no embedded config for board: "+board)
	}
	s.Publish(conn, c)
	return nil
}

// Publish emits c as retained per-section messages.
func (s *ConfigService) Publish(conn *bus.Connection, c Config) {
	conn.Publish(conn.NewMessage(bus.T(configPrefix, "board"), c.Board, true))
	conn.Publish(conn.NewMessage(bus.T(configPrefix, "strip"), c.Strip, true))
	conn.Publish(conn.NewMessage(bus.T(configPrefix, "button"), c.Button, true))
	conn.Publish(conn.NewMessage(bus.T(configPrefix, "playback"), c.Playback, true))
	conn.Publish(conn.NewMessage(bus.T(configPrefix, "uplink"), c.Uplink, true))
	conn.Publish(conn.NewMessage(bus.T(configPrefix, "heartbeat"), c.Heartbeat, true))
}

// Start launches the config publisher in a goroutine.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		if err := s.publishConfig(ctx, conn); err != nil {
			conn.Publish(conn.NewMessage(bus.T(configPrefix, "error"), err.Error(), true))
		}
	}()
}
