package config

import "f1led-go/services/heartbeat"

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: board name (same value placed in ctx under CtxBoardKey)
// Val: defaults for that board
// -----------------------------------------------------------------------------

// Pico and Pico 2 share the same wiring: SPI0 on GP18/GP19, button on GP15
// to ground, uplink on UART0 GP0/GP1.
var cfgPico = Config{
	Board: "pico",
	Strip: Strip{
		NumLEDs:     96,
		Gain:        Gain{R: 31, G: 31, B: 31},
		Brightness:  255,
		FrequencyHz: 8_000_000,
		SCK:         18,
		SDO:         19,
	},
	Button:    Button{Pin: 15, DebounceMs: 400},
	Playback:  Playback{UpdateRateMs: 500, Source: SourceSample},
	Uplink:    Uplink{UART: "uart0", Baud: 115200, TX: 0, RX: 1, IdleMs: 2000},
	Heartbeat: heartbeat.Config{IntervalMs: 10000},
}

var cfgHost = Config{
	Board: "host",
	Strip: Strip{
		NumLEDs:     96,
		Gain:        Gain{R: 31, G: 31, B: 31},
		Brightness:  255,
		FrequencyHz: 8_000_000,
	},
	Button:    Button{Pin: 15, DebounceMs: 400},
	Playback:  Playback{UpdateRateMs: 500, Source: SourceSample},
	Uplink:    Uplink{Baud: 115200, IdleMs: 2000},
	Heartbeat: heartbeat.Config{IntervalMs: 10000},
}

var embeddedConfigs = map[string]Config{
	"pico":  cfgPico,
	"pico2": withBoard(cfgPico, "pico2"),
	"host":  cfgHost,
	"rpi":   withDevice(withBoard(cfgHost, "rpi"), "/dev/spidev0.0"),
}

func withBoard(c Config, name string) Config {
	c.Board = name
	return c
}

func withDevice(c Config, dev string) Config {
	c.Strip.Device = dev
	return c
}
