package types

// NumDrivers is the maximum number of cars in one UpdateFrame.
const NumDrivers = 20

// ---- Colours and strip updates ----

// RGBColor is an immutable 8-bit colour.
type RGBColor struct {
	R uint8 `json:"r" yaml:"r" cbor:"1,keyasint"`
	G uint8 `json:"g" yaml:"g" cbor:"2,keyasint"`
	B uint8 `json:"b" yaml:"b" cbor:"3,keyasint"`
}

// Off is the all-zero colour.
var Off = RGBColor{}

// LedUpdate sets one strip position. Index is 0-based along the daisy chain.
type LedUpdate struct {
	Index   int
	R, G, B uint8
}

func (u LedUpdate) Color() RGBColor { return RGBColor{R: u.R, G: u.G, B: u.B} }

// ---- Drivers ----

// DriverInfo is one entry of the static driver registry.
type DriverInfo struct {
	Number uint32
	Color  RGBColor
	Code   string // three-letter timing code
	Name   string
	Team   string
}

// ---- Telemetry frames ----

// DriverPosition places one driver on one LED.
type DriverPosition struct {
	Driver uint32 `json:"driver" cbor:"1,keyasint"`
	LED    int    `json:"led" cbor:"2,keyasint"`
}

// UpdateFrame is a telemetry snapshot: at this instant these drivers occupy
// these LEDs. At most NumDrivers entries, driver numbers unique.
// TimestampMs is optional; zero means "use the data's update rate".
type UpdateFrame struct {
	Drivers     []DriverPosition `json:"drivers" cbor:"1,keyasint"`
	TimestampMs uint64           `json:"ts_ms,omitempty" cbor:"2,keyasint,omitempty"`
}

// VisualizationData is a read-only sequence of frames plus a playback cadence.
type VisualizationData struct {
	UpdateRateMs uint32        `json:"update_rate_ms" cbor:"1,keyasint"`
	Frames       []UpdateFrame `json:"frames" cbor:"2,keyasint"`
}

// ---- Playback control ----

// Signal is the message carried by the single-slot button channel.
type Signal uint8

const (
	SignalToggle Signal = iota + 1
)

// PlaybackState enumerates controller states.
type PlaybackState string

const (
	StateIdle     PlaybackState = "idle"
	StatePlaying  PlaybackState = "playing"
	StateStopping PlaybackState = "stopping"
)
