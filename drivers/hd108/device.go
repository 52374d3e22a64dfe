package hd108

import (
	"sync/atomic"

	"tinygo.org/x/drivers"

	"f1led-go/errcode"
	"f1led-go/types"
	"f1led-go/x/mathx"
)

// DefaultNumLEDs matches the 96-LED circuit layout.
const DefaultNumLEDs = 96

// Frame sizes in bytes.
const (
	StartFrameLen  = 16
	minEndFrameLen = 16
)

// EndFrameLen returns max(16, ceil(n/8)).
func EndFrameLen(n int) int {
	return mathx.Max(minEndFrameLen, mathx.CeilDiv(n, 8))
}

// FrameLen is the total transmission size for n LEDs.
func FrameLen(n int) int { return StartFrameLen + n*LEDLen + EndFrameLen(n) }

// Config controls strip geometry and output level. All fields are optional.
type Config struct {
	// NumLEDs defaults to DefaultNumLEDs if zero.
	NumLEDs int
	// Gain defaults to DefaultGain if zero.
	Gain Gain
	// Brightness scales every channel by Brightness/255. Zero means 255.
	Brightness uint8
	// OnReject is called for each update whose index is outside [0, NumLEDs).
	OnReject func(types.LedUpdate)
}

// Stats counts strip activity since New.
type Stats struct {
	Frames    uint32 // successful transmissions
	Rejected  uint32 // out-of-range updates skipped
	BusErrors uint32
}

// Device is the strip driver. It owns the bus exclusively and is not safe for
// concurrent use, except for Stats.
type Device struct {
	bus    drivers.SPI
	n      int
	word   uint16
	bright uint16
	reject func(types.LedUpdate)

	colors []types.RGBColor // per-LED scratch, reset every frame
	buf    []byte           // start + LEDs + end, allocated once

	frames, rejected, busErrors uint32 // atomic
}

// New returns a Device with a pre-sized transmit buffer.
func New(bus drivers.SPI, cfg Config) *Device {
	if cfg.NumLEDs <= 0 {
		cfg.NumLEDs = DefaultNumLEDs
	}
	if cfg.Gain == (Gain{}) {
		cfg.Gain = DefaultGain
	}
	if cfg.Brightness == 0 {
		cfg.Brightness = 255
	}
	return &Device{
		bus:    bus,
		n:      cfg.NumLEDs,
		word:   cfg.Gain.Word(),
		bright: uint16(cfg.Brightness),
		reject: cfg.OnReject,
		colors: make([]types.RGBColor, cfg.NumLEDs),
		buf:    make([]byte, FrameLen(cfg.NumLEDs)),
	}
}

// NumLEDs is the configured strip length.
func (d *Device) NumLEDs() int { return d.n }

// Stats returns a snapshot of the counters. Safe from any goroutine.
func (d *Device) Stats() Stats {
	return Stats{
		Frames:    atomic.LoadUint32(&d.frames),
		Rejected:  atomic.LoadUint32(&d.rejected),
		BusErrors: atomic.LoadUint32(&d.busErrors),
	}
}

// ApplyUpdates writes one full strip image: LEDs named in updates take their
// colour, all others are turned off. Later updates for the same index win.
// Out-of-range indices are skipped and reported through OnReject.
func (d *Device) ApplyUpdates(updates []types.LedUpdate) error {
	for i := range d.colors {
		d.colors[i] = types.Off
	}
	for _, u := range updates {
		if u.Index < 0 || u.Index >= d.n {
			atomic.AddUint32(&d.rejected, 1)
			if d.reject != nil {
				d.reject(u)
			}
			continue
		}
		d.colors[u.Index] = u.Color()
	}

	// Start and end frames stay zero from allocation; only LED slots change.
	off := StartFrameLen
	for _, c := range d.colors {
		encodeInto(d.buf[off:off+LEDLen], d.level(c.R), d.level(c.G), d.level(c.B), d.word)
		off += LEDLen
	}

	if err := d.bus.Tx(d.buf, nil); err != nil {
		atomic.AddUint32(&d.busErrors, 1)
		return errcode.Wrap(errcode.BusWrite, "hd108.tx", err)
	}
	atomic.AddUint32(&d.frames, 1)
	return nil
}

// SetOff turns every LED off.
func (d *Device) SetOff() error { return d.ApplyUpdates(nil) }

func (d *Device) level(v uint8) uint16 {
	return mathx.ScaleU16(Scale8(v), d.bright, 255)
}

// DecodeStrip parses a complete transmission for n LEDs back into 8-bit
// colours (the high byte of each 16-bit channel).
func DecodeStrip(buf []byte, n int) ([]types.RGBColor, error) {
	const op = "hd108.decode"
	if n <= 0 || len(buf) != FrameLen(n) {
		return nil, errcode.New(errcode.InvalidPayload, op, "length does not match strip size")
	}
	for _, b := range buf[:StartFrameLen] {
		if b != 0 {
			return nil, errcode.New(errcode.InvalidPayload, op, "start frame not zero")
		}
	}
	out := make([]types.RGBColor, n)
	off := StartFrameLen
	for i := range out {
		r, g, b, _, ok := DecodeLED(buf[off : off+LEDLen])
		if !ok {
			return nil, errcode.New(errcode.InvalidPayload, op, "missing start bit")
		}
		out[i] = types.RGBColor{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
		off += LEDLen
	}
	return out, nil
}
