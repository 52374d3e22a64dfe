// Package hd108 drives a chain of HD108 RGB LEDs over a clocked serial bus.
//
// Each LED takes an 8-byte command: a start bit, three 5-bit global current
// gains, then 16-bit red, green and blue PWM values, big-endian:
//
//	1 RRRRR GGGGG BBBBB | R16 | G16 | B16
//
// A transmission is a 128-bit zero start frame, one command per LED in chain
// order and a zero end frame long enough to clock data to the last LED.
package hd108

import "f1led-go/x/mathx"

// LEDLen is the size of one LED command in bytes.
const LEDLen = 8

const (
	startBit = 0x80
	gainMax  = 31
)

// Gain holds the per-channel 5-bit current gains. Values above 31 are clamped.
type Gain struct {
	R, G, B uint8
}

// DefaultGain drives every channel at full current.
var DefaultGain = Gain{R: gainMax, G: gainMax, B: gainMax}

// Word packs the gains as R<<10 | G<<5 | B.
func (g Gain) Word() uint16 {
	r := uint16(mathx.Clamp(g.R, 0, gainMax))
	gg := uint16(mathx.Clamp(g.G, 0, gainMax))
	b := uint16(mathx.Clamp(g.B, 0, gainMax))
	return r<<10 | gg<<5 | b
}

// Encode returns the 8-byte command for one LED.
func Encode(r, g, b uint16, gain Gain) [LEDLen]byte {
	var out [LEDLen]byte
	encodeInto(out[:], r, g, b, gain.Word())
	return out
}

func encodeInto(dst []byte, r, g, b uint16, word uint16) {
	dst[0] = startBit | byte(word>>8)
	dst[1] = byte(word)
	dst[2] = byte(r >> 8)
	dst[3] = byte(r)
	dst[4] = byte(g >> 8)
	dst[5] = byte(g)
	dst[6] = byte(b >> 8)
	dst[7] = byte(b)
}

// Scale8 expands an 8-bit channel to the full 16-bit range (0→0, 255→65535).
func Scale8(v uint8) uint16 { return uint16(v) * 257 }

// DecodeLED parses one LED command. ok is false when p is short or the start
// bit is missing.
func DecodeLED(p []byte) (r, g, b uint16, gain Gain, ok bool) {
	if len(p) < LEDLen || p[0]&startBit == 0 {
		return 0, 0, 0, Gain{}, false
	}
	word := uint16(p[0]&^startBit)<<8 | uint16(p[1])
	gain = Gain{
		R: uint8(word>>10) & gainMax,
		G: uint8(word>>5) & gainMax,
		B: uint8(word) & gainMax,
	}
	r = uint16(p[2])<<8 | uint16(p[3])
	g = uint16(p[4])<<8 | uint16(p[5])
	b = uint16(p[6])<<8 | uint16(p[7])
	return r, g, b, gain, true
}
