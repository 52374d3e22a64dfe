// hal/types.go
package hal

import (
	"context"

	"tinygo.org/x/drivers"
)

// ---- Buses ----

// SPI is the strip bus (compatible with tinygo.org/x/drivers.SPI).
type SPI = drivers.SPI

// SPIConfig describes how a strip bus is brought up by a platform factory.
type SPIConfig struct {
	FrequencyHz uint32
	SCK, SDO    int    // GPIO numbers; ignored off-MCU
	Device      string // host only: spidev name, empty selects the simulator
	NumLEDs     int    // host only: strip length for the simulator's decoder
}

// ---- GPIO abstractions ----

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

type GPIOPin interface {
	ConfigureInput(pull Pull) error
	ConfigureOutput(initial bool) error
	Set(level bool)
	Get() bool
	Toggle()
	Number() int
}

// Edge selection for IRQ.
type Edge uint8

const (
	EdgeNone Edge = iota
	EdgeRising
	EdgeFalling
	EdgeBoth
)

// IRQPin extends GPIOPin with interrupts.
type IRQPin interface {
	GPIOPin
	SetIRQ(edge Edge, handler func()) error
	ClearIRQ() error
}

// PinFactory supplies GPIO pins by the configured number scheme.
type PinFactory interface {
	ByNumber(n int) (GPIOPin, bool)
}

// Util
func EdgeToString(e Edge) string {
	switch e {
	case EdgeRising:
		return "rising"
	case EdgeFalling:
		return "falling"
	case EdgeBoth:
		return "both"
	default:
		return "none"
	}
}

// ---------------- Serial ----------------

// SerialPort is the RX side of a UART used for the frame uplink.
type SerialPort interface {
	RecvSomeContext(ctx context.Context, p []byte) (int, error)
}

// SerialConfig selects and configures a UART.
type SerialConfig struct {
	ID     string // "uart0" | "uart1", or a device path on host builds
	Baud   uint32
	TX, RX int
}
