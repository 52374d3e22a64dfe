// Package periphspi exposes a Linux spidev port as a strip bus, so the same
// hd108 driver runs on a single-board computer.
package periphspi

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"f1led-go/errcode"
)

// DefaultFrequencyHz is used when the caller passes zero.
const DefaultFrequencyHz = 8_000_000

// Port implements tinygo.org/x/drivers.SPI on top of a periph connection.
type Port struct {
	mu     sync.Mutex
	port   spi.PortCloser
	conn   spi.Conn
	maxTx  int
	single [1]byte
}

// Open initialises periph host drivers and opens the named port ("" picks
// the first one registered, e.g. /dev/spidev0.0).
func Open(name string, hz uint32) (*Port, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	p, err := spireg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", name, err)
	}
	port, err := New(p, hz)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	return port, nil
}

// New connects an already opened port in mode 0, 8 bits per word.
func New(p spi.PortCloser, hz uint32) (*Port, error) {
	if hz == 0 {
		hz = DefaultFrequencyHz
	}
	c, err := p.Connect(physic.Frequency(hz)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("connect spi: %w", err)
	}
	out := &Port{port: p, conn: c}
	if l, ok := c.(conn.Limits); ok {
		out.maxTx = l.MaxTxSize()
	}
	return out, nil
}

// Tx writes w as one transfer. A strip frame larger than the kernel's
// transfer limit is rejected unsent; raise the spidev bufsiz module
// parameter for long strips.
func (p *Port) Tx(w, r []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(r) == 0 && p.maxTx > 0 && len(w) > p.maxTx {
		return errcode.New(errcode.Unsupported, "periphspi.tx",
			fmt.Sprintf("frame of %d bytes exceeds spidev limit of %d (spidev.bufsiz)", len(w), p.maxTx))
	}
	return p.conn.Tx(w, r)
}

func (p *Port) Transfer(b byte) (byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var in [1]byte
	p.single[0] = b
	err := p.conn.Tx(p.single[:], in[:])
	return in[0], err
}

func (p *Port) Close() error { return p.port.Close() }

func (p *Port) String() string { return p.conn.String() }
