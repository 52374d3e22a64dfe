//go:build !(rp2040 || rp2350)

package platform

import (
	"sync"

	"f1led-go/drivers/hd108"
	"f1led-go/types"
)

// Sink receives every strip image decoded by SimSPI.
type Sink interface {
	Show(colors []types.RGBColor)
}

// SimSPI is an in-memory strip bus. It records transmissions and, when the
// strip length is known, decodes each one and forwards it to the sinks.
type SimSPI struct {
	mu      sync.Mutex
	n       int
	sinks   []Sink
	txs     int
	bad     int
	last    []byte
	colors  []types.RGBColor
	failErr error
	onTx    func(count int)
}

func NewSimSPI(numLEDs int, sinks ...Sink) *SimSPI {
	return &SimSPI{n: numLEDs, sinks: sinks}
}

func (s *SimSPI) Tx(w, r []byte) error {
	s.mu.Lock()
	s.txs++
	count, hook, err := s.txs, s.onTx, s.failErr
	if err == nil {
		s.last = append(s.last[:0], w...)
		if s.n > 0 {
			if colors, derr := hd108.DecodeStrip(w, s.n); derr == nil {
				s.colors = colors
				for _, k := range s.sinks {
					k.Show(colors)
				}
			} else {
				s.bad++
			}
		}
	}
	s.mu.Unlock()
	if hook != nil {
		hook(count)
	}
	return err
}

func (s *SimSPI) Transfer(b byte) (byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return 0, s.failErr
}

// Fail makes every following Tx return err (nil restores the bus).
func (s *SimSPI) Fail(err error) {
	s.mu.Lock()
	s.failErr = err
	s.mu.Unlock()
}

// OnTx registers a hook run after each Tx with the running count.
func (s *SimSPI) OnTx(fn func(count int)) {
	s.mu.Lock()
	s.onTx = fn
	s.mu.Unlock()
}

// Transactions counts Tx calls, failed ones included.
func (s *SimSPI) Transactions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txs
}

// Undecodable counts transmissions that did not parse as a strip image.
func (s *SimSPI) Undecodable() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bad
}

// Last returns a copy of the last successful transmission.
func (s *SimSPI) Last() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.last...)
}

// Colors returns the last decoded strip image.
func (s *SimSPI) Colors() []types.RGBColor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.RGBColor(nil), s.colors...)
}
