//go:build !(rp2040 || rp2350)

package platform

import (
	"context"
	"fmt"
	"time"

	"go.bug.st/serial"

	"f1led-go/hal"
)

// pollInterval bounds how long a read blocks before re-checking the context.
const pollInterval = 100 * time.Millisecond

// OpenSerial opens cfg.ID as a device path (e.g. /dev/ttyACM0), 8N1.
func OpenSerial(cfg hal.SerialConfig) (hal.SerialPort, error) {
	mode := &serial.Mode{
		BaudRate: int(cfg.Baud),
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(cfg.ID, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.ID, err)
	}
	if err := port.SetReadTimeout(pollInterval); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", cfg.ID, err)
	}
	return &hostSerialPort{p: port}, nil
}

type hostSerialPort struct{ p serial.Port }

// RecvSomeContext blocks until at least one byte arrives or ctx ends.
func (s *hostSerialPort) RecvSomeContext(ctx context.Context, buf []byte) (int, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		n, err := s.p.Read(buf)
		if err != nil || n > 0 {
			return n, err
		}
	}
}

func (s *hostSerialPort) Close() error { return s.p.Close() }
