//go:build rp2040 || rp2350

// uart-test decodes binary frames arriving on the uplink UART and prints
// them, without touching the strip. Use it to check `f1led stream` wiring.
package main

import (
	"context"
	"errors"
	"io"
	"time"

	"f1led-go/hal"
	"f1led-go/hal/platform"
	"f1led-go/services/config"
	"f1led-go/services/registry"
	"f1led-go/services/uplink"
	"f1led-go/services/vizdata"
)

const board = "pico"

func main() {
	println("[uart] boot …")
	time.Sleep(1500 * time.Millisecond)
	ctx := context.Background()

	cfg, _ := config.ForBoard(board)
	port, err := platform.OpenSerial(hal.SerialConfig{
		ID:   cfg.Uplink.UART,
		Baud: cfg.Uplink.Baud,
		TX:   cfg.Uplink.TX,
		RX:   cfg.Uplink.RX,
	})
	if err != nil {
		println("[uart] FAIL: open", cfg.Uplink.UART, err.Error())
		return
	}
	println("[uart] listening on", cfg.Uplink.UART, "baud", cfg.Uplink.Baud)

	reg := registry.Default()
	idle := time.Duration(cfg.Uplink.IdleMs) * time.Millisecond
	for session := 1; ; session++ {
		r := uplink.NewReader(ctx, port, idle)
		dec := vizdata.NewDecoder(r)
		for {
			f, err := dec.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				println("[uart] decode error:", err.Error())
				break
			}
			print("[uart] #", dec.Frames(), " drivers=", len(f.Drivers))
			for i, p := range f.Drivers {
				if i == 3 {
					print(" …")
					break
				}
				code := "?"
				if d, ok := reg.Lookup(p.Driver); ok {
					code = d.Code
				}
				print(" ", code, "@", p.LED+1)
			}
			println()
		}
		if dec.Frames() > 0 || r.Bytes() > 0 {
			println("[uart] session", session, "ended: frames", dec.Frames(), "bytes", r.Bytes())
		}
	}
}
