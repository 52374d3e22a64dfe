// cmd/boardtest/main.go
//go:build rp2040 || rp2350

// boardtest exercises the strip wiring and the button without any telemetry:
// a single LED chases along the chain in each primary colour, then the whole
// strip shows the driver palette. Button presses are counted and printed.
package main

import (
	"context"
	"time"

	"f1led-go/bus"
	"f1led-go/drivers/hd108"
	"f1led-go/hal"
	"f1led-go/hal/platform"
	"f1led-go/services/button"
	"f1led-go/services/config"
	"f1led-go/services/registry"
	"f1led-go/types"
)

// ---------- Configuration ----------

const (
	board = "pico"

	stepDelay    = 40 * time.Millisecond
	paletteDwell = 3 * time.Second

	// Cycles: 0 = loop forever
	cyclesToRun = 0
)

var chaseColours = []struct {
	name string
	c    types.RGBColor
}{
	{"red", types.RGBColor{R: 255}},
	{"green", types.RGBColor{G: 255}},
	{"blue", types.RGBColor{B: 255}},
	{"white", types.RGBColor{R: 255, G: 255, B: 255}},
}

func main() {
	time.Sleep(3 * time.Second)
	ctx := context.Background()
	println("[boardtest] boot …")

	cfg, ok := config.ForBoard(board)
	if !ok {
		println("[boardtest] FAIL: no config for", board)
		return
	}

	spi, err := platform.OpenSPI(hal.SPIConfig{
		FrequencyHz: cfg.Strip.FrequencyHz,
		SCK:         cfg.Strip.SCK,
		SDO:         cfg.Strip.SDO,
	})
	if err != nil {
		println("[boardtest] FAIL: spi:", err.Error())
		return
	}
	strip := hd108.New(spi, hd108.Config{NumLEDs: cfg.Strip.NumLEDs, Brightness: 64})
	n := strip.NumLEDs()

	b := bus.NewBus(4)
	presses := b.NewConnection("ui").Subscribe(button.TopicPress)
	startButton(ctx, b, cfg)

	buf := make([]types.LedUpdate, n)
	for cycle := 1; cyclesToRun == 0 || cycle <= cyclesToRun; cycle++ {
		println("[boardtest] cycle", cycle)

		for _, cc := range chaseColours {
			println("[boardtest] chase", cc.name)
			for i := 0; i < n; i++ {
				u := [1]types.LedUpdate{{Index: i, R: cc.c.R, G: cc.c.G, B: cc.c.B}}
				if err := strip.ApplyUpdates(u[:]); err != nil {
					println("[boardtest] FAIL: led", i, err.Error())
				}
				time.Sleep(stepDelay)
			}
			drainPresses(presses)
		}

		println("[boardtest] palette")
		drivers := registry.Default().All()
		for i := range buf {
			c := drivers[i%len(drivers)].Color
			buf[i] = types.LedUpdate{Index: i, R: c.R, G: c.G, B: c.B}
		}
		if err := strip.ApplyUpdates(buf); err != nil {
			println("[boardtest] FAIL: palette", err.Error())
		}
		time.Sleep(paletteDwell)
		drainPresses(presses)

		_ = strip.SetOff()
		st := strip.Stats()
		println("[boardtest] frames:", st.Frames, "bus errors:", st.BusErrors)
	}
	println("[boardtest] done")
}

// startButton counts presses; the signal channel is only drained here.
func startButton(ctx context.Context, b *bus.Bus, cfg config.Config) {
	pin, ok := platform.DefaultPinFactory().ByNumber(cfg.Button.Pin)
	if !ok {
		println("[boardtest] no button pin")
		return
	}
	irq, ok := pin.(hal.IRQPin)
	if !ok {
		println("[boardtest] button pin has no IRQ")
		return
	}
	sig := make(chan types.Signal, 1)
	w, err := button.New(button.Config{
		Pin:      irq,
		Debounce: time.Duration(cfg.Button.DebounceMs) * time.Millisecond,
		Out:      sig,
		Conn:     b.NewConnection("button"),
	})
	if err != nil {
		println("[boardtest] button:", err.Error())
		return
	}
	w.Start(ctx)
	go func() {
		for range sig {
		}
	}()
}

func drainPresses(sub *bus.Subscription) {
	for {
		select {
		case m := <-sub.Channel():
			if p, ok := m.Payload.(types.ButtonPress); ok {
				println("[boardtest] button press at", p.TSms, "ms")
			}
		default:
			return
		}
	}
}
