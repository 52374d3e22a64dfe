//go:build !(rp2040 || rp2350)

package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"f1led-go/bus"
	"f1led-go/drivers/hd108"
	"f1led-go/errcode"
	"f1led-go/hal"
	"f1led-go/hal/platform"
	"f1led-go/services/config"
	"f1led-go/services/playback"
	"f1led-go/types"
)

type rig struct {
	sim  *platform.SimSPI
	pins *platform.HostPinFactory
	deps platformDeps
}

func newRig(n int) *rig {
	r := &rig{sim: platform.NewSimSPI(n), pins: &platform.HostPinFactory{}}
	r.deps = platformDeps{
		OpenSPI:    func(hal.SPIConfig) (hal.SPI, error) { return r.sim, nil },
		OpenSerial: func(hal.SerialConfig) (hal.SerialPort, error) { return nil, errors.New("no uart") },
		Pins:       r.pins,
	}
	return r
}

func hostConfig() config.Config {
	cfg, _ := config.ForBoard("host")
	cfg.Button.DebounceMs = 10
	return cfg
}

func waitState(t *testing.T, sub *bus.Subscription, want types.PlaybackState) types.PlaybackStatus {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case m := <-sub.Channel():
			st := m.Payload.(types.PlaybackStatus)
			if st.State == want {
				return st
			}
		case <-deadline:
			t.Fatalf("timeout waiting for state %s", want)
		}
	}
}

func TestButtonStartsAndStopsSample(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := newRig(hd108.DefaultNumLEDs)
	b := bus.NewBus(32)
	states := b.NewConnection("test").Subscribe(playback.TopicState)

	a, err := start(ctx, b, hostConfig(), r.deps)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if r.sim.Transactions() != 1 {
		t.Fatalf("strip should be blanked once at start, got %d transactions", r.sim.Transactions())
	}
	go a.ctrl.Run(ctx)
	waitState(t, states, types.StateIdle)

	pin, ok := r.pins.Get(hostConfig().Button.Pin)
	if !ok || !pin.IRQArmed() {
		t.Fatal("button pin should have an IRQ installed")
	}

	pin.Press()
	waitState(t, states, types.StatePlaying)

	time.Sleep(50 * time.Millisecond)
	lit := 0
	for _, c := range r.sim.Colors() {
		if c != types.Off {
			lit++
		}
	}
	if lit == 0 {
		t.Fatal("first sample frame should light the strip")
	}

	pin.Press()
	st := waitState(t, states, types.StateIdle)
	if st.Reason != playback.ReasonButton {
		t.Fatalf("stop reason = %q, want %q", st.Reason, playback.ReasonButton)
	}
	for i, c := range r.sim.Colors() {
		if c != types.Off {
			t.Fatalf("LED %d still lit after stop", i)
		}
	}
}

func TestStartRejectsBadConfig(t *testing.T) {
	r := newRig(8)
	cfg := hostConfig()
	cfg.Strip.NumLEDs = 0
	_, err := start(context.Background(), bus.NewBus(4), cfg, r.deps)
	if errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("err = %v, want invalid_params", err)
	}
}

func TestSourceSelection(t *testing.T) {
	r := newRig(8)
	cfg := hostConfig()

	cfg.Playback.Source = config.SourceFile
	if _, err := sourceFor(cfg, r.deps); errcode.Of(err) != errcode.Unsupported {
		t.Fatalf("file source: err = %v, want unsupported", err)
	}

	cfg.Playback.Source = config.SourceUplink
	if _, err := sourceFor(cfg, r.deps); err == nil {
		t.Fatal("uplink source should surface the serial open error")
	}

	// Sample LEDs run up to 96; a shorter strip cannot show them.
	cfg.Playback.Source = config.SourceSample
	cfg.Strip.NumLEDs = 8
	if _, err := sourceFor(cfg, r.deps); err == nil {
		t.Fatal("sample data should not validate against an 8 LED strip")
	}
}
