package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"f1led-go/bus"
	"f1led-go/drivers/hd108"
	"f1led-go/hal"
	"f1led-go/hal/platform"
	"f1led-go/services/button"
	"f1led-go/services/playback"
	"f1led-go/services/preview"
	"f1led-go/services/registry"
	"f1led-go/services/vizdata"
	"f1led-go/types"
)

type simulateFlags struct {
	listen    string
	columns   int
	noConsole bool
	autoStart bool
	once      bool
}

func newSimulateCmd(o *options) *cobra.Command {
	var f simulateFlags
	cmd := &cobra.Command{
		Use:   "simulate [file]",
		Short: "Play a dataset through the firmware pipeline on this machine",
		Long: `Simulate runs the strip driver, button worker and playback controller
exactly as the firmware wires them. The strip bus is simulated and decoded to a
console preview and, with --listen, to websocket clients on /ws. When the config
names an spidev device the real strip is driven instead.

Press Enter to act as the button.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, o, f, args)
		},
	}
	cmd.Flags().StringVar(&f.listen, "listen", "", "Serve the websocket preview on this address (e.g. :8080)")
	cmd.Flags().IntVar(&f.columns, "columns", 48, "Console preview cells per row")
	cmd.Flags().BoolVar(&f.noConsole, "no-console", false, "Disable the console preview")
	cmd.Flags().BoolVar(&f.autoStart, "autostart", true, "Start playing without a button press")
	cmd.Flags().BoolVar(&f.once, "once", false, "Exit after the first playback cycle")
	return cmd
}

func runSimulate(cmd *cobra.Command, o *options, f simulateFlags, args []string) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	data, name, err := datasetFor(args, cfg.Playback.UpdateRateMs)
	if err != nil {
		return err
	}
	if err := vizdata.Validate(data, cfg.Strip.NumLEDs); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var sinks []platform.Sink
	if !f.noConsole {
		fmt.Fprintln(cmd.OutOrStdout(), preview.Legend(registry.Default().All()))
		sinks = append(sinks, preview.NewConsole(cmd.OutOrStdout(), f.columns))
	}
	if f.listen != "" {
		hub := preview.NewHub(o.log)
		sinks = append(sinks, hub)
		srv := &http.Server{Addr: f.listen, Handler: hub.Handler()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				o.log.Error().Err(err).Msg("preview server")
			}
		}()
		defer srv.Close()
		o.log.Info().Str("addr", f.listen).Msg("preview on /ws")
	}

	var spi hal.SPI
	if cfg.Strip.Device != "" {
		if spi, err = platform.OpenSPI(hal.SPIConfig{
			FrequencyHz: cfg.Strip.FrequencyHz,
			Device:      cfg.Strip.Device,
			NumLEDs:     cfg.Strip.NumLEDs,
		}); err != nil {
			return err
		}
	} else {
		spi = platform.NewSimSPI(cfg.Strip.NumLEDs, sinks...)
	}

	b := bus.NewBus(32)
	waitLog := logBus(ctx, b.NewConnection("log"), o.log)
	stripConn := b.NewConnection("strip")
	strip := hd108.New(spi, hd108.Config{
		NumLEDs:    cfg.Strip.NumLEDs,
		Gain:       hd108.Gain{R: cfg.Strip.Gain.R, G: cfg.Strip.Gain.G, B: cfg.Strip.Gain.B},
		Brightness: cfg.Strip.Brightness,
		OnReject: func(u types.LedUpdate) {
			stripConn.Publish(stripConn.NewMessage(bus.T("strip", "reject"), u, false))
		},
	})

	// Enter on stdin drives a fake button pin through the real debounce path.
	pin := platform.NewFakePin(cfg.Button.Pin, true)
	signals := make(chan types.Signal, 1)
	btn, err := button.New(button.Config{
		Pin:      pin,
		Debounce: time.Duration(cfg.Button.DebounceMs) * time.Millisecond,
		Out:      signals,
		Conn:     b.NewConnection("button"),
	})
	if err != nil {
		return err
	}
	btn.Start(ctx)
	go func() {
		sc := bufio.NewScanner(cmd.InOrStdin())
		for sc.Scan() {
			pin.Press()
		}
	}()

	ctrl := playback.New(playback.Config{
		Strip:    strip,
		Registry: registry.Default(),
		Open: func(context.Context) (playback.Source, error) {
			return vizdata.SliceSource(data), nil
		},
		Signals:    signals,
		Conn:       b.NewConnection("playback"),
		UpdateRate: time.Duration(cfg.Playback.UpdateRateMs) * time.Millisecond,
		AutoStart:  f.autoStart,
	})
	if f.once {
		go cancelAfterCycle(ctx, b.NewConnection("once").Subscribe(playback.TopicState), cancel)
	}

	o.log.Info().Str("dataset", name).Int("frames", len(data.Frames)).Msg("simulating")
	err = ctrl.Run(ctx)
	cancel()
	waitLog()
	st := strip.Stats()
	o.log.Info().Uint32("frames", st.Frames).Uint32("rejected", st.Rejected).Uint32("bus_errors", st.BusErrors).Msg("strip")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// cancelAfterCycle cancels once playback has returned to idle after playing.
func cancelAfterCycle(ctx context.Context, sub *bus.Subscription, cancel context.CancelFunc) {
	defer sub.Unsubscribe()
	played := false
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-sub.Channel():
			st, _ := m.Payload.(types.PlaybackStatus)
			switch st.State {
			case types.StatePlaying:
				played = true
			case types.StateIdle:
				if played {
					cancel()
					return
				}
			}
		}
	}
}
