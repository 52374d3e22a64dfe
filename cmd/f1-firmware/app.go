package main

import (
	"context"
	"time"

	"f1led-go/bus"
	"f1led-go/drivers/hd108"
	"f1led-go/errcode"
	"f1led-go/hal"
	"f1led-go/services/button"
	"f1led-go/services/config"
	"f1led-go/services/playback"
	"f1led-go/services/registry"
	"f1led-go/services/uplink"
	"f1led-go/services/vizdata"
	"f1led-go/types"
)

// topicReject carries a types.LedUpdate the strip could not place.
var topicReject = bus.T("strip", "reject")

// platformDeps are the board facilities the application is wired onto.
type platformDeps struct {
	OpenSPI    func(hal.SPIConfig) (hal.SPI, error)
	OpenSerial func(hal.SerialConfig) (hal.SerialPort, error)
	Pins       hal.PinFactory
}

// app holds the running pieces; the controller is not started yet.
type app struct {
	strip  *hd108.Device
	button *button.Worker
	ctrl   *playback.Controller
}

// start brings up the strip, the button worker and the playback controller
// for cfg. The button worker runs until ctx ends; the caller runs ctrl.
func start(ctx context.Context, b *bus.Bus, cfg config.Config, d platformDeps) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	spi, err := d.OpenSPI(hal.SPIConfig{
		FrequencyHz: cfg.Strip.FrequencyHz,
		SCK:         cfg.Strip.SCK,
		SDO:         cfg.Strip.SDO,
		Device:      cfg.Strip.Device,
		NumLEDs:     cfg.Strip.NumLEDs,
	})
	if err != nil {
		return nil, err
	}
	stripConn := b.NewConnection("strip")
	strip := hd108.New(spi, hd108.Config{
		NumLEDs:    cfg.Strip.NumLEDs,
		Gain:       hd108.Gain{R: cfg.Strip.Gain.R, G: cfg.Strip.Gain.G, B: cfg.Strip.Gain.B},
		Brightness: cfg.Strip.Brightness,
		OnReject: func(u types.LedUpdate) {
			stripConn.Publish(stripConn.NewMessage(topicReject, u, false))
		},
	})
	// Strip starts dark regardless of power-on state.
	if err := strip.SetOff(); err != nil {
		return nil, err
	}

	open, err := sourceFor(cfg, d)
	if err != nil {
		return nil, err
	}

	pin, ok := d.Pins.ByNumber(cfg.Button.Pin)
	if !ok {
		return nil, errcode.New(errcode.UnknownPin, "app.button", "no such pin")
	}
	irq, ok := pin.(hal.IRQPin)
	if !ok {
		return nil, errcode.New(errcode.Unsupported, "app.button", "pin has no interrupt support")
	}
	signals := make(chan types.Signal, 1)
	btn, err := button.New(button.Config{
		Pin:      irq,
		Debounce: time.Duration(cfg.Button.DebounceMs) * time.Millisecond,
		Out:      signals,
		Conn:     b.NewConnection("button"),
	})
	if err != nil {
		return nil, err
	}
	btn.Start(ctx)

	ctrl := playback.New(playback.Config{
		Strip:      strip,
		Registry:   registry.Default(),
		Open:       open,
		Signals:    signals,
		Conn:       b.NewConnection("playback"),
		UpdateRate: time.Duration(cfg.Playback.UpdateRateMs) * time.Millisecond,
		AutoStart:  cfg.Playback.AutoStart,
	})
	return &app{strip: strip, button: btn, ctrl: ctrl}, nil
}

// sourceFor picks where playback frames come from.
func sourceFor(cfg config.Config, d platformDeps) (playback.OpenFunc, error) {
	switch cfg.Playback.Source {
	case config.SourceSample:
		data := vizdata.Sample()
		if err := vizdata.Validate(data, cfg.Strip.NumLEDs); err != nil {
			return nil, err
		}
		return func(context.Context) (playback.Source, error) {
			return vizdata.SliceSource(data), nil
		}, nil
	case config.SourceUplink:
		port, err := d.OpenSerial(hal.SerialConfig{
			ID:   cfg.Uplink.UART,
			Baud: cfg.Uplink.Baud,
			TX:   cfg.Uplink.TX,
			RX:   cfg.Uplink.RX,
		})
		if err != nil {
			return nil, err
		}
		return uplink.Open(port, time.Duration(cfg.Uplink.IdleMs)*time.Millisecond), nil
	default:
		return nil, errcode.New(errcode.Unsupported, "app.source", cfg.Playback.Source)
	}
}
