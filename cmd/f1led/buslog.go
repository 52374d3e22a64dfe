package main

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"f1led-go/bus"
	"f1led-go/types"
)

// logBus mirrors status topics into the log until ctx ends. The returned
// func waits for queued messages to be written.
func logBus(ctx context.Context, conn *bus.Connection, log zerolog.Logger) (wait func()) {
	var wg sync.WaitGroup
	for _, pattern := range []bus.Topic{
		bus.T("viz", "#"),
		bus.T("button", "#"),
		bus.T("strip", "#"),
		bus.T("config", "error"),
	} {
		sub := conn.Subscribe(pattern)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					drain(sub, log)
					return
				case m, ok := <-sub.Channel():
					if !ok {
						return
					}
					logMessage(log, m)
				}
			}
		}()
	}
	return wg.Wait
}

func drain(sub *bus.Subscription, log zerolog.Logger) {
	for {
		select {
		case m, ok := <-sub.Channel():
			if !ok {
				return
			}
			logMessage(log, m)
		default:
			return
		}
	}
}

func logMessage(log zerolog.Logger, m *bus.Message) {
	switch v := m.Payload.(type) {
	case types.PlaybackStatus:
		log.Info().Str("state", string(v.State)).Str("reason", v.Reason).Uint32("frames", v.Frames).Msg("playback")
	case types.PlaybackError:
		log.Error().Str("code", v.Code).Uint32("frame", v.Frame).Msg(v.Msg)
	case types.FrameApplied:
		log.Debug().Uint32("index", v.Index).Int("updates", v.Updates).Int("dropped", v.Dropped).Msg("frame")
	case types.ButtonPress:
		log.Info().Bool("delivered", v.Delivered).Msg("button")
	case types.LedUpdate:
		log.Warn().Int("index", v.Index).Msg("led outside strip")
	default:
		log.Debug().Interface("topic", m.Topic).Interface("payload", v).Msg("bus")
	}
}
