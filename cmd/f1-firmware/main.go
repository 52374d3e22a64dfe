package main

import (
	"context"
	"time"

	"f1led-go/bus"
	"f1led-go/hal/platform"
	"f1led-go/services/config"
	"f1led-go/services/heartbeat"
	"f1led-go/types"
)

// tiny helpers (no fmt)
func printTopicWith(prefix string, t bus.Topic) {
	print(prefix)
	print(" ")
	for i := 0; i < t.Len(); i++ {
		if i > 0 {
			print("/")
		}
		switch v := t.At(i).(type) {
		case string:
			print(v)
		case int:
			print(v)
		default:
			print("?")
		}
	}
}

func printPayload(p any) {
	switch v := p.(type) {
	case types.PlaybackStatus:
		print(" state=", string(v.State), " reason=", v.Reason, " frames=", v.Frames)
	case types.PlaybackError:
		print(" code=", v.Code, " frame=", v.Frame, " msg=", v.Msg)
	case types.FrameApplied:
		print(" index=", v.Index, " updates=", v.Updates, " dropped=", v.Dropped)
	case types.ButtonPress:
		print(" delivered=", v.Delivered)
	case types.LedUpdate:
		print(" index=", v.Index)
	case types.Heartbeat:
		print(" seq=", v.Seq, " up_ms=", v.UptimeMs, " heap=", v.HeapInuse, " mallocs=", v.Mallocs, " frees=", v.Frees)
		print(" strip=", v.StripFrames, "/", v.StripRejected, "/", v.StripBusErrors, " btn_drops=", v.ButtonDrops)
	case string:
		print(" ", v)
	}
}

func main() {
	time.Sleep(bootDelay)
	ctx := context.Background()

	println("[main] bootstrapping bus …")
	b := bus.NewBus(8)
	uiConn := b.NewConnection("ui")

	for _, pattern := range []bus.Topic{
		bus.T("viz", "#"),
		bus.T("button", "#"),
		bus.T("strip", "#"),
		bus.T("config", "error"),
		bus.T("sys", "#"),
	} {
		mon := uiConn.Subscribe(pattern)
		go func() {
			for m := range mon.Channel() {
				printTopicWith("[monitor] <-", m.Topic)
				printPayload(m.Payload)
				println()
			}
		}()
	}

	println("[main] board:", board)
	cfg, ok := config.ForBoard(board)
	if !ok {
		println("[main] no embedded config for board")
		halt()
	}
	config.NewConfigService().Start(context.WithValue(ctx, config.CtxBoardKey, board), b.NewConnection("config"))

	a, err := start(ctx, b, cfg, platformDeps{
		OpenSPI:    platform.OpenSPI,
		OpenSerial: platform.OpenSerial,
		Pins:       platform.DefaultPinFactory(),
	})
	if err != nil {
		println("[main] start failed:", err.Error())
		halt()
	}

	hb := &heartbeat.Service{Probe: func(h *types.Heartbeat) {
		st := a.strip.Stats()
		h.StripFrames, h.StripRejected, h.StripBusErrors = st.Frames, st.Rejected, st.BusErrors
		h.ButtonDrops = a.button.Drops()
	}}
	_ = hb.Start(ctx, b.NewConnection("heartbeat"))

	println("[main] waiting for the button …")
	_ = a.ctrl.Run(ctx)
}

func halt() {
	for {
		time.Sleep(time.Hour)
	}
}
