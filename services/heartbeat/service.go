package heartbeat

import (
	"context"
	"runtime"
	"time"

	"f1led-go/bus"
	"f1led-go/types"
)

const DefaultInterval = 10 * time.Second

var (
	topicConfigHeartbeat = bus.T("config", "heartbeat")
	TopicHeartbeat       = bus.T("sys", "heartbeat")
)

// Config is the payload retained on config/heartbeat.
type Config struct {
	IntervalMs uint32 `yaml:"interval_ms"`
}

type Service struct {
	// Probe, if set, fills in application counters before each publish.
	Probe func(*types.Heartbeat)

	start time.Time
	seq   uint32
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	defer conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(DefaultInterval)
	defer tick.Stop()

	// loop until context is cancelled, respond to tick and config changes
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			conn.Publish(conn.NewMessage(TopicHeartbeat, s.beat(), false))
		case msg := <-cfgSub.Channel():
			if c, ok := msg.Payload.(Config); ok && c.IntervalMs > 0 {
				tick.Reset(time.Duration(c.IntervalMs) * time.Millisecond)
			}
		}
	}
}

func (s *Service) beat() types.Heartbeat {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	s.seq++
	hb := types.Heartbeat{
		Seq:       s.seq,
		UptimeMs:  time.Since(s.start).Milliseconds(),
		HeapInuse: uint32(ms.HeapInuse),
		Mallocs:   uint32(ms.Mallocs),
		Frees:     uint32(ms.Frees),
	}
	if s.Probe != nil {
		s.Probe(&hb)
	}
	return hb
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	s.start = time.Now()
	go s.serviceLoop(ctx, conn)
	return nil
}
