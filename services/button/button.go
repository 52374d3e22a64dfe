// services/button/button.go
package button

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"f1led-go/bus"
	"f1led-go/hal"
	"f1led-go/types"
	"f1led-go/x/timex"
)

// DefaultDebounce is the re-arm delay after an accepted press.
const DefaultDebounce = 400 * time.Millisecond

// TopicPress carries a types.ButtonPress for every accepted edge.
var TopicPress = bus.T("button", "press")

type Config struct {
	Pin      hal.IRQPin
	Debounce time.Duration       // DefaultDebounce if zero
	Out      chan<- types.Signal // single-slot playback signal channel
	Conn     *bus.Connection     // optional status publisher
	ISRBuf   int                 // ISR queue depth, default 8
}

// Worker turns falling edges on an active-low, pulled-up pin into
// playback signals. The ISR only enqueues; debounce runs on the worker
// goroutine.
type Worker struct {
	pin      hal.IRQPin
	debounce time.Duration
	out      chan<- types.Signal
	conn     *bus.Connection

	// Written by ISR; MUST NOT block the ISR:
	isrQ    chan struct{}
	stopped chan struct{}
	once    sync.Once

	lastEvent time.Time

	drops     uint32 // ISR queue overflow
	coalesced uint32 // presses folded into a pending signal
	accepted  uint32
}

// New configures the pin as a pulled-up input and installs the IRQ handler.
func New(cfg Config) (*Worker, error) {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.ISRBuf <= 0 {
		cfg.ISRBuf = 8
	}
	w := &Worker{
		pin:      cfg.Pin,
		debounce: cfg.Debounce,
		out:      cfg.Out,
		conn:     cfg.Conn,
		isrQ:     make(chan struct{}, cfg.ISRBuf),
		stopped:  make(chan struct{}),
	}
	if err := cfg.Pin.ConfigureInput(hal.PullUp); err != nil {
		return nil, err
	}
	// ISR handler: non-blocking channel send only.
	handler := func() {
		select {
		case w.isrQ <- struct{}{}:
		default:
			atomic.AddUint32(&w.drops, 1)
		}
	}
	if err := cfg.Pin.SetIRQ(hal.EdgeFalling, handler); err != nil {
		return nil, err
	}
	return w, nil
}

// Start runs the debounce loop until ctx ends.
func (w *Worker) Start(ctx context.Context) {
	go func() {
		defer close(w.stopped)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.isrQ:
				w.handleEdge(time.Now())
			}
		}
	}()
}

// Done is closed once the worker goroutine has exited.
func (w *Worker) Done() <-chan struct{} { return w.stopped }

// Close detaches the IRQ handler. Safe to call more than once.
func (w *Worker) Close() {
	w.once.Do(func() { _ = w.pin.ClearIRQ() })
}

func (w *Worker) handleEdge(now time.Time) {
	// Disarmed until the debounce interval has elapsed.
	if !w.lastEvent.IsZero() && now.Sub(w.lastEvent) < w.debounce {
		return
	}
	w.lastEvent = now
	atomic.AddUint32(&w.accepted, 1)

	delivered := true
	select {
	case w.out <- types.SignalToggle:
	default:
		// a signal is already pending; this press is absorbed by it
		delivered = false
		atomic.AddUint32(&w.coalesced, 1)
	}

	if w.conn != nil {
		w.conn.Publish(w.conn.NewMessage(TopicPress, types.ButtonPress{Delivered: delivered, TSms: timex.NowMs()}, false))
	}
}

func (w *Worker) Drops() uint32     { return atomic.LoadUint32(&w.drops) }
func (w *Worker) Coalesced() uint32 { return atomic.LoadUint32(&w.coalesced) }
func (w *Worker) Accepted() uint32  { return atomic.LoadUint32(&w.accepted) }
