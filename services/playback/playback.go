// services/playback/playback.go
package playback

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"f1led-go/bus"
	"f1led-go/errcode"
	"f1led-go/services/resolve"
	"f1led-go/types"
	"f1led-go/x/timex"
)

// DefaultUpdateRate applies when neither frames nor source carry a cadence.
const DefaultUpdateRate = 100 * time.Millisecond

// Bus topics.
var (
	TopicState = bus.T("viz", "state") // retained types.PlaybackStatus
	TopicError = bus.T("viz", "error") // types.PlaybackError
	TopicFrame = bus.T("viz", "frame") // types.FrameApplied
)

// Stop reasons carried in PlaybackStatus.Reason.
const (
	ReasonButton    = "button"
	ReasonExhausted = "exhausted"
	ReasonShutdown  = "shutdown"
)

// Strip is the output side of playback.
type Strip interface {
	ApplyUpdates(updates []types.LedUpdate) error
	SetOff() error
}

// Source yields frames in order, io.EOF when exhausted. Malformed data is
// reported with an error carrying errcode.ParseFailed. Next runs on its own
// goroutine so a blocked read cannot delay a stop.
type Source interface {
	Next() (types.UpdateFrame, error)
}

// OpenFunc starts a fresh pass over the data for one playback cycle.
type OpenFunc func(ctx context.Context) (Source, error)

type rater interface{ RateMs() uint32 }

type Config struct {
	Strip      Strip
	Registry   resolve.Lookup
	Open       OpenFunc
	Signals    <-chan types.Signal
	Conn       *bus.Connection // optional status publisher
	UpdateRate time.Duration   // fallback cadence, DefaultUpdateRate if zero
	AutoStart  bool            // begin the first cycle without a signal
}

// Controller runs Idle -> Playing -> Stopping -> Idle until its context ends.
// It is the only user of the strip.
type Controller struct {
	cfg     Config
	scratch []types.LedUpdate
	timer   *time.Timer

	mu     sync.Mutex
	state  types.PlaybackState
	frames uint32
}

func New(cfg Config) *Controller {
	if cfg.UpdateRate <= 0 {
		cfg.UpdateRate = DefaultUpdateRate
	}
	t := time.NewTimer(time.Hour)
	if !t.Stop() {
		timex.DrainTimer(t)
	}
	return &Controller{
		cfg:     cfg,
		scratch: make([]types.LedUpdate, 0, types.NumDrivers),
		timer:   t,
		state:   types.StateIdle,
	}
}

// State is safe to call from any goroutine.
func (c *Controller) State() types.PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Run blocks until ctx ends and returns ctx.Err().
func (c *Controller) Run(ctx context.Context) error {
	c.setState(types.StateIdle, "")
	auto := c.cfg.AutoStart
	for {
		if !auto {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-c.cfg.Signals:
			}
		}
		auto = false

		reason := c.play(ctx)
		c.setState(types.StateStopping, reason)
		// Best effort: the error, if any, has already been reported.
		_ = c.cfg.Strip.SetOff()
		c.setState(types.StateIdle, reason)

		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// play runs one cycle and returns why it ended.
func (c *Controller) play(ctx context.Context) string {
	c.mu.Lock()
	c.frames = 0
	c.mu.Unlock()

	cctx, cancel := context.WithCancel(ctx)
	defer cancel()

	src, err := c.cfg.Open(cctx)
	if err != nil {
		return c.fail(err, 0)
	}
	c.setState(types.StatePlaying, "")

	rate := c.cfg.UpdateRate
	if r, ok := src.(rater); ok && r.RateMs() > 0 {
		rate = time.Duration(r.RateMs()) * time.Millisecond
	}

	results := make(chan fetched)
	go prefetch(cctx, src, results)

	first, reason := c.await(ctx, results)
	if reason != "" {
		return reason
	}
	if errors.Is(first.err, io.EOF) {
		return ReasonExhausted
	}
	if first.err != nil {
		return c.fail(first.err, 0)
	}
	cur := first.frame

	for index := uint32(0); ; index++ {
		updates := resolve.ResolveInto(c.scratch, cur, c.cfg.Registry)
		if err := c.cfg.Strip.ApplyUpdates(updates); err != nil {
			return c.fail(err, index)
		}
		c.frameApplied(index, len(updates), len(cur.Drivers)-len(updates))
		shown := time.Now()

		next, reason := c.await(ctx, results)
		if reason != "" {
			return reason
		}
		// Frame index keeps its display interval even when the read failed.
		d := frameDelay(cur.TimestampMs, next.frame, next.err == nil, rate)
		if reason := c.wait(ctx, d-time.Since(shown)); reason != "" {
			return reason
		}
		select {
		case <-c.cfg.Signals:
			return ReasonButton
		default:
		}

		switch {
		case errors.Is(next.err, io.EOF):
			return ReasonExhausted
		case next.err != nil:
			return c.fail(next.err, index+1)
		}
		cur = next.frame
	}
}

// fetched is one Source.Next result.
type fetched struct {
	frame types.UpdateFrame
	err   error
}

// prefetch owns src for the cycle and closes it when done. out is
// unbuffered: a frame is read only once the previous one has been taken.
func prefetch(ctx context.Context, src Source, out chan<- fetched) {
	if cl, ok := src.(io.Closer); ok {
		defer cl.Close()
	}
	for {
		f, err := src.Next()
		select {
		case out <- fetched{frame: f, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

// await blocks for the next source result. A stop press or shutdown ends
// the wait even while the source itself is blocked.
func (c *Controller) await(ctx context.Context, results <-chan fetched) (fetched, string) {
	select {
	case r := <-results:
		return r, ""
	case <-c.cfg.Signals:
		return fetched{}, ReasonButton
	case <-ctx.Done():
		return fetched{}, ReasonShutdown
	}
}

// frameDelay uses the timestamp delta when both frames carry increasing
// timestamps, else the cycle rate.
func frameDelay(cur uint64, next types.UpdateFrame, haveNext bool, rate time.Duration) time.Duration {
	if haveNext && cur != 0 && next.TimestampMs > cur {
		return time.Duration(next.TimestampMs-cur) * time.Millisecond
	}
	return rate
}

// wait sleeps for d and returns a stop reason if interrupted.
func (c *Controller) wait(ctx context.Context, d time.Duration) string {
	if d <= 0 {
		return ""
	}
	timex.ResetTimer(c.timer, d)
	select {
	case <-c.timer.C:
		return ""
	case <-c.cfg.Signals:
		c.stopTimer()
		return ReasonButton
	case <-ctx.Done():
		c.stopTimer()
		return ReasonShutdown
	}
}

func (c *Controller) stopTimer() {
	if !c.timer.Stop() {
		timex.DrainTimer(c.timer)
	}
}

// ---- status ----

func (c *Controller) setState(s types.PlaybackState, reason string) {
	c.mu.Lock()
	c.state = s
	frames := c.frames
	c.mu.Unlock()
	c.publish(TopicState, types.PlaybackStatus{State: s, Reason: reason, Frames: frames, TSms: timex.NowMs()}, true)
}

func (c *Controller) frameApplied(index uint32, updates, dropped int) {
	c.mu.Lock()
	c.frames = index + 1
	c.mu.Unlock()
	c.publish(TopicFrame, types.FrameApplied{Index: index, Updates: updates, Dropped: dropped, TSms: timex.NowMs()}, false)
}

// fail reports err and returns its code as the stop reason.
func (c *Controller) fail(err error, frame uint32) string {
	code := errcode.Of(err)
	c.publish(TopicError, types.PlaybackError{Code: string(code), Frame: frame, Msg: err.Error(), TSms: timex.NowMs()}, false)
	return string(code)
}

func (c *Controller) publish(t bus.Topic, payload any, retained bool) {
	if c.cfg.Conn == nil {
		return
	}
	c.cfg.Conn.Publish(c.cfg.Conn.NewMessage(t, payload, retained))
}
