package playback

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"f1led-go/bus"
	"f1led-go/errcode"
	"f1led-go/services/registry"
	"f1led-go/services/vizdata"
	"f1led-go/types"
)

// mockStrip counts frame writes and SetOff calls separately.
type mockStrip struct {
	mu      sync.Mutex
	writes  int
	offs    int
	last    []types.LedUpdate
	onWrite func(n int) error
}

func (s *mockStrip) ApplyUpdates(u []types.LedUpdate) error {
	s.mu.Lock()
	s.writes++
	n, hook := s.writes, s.onWrite
	s.last = append(s.last[:0], u...)
	s.mu.Unlock()
	if hook != nil {
		return hook(n)
	}
	return nil
}

func (s *mockStrip) SetOff() error {
	s.mu.Lock()
	s.offs++
	s.mu.Unlock()
	return nil
}

func (s *mockStrip) counts() (writes, offs int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes, s.offs
}

func fastData() types.VisualizationData {
	return types.VisualizationData{UpdateRateMs: 1, Frames: vizdata.Sample().Frames}
}

func sliceOpen(data types.VisualizationData) OpenFunc {
	return func(context.Context) (Source, error) { return vizdata.SliceSource(data), nil }
}

type harness struct {
	c      *Controller
	sig    chan types.Signal
	states *bus.Subscription
	errs   *bus.Subscription
	cancel context.CancelFunc
	done   chan error
}

func newHarness(t *testing.T, strip Strip, open OpenFunc) *harness {
	t.Helper()
	b := bus.NewBus(64)
	conn := b.NewConnection("playback")
	obs := b.NewConnection("test")
	h := &harness{
		sig:    make(chan types.Signal, 1),
		states: obs.Subscribe(TopicState),
		errs:   obs.Subscribe(TopicError),
		done:   make(chan error, 1),
	}
	h.c = New(Config{
		Strip:    strip,
		Registry: registry.Default(),
		Open:     open,
		Signals:  h.sig,
		Conn:     conn,
	})
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.done <- h.c.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-h.done
	})

	// initial retained Idle
	if st := h.nextState(t); st.State != types.StateIdle {
		t.Fatalf("initial state %q", st.State)
	}
	return h
}

func (h *harness) nextState(t *testing.T) types.PlaybackStatus {
	t.Helper()
	select {
	case m := <-h.states.Channel():
		return m.Payload.(types.PlaybackStatus)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for state")
	}
	return types.PlaybackStatus{}
}

// cycle presses play and returns the final Idle status.
func (h *harness) cycle(t *testing.T) types.PlaybackStatus {
	t.Helper()
	h.sig <- types.SignalToggle
	var seen []types.PlaybackState
	for {
		st := h.nextState(t)
		seen = append(seen, st.State)
		if st.State == types.StateIdle {
			if n := len(seen); n < 2 || seen[n-2] != types.StateStopping {
				t.Fatalf("Idle not preceded by Stopping: %v", seen)
			}
			return st
		}
	}
}

func TestStopAfterThirdFrame(t *testing.T) {
	strip := &mockStrip{}
	h := newHarness(t, strip, sliceOpen(fastData()))
	strip.mu.Lock()
	strip.onWrite = func(n int) error {
		if n == 3 {
			select {
			case h.sig <- types.SignalToggle:
			default:
			}
		}
		return nil
	}
	strip.mu.Unlock()

	st := h.cycle(t)
	if st.Reason != ReasonButton || st.Frames != 3 {
		t.Fatalf("final status %+v", st)
	}
	writes, offs := strip.counts()
	if writes != 3 || offs != 1 {
		t.Fatalf("writes=%d offs=%d, want 3 and 1", writes, offs)
	}
	if h.c.State() != types.StateIdle {
		t.Fatalf("State() = %q", h.c.State())
	}
}

func TestPlaysToExhaustion(t *testing.T) {
	strip := &mockStrip{}
	h := newHarness(t, strip, sliceOpen(fastData()))

	st := h.cycle(t)
	if st.Reason != ReasonExhausted || st.Frames != 10 {
		t.Fatalf("final status %+v", st)
	}
	writes, offs := strip.counts()
	if writes != 10 || offs != 1 {
		t.Fatalf("writes=%d offs=%d", writes, offs)
	}
	strip.mu.Lock()
	defer strip.mu.Unlock()
	if len(strip.last) != types.NumDrivers {
		t.Fatalf("last frame resolved %d updates", len(strip.last))
	}
}

func TestBusErrorStopsAndRecovers(t *testing.T) {
	strip := &mockStrip{}
	var fail atomic.Bool
	fail.Store(true)
	strip.onWrite = func(n int) error {
		if fail.Load() && n == 2 {
			return errcode.Wrap(errcode.BusWrite, "hd108.tx", errors.New("spi stalled"))
		}
		return nil
	}
	h := newHarness(t, strip, sliceOpen(fastData()))

	st := h.cycle(t)
	if st.Reason != string(errcode.BusWrite) {
		t.Fatalf("final status %+v", st)
	}
	select {
	case m := <-h.errs.Channel():
		pe := m.Payload.(types.PlaybackError)
		if pe.Code != string(errcode.BusWrite) || pe.Frame != 1 {
			t.Fatalf("error report %+v", pe)
		}
	case <-time.After(time.Second):
		t.Fatal("bus error not reported")
	}
	if _, offs := strip.counts(); offs != 1 {
		t.Fatalf("SetOff attempts = %d", offs)
	}

	// next press starts a fresh cycle
	fail.Store(false)
	if st := h.cycle(t); st.Reason != ReasonExhausted {
		t.Fatalf("second cycle ended with %+v", st)
	}
}

func TestParseErrorStops(t *testing.T) {
	raw, err := vizdata.Encode(vizdata.Sample().Frames[:2])
	if err != nil {
		t.Fatal(err)
	}
	raw = append(raw, 1, 2, 3) // truncated third frame
	open := func(context.Context) (Source, error) {
		return vizdata.StreamSource(bytes.NewReader(raw)), nil
	}
	strip := &mockStrip{}
	h := newHarness(t, strip, open)

	st := h.cycle(t)
	if st.Reason != string(errcode.ParseFailed) {
		t.Fatalf("final status %+v", st)
	}
	writes, offs := strip.counts()
	if writes != 2 || offs != 1 {
		t.Fatalf("writes=%d offs=%d", writes, offs)
	}
	m := <-h.errs.Channel()
	if pe := m.Payload.(types.PlaybackError); pe.Frame != 2 {
		t.Fatalf("error frame %d, want 2", pe.Frame)
	}
}

func TestOpenFailureReported(t *testing.T) {
	strip := &mockStrip{}
	open := func(context.Context) (Source, error) {
		return nil, errcode.New(errcode.Timeout, "uplink.open", "no data")
	}
	h := newHarness(t, strip, open)

	if st := h.cycle(t); st.Reason != string(errcode.Timeout) {
		t.Fatalf("final status %+v", st)
	}
	if writes, offs := strip.counts(); writes != 0 || offs != 1 {
		t.Fatalf("writes=%d offs=%d", writes, offs)
	}
}

func TestShutdownDuringPlayback(t *testing.T) {
	strip := &mockStrip{}
	slow := types.VisualizationData{UpdateRateMs: 10_000, Frames: vizdata.Sample().Frames}
	h := newHarness(t, strip, sliceOpen(slow))

	h.sig <- types.SignalToggle
	if st := h.nextState(t); st.State != types.StatePlaying {
		t.Fatalf("state %q", st.State)
	}
	h.cancel()
	select {
	case err := <-h.done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run returned %v", err)
		}
		h.done <- err // for Cleanup
	case <-time.After(time.Second):
		t.Fatal("Run did not return on cancel")
	}
	if _, offs := strip.counts(); offs != 1 {
		t.Fatal("strip not turned off on shutdown")
	}
}

func TestAutoStart(t *testing.T) {
	strip := &mockStrip{}
	c := New(Config{Strip: strip, Registry: registry.Default(), Open: sliceOpen(fastData()), Signals: make(chan types.Signal, 1), AutoStart: true})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	deadline := time.Now().Add(time.Second)
	for {
		if writes, offs := strip.counts(); writes == 10 && offs == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("auto-started cycle did not complete")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestFrameDelay(t *testing.T) {
	rate := 500 * time.Millisecond
	cases := []struct {
		name     string
		cur      uint64
		next     uint64
		haveNext bool
		want     time.Duration
	}{
		{"timestamps", 1000, 1100, true, 100 * time.Millisecond},
		{"no timestamps", 0, 0, true, rate},
		{"non-increasing", 1100, 1000, true, rate},
		{"last frame", 1000, 0, false, rate},
	}
	for _, tc := range cases {
		got := frameDelay(tc.cur, types.UpdateFrame{TimestampMs: tc.next}, tc.haveNext, rate)
		if got != tc.want {
			t.Errorf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

// stallSource yields one frame, then blocks like an idle serial link.
type stallSource struct {
	sent    bool
	rateMs  uint32
	stall   time.Duration
	release chan struct{}
	err     error
}

func (s *stallSource) RateMs() uint32 { return s.rateMs }

func (s *stallSource) Next() (types.UpdateFrame, error) {
	if !s.sent {
		s.sent = true
		return vizdata.Sample().Frames[0], nil
	}
	select {
	case <-s.release:
	case <-time.After(s.stall):
	}
	if s.err != nil {
		return types.UpdateFrame{}, s.err
	}
	return types.UpdateFrame{}, io.EOF
}

func waitWrites(t *testing.T, strip *mockStrip, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for {
		if writes, _ := strip.counts(); writes >= n {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("strip never saw %d writes", n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestStopWhileSourceStalls(t *testing.T) {
	strip := &mockStrip{}
	src := &stallSource{rateMs: 50, stall: 1500 * time.Millisecond, release: make(chan struct{})}
	defer close(src.release)
	h := newHarness(t, strip, func(context.Context) (Source, error) { return src, nil })

	h.sig <- types.SignalToggle
	if st := h.nextState(t); st.State != types.StatePlaying {
		t.Fatalf("state %q", st.State)
	}
	waitWrites(t, strip, 1)

	pressed := time.Now()
	h.sig <- types.SignalToggle
	st := h.nextState(t)
	for st.State != types.StateIdle {
		st = h.nextState(t)
	}
	if elapsed := time.Since(pressed); elapsed > 300*time.Millisecond {
		t.Fatalf("stop took %v with a 50ms update rate", elapsed)
	}
	if st.Reason != ReasonButton || st.Frames != 1 {
		t.Fatalf("final status %+v", st)
	}
	if writes, offs := strip.counts(); writes != 1 || offs != 1 {
		t.Fatalf("writes=%d offs=%d", writes, offs)
	}
}

func TestBadFrameKeepsPreviousInterval(t *testing.T) {
	strip := &mockStrip{}
	src := &stallSource{
		rateMs:  150,
		release: make(chan struct{}),
		err:     errcode.New(errcode.ParseFailed, "vizdata.decode", "short frame"),
	}
	close(src.release) // the bad frame arrives at once
	var shown atomic.Int64
	strip.onWrite = func(int) error {
		shown.Store(time.Now().UnixNano())
		return nil
	}
	h := newHarness(t, strip, func(context.Context) (Source, error) { return src, nil })

	h.sig <- types.SignalToggle
	st := h.nextState(t)
	for st.State != types.StateStopping {
		st = h.nextState(t)
	}
	if held := time.Since(time.Unix(0, shown.Load())); held < 120*time.Millisecond {
		t.Fatalf("frame 0 held %v before stopping, want about 150ms", held)
	}
	if st.Reason != string(errcode.ParseFailed) || st.Frames != 1 {
		t.Fatalf("stopping status %+v", st)
	}
	pe := (<-h.errs.Channel()).Payload.(types.PlaybackError)
	if pe.Frame != 1 {
		t.Fatalf("error frame %d, want 1", pe.Frame)
	}
}
