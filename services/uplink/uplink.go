// services/uplink/uplink.go
package uplink

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"f1led-go/services/playback"
	"f1led-go/services/vizdata"
	"f1led-go/types"
	"f1led-go/x/timex"
)

// DefaultIdle ends a stream when the sender goes quiet for this long.
const DefaultIdle = 2 * time.Second

// Port is the receive side of a serial link.
type Port interface {
	RecvSomeContext(ctx context.Context, p []byte) (int, error)
}

// Reader adapts a Port to io.Reader. Silence longer than the idle timeout,
// or cancellation of ctx, reads as io.EOF.
type Reader struct {
	ctx  context.Context
	port Port
	idle time.Duration
	n    uint64
}

func NewReader(ctx context.Context, port Port, idle time.Duration) *Reader {
	if idle <= 0 {
		idle = DefaultIdle
	}
	return &Reader{ctx: ctx, port: port, idle: idle}
}

func (r *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if r.ctx.Err() != nil {
		return 0, io.EOF
	}
	rctx, cancel := context.WithTimeout(r.ctx, r.idle)
	n, err := r.port.RecvSomeContext(rctx, p)
	cancel()
	atomic.AddUint64(&r.n, uint64(n))
	if n > 0 {
		return n, nil
	}
	if err == nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return 0, io.EOF
	}
	return 0, err
}

// Bytes received so far.
func (r *Reader) Bytes() uint64 { return atomic.LoadUint64(&r.n) }

// Open returns a playback.OpenFunc that decodes binary frames from port,
// one stream per playback cycle.
func Open(port Port, idle time.Duration) playback.OpenFunc {
	return func(ctx context.Context) (playback.Source, error) {
		return vizdata.StreamSource(NewReader(ctx, port, idle)), nil
	}
}

// Send writes frames to w in wire format, one every rate, until the data
// is exhausted or ctx ends. It returns the number of frames written.
func Send(ctx context.Context, w io.Writer, frames []types.UpdateFrame, rate time.Duration) (int, error) {
	t := time.NewTimer(time.Hour)
	if !t.Stop() {
		timex.DrainTimer(t)
	}
	buf := make([]byte, 0, vizdata.FrameSize)
	for i, f := range frames {
		var err error
		if buf, err = vizdata.AppendFrame(buf[:0], f); err != nil {
			return i, err
		}
		if _, err := w.Write(buf); err != nil {
			return i, err
		}
		if i == len(frames)-1 {
			return i + 1, nil
		}
		timex.ResetTimer(t, rate)
		select {
		case <-ctx.Done():
			return i + 1, ctx.Err()
		case <-t.C:
		}
	}
	return len(frames), nil
}
