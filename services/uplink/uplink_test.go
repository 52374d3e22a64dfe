package uplink

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"f1led-go/errcode"
	"f1led-go/services/vizdata"
)

// chunkPort hands out data in fixed-size chunks, then blocks until ctx ends.
type chunkPort struct {
	data  []byte
	chunk int
	fail  error
}

func (p *chunkPort) RecvSomeContext(ctx context.Context, b []byte) (int, error) {
	if len(p.data) == 0 {
		if p.fail != nil {
			return 0, p.fail
		}
		<-ctx.Done()
		return 0, ctx.Err()
	}
	n := p.chunk
	if n > len(p.data) {
		n = len(p.data)
	}
	n = copy(b, p.data[:n])
	p.data = p.data[n:]
	return n, nil
}

func TestStreamDecodesAcrossChunks(t *testing.T) {
	frames := vizdata.Sample().Frames
	raw, err := vizdata.Encode(frames)
	if err != nil {
		t.Fatal(err)
	}
	port := &chunkPort{data: raw, chunk: 7}

	src, err := Open(port, 20*time.Millisecond)(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	var n int
	for {
		_, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("frame %d: %v", n, err)
		}
		n++
	}
	if n != len(frames) {
		t.Fatalf("decoded %d frames, want %d", n, len(frames))
	}
}

func TestIdleMidFrameIsParseError(t *testing.T) {
	raw, _ := vizdata.Encode(vizdata.Sample().Frames[:1])
	port := &chunkPort{data: raw[:25], chunk: 64}
	src := vizdata.StreamSource(NewReader(context.Background(), port, 10*time.Millisecond))

	if _, err := src.Next(); errcode.Of(err) != errcode.ParseFailed {
		t.Fatalf("want parse error, got %v", err)
	}
}

func TestReaderPassesPortErrors(t *testing.T) {
	boom := errors.New("uart overrun")
	r := NewReader(context.Background(), &chunkPort{fail: boom}, time.Second)
	if _, err := r.Read(make([]byte, 4)); !errors.Is(err, boom) {
		t.Fatalf("got %v", err)
	}
}

func TestReaderCancelledIsEOF(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewReader(ctx, &chunkPort{data: []byte{1}}, time.Second)
	if _, err := r.Read(make([]byte, 4)); err != io.EOF {
		t.Fatalf("got %v", err)
	}
}

func TestSendPacesFrames(t *testing.T) {
	var buf bytes.Buffer
	frames := vizdata.Sample().Frames[:3]

	start := time.Now()
	n, err := Send(context.Background(), &buf, frames, 10*time.Millisecond)
	if err != nil || n != 3 {
		t.Fatalf("Send = %d, %v", n, err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("frames not paced: %v", elapsed)
	}
	got, err := vizdata.Decode(buf.Bytes())
	if err != nil || len(got) != 3 {
		t.Fatalf("decoded %d frames, %v", len(got), err)
	}
}

func TestSendStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	n, err := Send(ctx, &buf, vizdata.Sample().Frames, time.Hour)
	if n != 1 || !errors.Is(err, context.Canceled) {
		t.Fatalf("Send = %d, %v", n, err)
	}
}
