// services/vizdata/codec.go
package vizdata

import (
	"io"
	"strconv"

	"f1led-go/errcode"
	"f1led-go/types"
)

// Binary frame layout: NumDrivers slots of (driver u8, led u8). Driver 0 marks
// an empty slot. LED bytes are board numbers (1-based); in memory they become
// 0-based strip indices.
const (
	SlotLen   = 2
	FrameSize = types.NumDrivers * SlotLen
	MaxLED    = 254 // largest index that fits a board number byte
)

// ParseError reports malformed frame data.
type ParseError struct {
	Frame  uint32 // 0-based frame ordinal within the stream
	Reason string
}

func (e *ParseError) Error() string {
	return "vizdata: frame " + strconv.FormatUint(uint64(e.Frame), 10) + ": " + e.Reason
}

func (e *ParseError) Code() errcode.Code { return errcode.ParseFailed }

// Is lets errors.Is(err, errcode.ParseFailed) match.
func (e *ParseError) Is(target error) bool { return target == errcode.ParseFailed }

// DecodeFrame parses one FrameSize record into dst, reusing dst.Drivers.
func DecodeFrame(p []byte, ordinal uint32, dst *types.UpdateFrame) error {
	if len(p) != FrameSize {
		return &ParseError{Frame: ordinal, Reason: "truncated frame (" + strconv.Itoa(len(p)) + " bytes)"}
	}
	drivers := dst.Drivers[:0]
	for i := 0; i < FrameSize; i += SlotLen {
		num, led := p[i], p[i+1]
		if num == 0 {
			continue
		}
		if led == 0 {
			return &ParseError{Frame: ordinal, Reason: "driver " + strconv.Itoa(int(num)) + " has led 0"}
		}
		for _, d := range drivers {
			if d.Driver == uint32(num) {
				return &ParseError{Frame: ordinal, Reason: "duplicate driver " + strconv.Itoa(int(num))}
			}
		}
		drivers = append(drivers, types.DriverPosition{Driver: uint32(num), LED: int(led) - 1})
	}
	dst.Drivers = drivers
	dst.TimestampMs = 0
	return nil
}

// AppendFrame appends the binary form of f to dst.
func AppendFrame(dst []byte, f types.UpdateFrame) ([]byte, error) {
	const op = "vizdata.encode"
	if len(f.Drivers) > types.NumDrivers {
		return dst, errcode.New(errcode.InvalidPayload, op, "more than "+strconv.Itoa(types.NumDrivers)+" drivers")
	}
	var rec [FrameSize]byte
	for i, d := range f.Drivers {
		if d.Driver == 0 || d.Driver > 255 {
			return dst, errcode.New(errcode.InvalidPayload, op, "driver number "+strconv.FormatUint(uint64(d.Driver), 10)+" does not fit a byte")
		}
		if d.LED < 0 || d.LED > MaxLED {
			return dst, errcode.New(errcode.IndexOutOfRange, op, "led "+strconv.Itoa(d.LED))
		}
		rec[i*SlotLen] = byte(d.Driver)
		rec[i*SlotLen+1] = byte(d.LED + 1)
	}
	return append(dst, rec[:]...), nil
}

// Encode serialises frames back to back.
func Encode(frames []types.UpdateFrame) ([]byte, error) {
	out := make([]byte, 0, len(frames)*FrameSize)
	var err error
	for _, f := range frames {
		if out, err = AppendFrame(out, f); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Decode parses a whole buffer of frames.
func Decode(p []byte) ([]types.UpdateFrame, error) {
	out := make([]types.UpdateFrame, 0, len(p)/FrameSize)
	for off := 0; off < len(p); off += FrameSize {
		end := off + FrameSize
		if end > len(p) {
			end = len(p)
		}
		f := types.UpdateFrame{Drivers: make([]types.DriverPosition, 0, types.NumDrivers)}
		if err := DecodeFrame(p[off:end], uint32(len(out)), &f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// Decoder reads frames from a byte stream. Frames returned by Next share
// storage with the decoder: Drivers stays valid until the second following
// call, which lets a consumer hold the current frame while peeking the next.
type Decoder struct {
	r    io.Reader
	rec  [FrameSize]byte
	bufs [2][types.NumDrivers]types.DriverPosition
	n    uint32
}

func NewDecoder(r io.Reader) *Decoder { return &Decoder{r: r} }

// Next returns io.EOF at a clean frame boundary and a *ParseError for a
// partial trailing frame or malformed record. Other read errors pass through.
func (d *Decoder) Next() (types.UpdateFrame, error) {
	n, err := io.ReadFull(d.r, d.rec[:])
	switch {
	case err == io.EOF:
		return types.UpdateFrame{}, io.EOF
	case err == io.ErrUnexpectedEOF:
		return types.UpdateFrame{}, &ParseError{Frame: d.n, Reason: "truncated frame (" + strconv.Itoa(n) + " bytes)"}
	case err != nil:
		return types.UpdateFrame{}, err
	}
	f := types.UpdateFrame{Drivers: d.bufs[d.n%2][:0]}
	if err := DecodeFrame(d.rec[:], d.n, &f); err != nil {
		return types.UpdateFrame{}, err
	}
	d.n++
	return f, nil
}

// Frames is the number of frames decoded so far.
func (d *Decoder) Frames() uint32 { return d.n }
