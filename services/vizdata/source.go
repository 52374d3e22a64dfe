package vizdata

import (
	"io"

	"f1led-go/types"
)

// Slice walks an in-memory dataset.
type Slice struct {
	data types.VisualizationData
	i    int
}

// SliceSource starts a fresh pass over data. data is shared, not copied.
func SliceSource(data types.VisualizationData) *Slice { return &Slice{data: data} }

func (s *Slice) Next() (types.UpdateFrame, error) {
	if s.i >= len(s.data.Frames) {
		return types.UpdateFrame{}, io.EOF
	}
	f := s.data.Frames[s.i]
	s.i++
	return f, nil
}

// RateMs reports the dataset's cadence.
func (s *Slice) RateMs() uint32 { return s.data.UpdateRateMs }

// StreamSource decodes binary frames from r.
func StreamSource(r io.Reader) *Decoder { return NewDecoder(r) }
