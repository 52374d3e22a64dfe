//go:build !(rp2040 || rp2350)

package vizdata

import (
	"fmt"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"

	"f1led-go/types"
)

// ContainerVersion is written into every container file.
const ContainerVersion = 1

// Container is the self-describing on-disk form of a dataset.
type Container struct {
	Version      uint8               `cbor:"1,keyasint"`
	UpdateRateMs uint32              `cbor:"2,keyasint"`
	NumLEDs      int                 `cbor:"3,keyasint"`
	Frames       []types.UpdateFrame `cbor:"4,keyasint"`
}

// Data returns the dataset view of c.
func (c Container) Data() types.VisualizationData {
	return types.VisualizationData{UpdateRateMs: c.UpdateRateMs, Frames: c.Frames}
}

// WriteContainer encodes data as CBOR.
func WriteContainer(w io.Writer, data types.VisualizationData, numLEDs int) error {
	c := Container{
		Version:      ContainerVersion,
		UpdateRateMs: data.UpdateRateMs,
		NumLEDs:      numLEDs,
		Frames:       data.Frames,
	}
	if err := cbor.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("encode container: %w", err)
	}
	return nil
}

// ReadContainer decodes a container and checks its version.
func ReadContainer(r io.Reader) (Container, error) {
	var c Container
	if err := cbor.NewDecoder(r).Decode(&c); err != nil {
		return Container{}, fmt.Errorf("decode container: %w", err)
	}
	if c.Version != ContainerVersion {
		return Container{}, fmt.Errorf("unsupported container version %d", c.Version)
	}
	return c, nil
}

func WriteFile(path string, data types.VisualizationData, numLEDs int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteContainer(f, data, numLEDs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func ReadFile(path string) (Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return Container{}, err
	}
	defer f.Close()
	return ReadContainer(f)
}
