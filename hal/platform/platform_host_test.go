//go:build !(rp2040 || rp2350)

package platform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f1led-go/drivers/hd108"
	"f1led-go/hal"
	"f1led-go/types"
)

type captureSink struct{ frames [][]types.RGBColor }

func (c *captureSink) Show(colors []types.RGBColor) { c.frames = append(c.frames, colors) }

func TestSimSPIDecodesToSinks(t *testing.T) {
	sink := &captureSink{}
	bus := NewSimSPI(4, sink)
	d := hd108.New(bus, hd108.Config{NumLEDs: 4})

	require.NoError(t, d.ApplyUpdates([]types.LedUpdate{{Index: 2, R: 200, G: 10}}))
	require.Len(t, sink.frames, 1)
	assert.Equal(t, types.RGBColor{R: 200, G: 10}, sink.frames[0][2])
	assert.Equal(t, types.RGBColor{R: 200, G: 10}, bus.Colors()[2])
	assert.Equal(t, hd108.FrameLen(4), len(bus.Last()))
	assert.Equal(t, 1, bus.Transactions())
	assert.Zero(t, bus.Undecodable())
}

func TestSimSPIFailAndHook(t *testing.T) {
	bus := NewSimSPI(0)
	var seen []int
	bus.OnTx(func(n int) { seen = append(seen, n) })

	require.NoError(t, bus.Tx([]byte{1, 2}, nil))
	boom := errors.New("boom")
	bus.Fail(boom)
	assert.ErrorIs(t, bus.Tx([]byte{3}, nil), boom)
	assert.Equal(t, []int{1, 2}, seen)
	assert.Equal(t, []byte{1, 2}, bus.Last(), "failed Tx must not replace the last frame")
}

func TestOpenSPIWithoutDeviceSimulates(t *testing.T) {
	bus, err := OpenSPI(hal.SPIConfig{NumLEDs: 96})
	require.NoError(t, err)
	_, ok := bus.(*SimSPI)
	assert.True(t, ok)
}

func TestFakePinFallingEdgeIRQ(t *testing.T) {
	f := DefaultPinFactory().(*HostPinFactory)
	gp, ok := f.ByNumber(15)
	require.True(t, ok)
	pin := gp.(*FakePin)
	require.NoError(t, pin.ConfigureInput(hal.PullUp))
	assert.True(t, pin.Get(), "pull-up rests high")

	var hits int
	require.NoError(t, pin.SetIRQ(hal.EdgeFalling, func() { hits++ }))
	pin.Press()
	pin.Press()
	assert.Equal(t, 2, hits)

	require.NoError(t, pin.ClearIRQ())
	pin.Press()
	assert.Equal(t, 2, hits)
	assert.False(t, pin.IRQArmed())

	same, _ := f.Get(15)
	assert.Same(t, pin, same)
}
