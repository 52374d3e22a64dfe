package periphspi

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/spi/spitest"

	"f1led-go/drivers/hd108"
	"f1led-go/errcode"
	"f1led-go/types"
)

func TestPortDrivesStrip(t *testing.T) {
	var wire bytes.Buffer
	port, err := New(spitest.NewRecordRaw(&wire), 0)
	require.NoError(t, err)

	d := hd108.New(port, hd108.Config{NumLEDs: 8})
	require.NoError(t, d.ApplyUpdates([]types.LedUpdate{{Index: 7, B: 255}}))

	assert.Equal(t, hd108.FrameLen(8), wire.Len())
	colors, err := hd108.DecodeStrip(wire.Bytes(), 8)
	require.NoError(t, err)
	assert.Equal(t, types.RGBColor{B: 255}, colors[7])
	assert.Equal(t, types.Off, colors[0])
	require.NoError(t, port.Close())
}

func TestTxRejectsFrameOverLimit(t *testing.T) {
	var wire bytes.Buffer
	port, err := New(spitest.NewRecordRaw(&wire), 1_000_000)
	require.NoError(t, err)
	port.maxTx = hd108.FrameLen(8) - 1

	d := hd108.New(port, hd108.Config{NumLEDs: 8})
	err = d.ApplyUpdates([]types.LedUpdate{{Index: 0, R: 1}})
	require.Error(t, err)
	assert.Equal(t, errcode.BusWrite, errcode.Of(err))
	assert.ErrorContains(t, err, "spidev")
	assert.Zero(t, wire.Len(), "nothing may reach the strip")

	port.maxTx = hd108.FrameLen(8)
	require.NoError(t, d.ApplyUpdates(nil))
	assert.Equal(t, hd108.FrameLen(8), wire.Len(), "a frame at the limit goes out whole")
}
