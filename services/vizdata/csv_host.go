//go:build !(rp2040 || rp2350)

package vizdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"f1led-go/types"
)

// ReadCSV imports a grouped telemetry table. The header row holds a leading
// label column followed by one driver number per column. Each record starts
// with a timestamp in milliseconds (blank allowed) followed by board LED
// numbers; a blank cell means the driver is not on track.
func ReadCSV(r io.Reader, updateRateMs uint32) (types.VisualizationData, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return types.VisualizationData{}, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) < 2 {
		return types.VisualizationData{}, errors.New("csv header has no driver columns")
	}
	if len(header)-1 > types.NumDrivers {
		return types.VisualizationData{}, fmt.Errorf("csv header has %d drivers, max %d", len(header)-1, types.NumDrivers)
	}
	drivers := make([]uint32, len(header)-1)
	for i, h := range header[1:] {
		n, err := strconv.ParseUint(strings.TrimSpace(h), 10, 8)
		if err != nil || n == 0 {
			return types.VisualizationData{}, fmt.Errorf("csv header column %d: bad driver number %q", i+1, h)
		}
		for _, prev := range drivers[:i] {
			if prev == uint32(n) {
				return types.VisualizationData{}, fmt.Errorf("csv header: duplicate driver %d", n)
			}
		}
		drivers[i] = uint32(n)
	}

	out := types.VisualizationData{UpdateRateMs: updateRateMs}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return types.VisualizationData{}, fmt.Errorf("csv line %d: %w", line, err)
		}
		var f types.UpdateFrame
		if ts := strings.TrimSpace(rec[0]); ts != "" {
			if f.TimestampMs, err = strconv.ParseUint(ts, 10, 64); err != nil {
				return types.VisualizationData{}, fmt.Errorf("csv line %d: bad timestamp %q", line, rec[0])
			}
		}
		for i, cell := range rec[1:] {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			led, err := strconv.ParseUint(cell, 10, 8)
			if err != nil || led == 0 {
				return types.VisualizationData{}, fmt.Errorf("csv line %d: driver %d: bad led %q", line, drivers[i], cell)
			}
			f.Drivers = append(f.Drivers, types.DriverPosition{Driver: drivers[i], LED: int(led) - 1})
		}
		out.Frames = append(out.Frames, f)
	}
	return out, nil
}
