// services/resolve/resolve.go
package resolve

import "f1led-go/types"

// Lookup resolves a driver number to its colour.
type Lookup interface {
	Color(driver uint32) (types.RGBColor, bool)
}

// Resolve turns a telemetry frame into strip updates, in frame order.
// Drivers unknown to reg are dropped. LED numbers pass through unchanged;
// range checking belongs to the strip driver.
func Resolve(frame types.UpdateFrame, reg Lookup) []types.LedUpdate {
	return ResolveInto(make([]types.LedUpdate, 0, types.NumDrivers), frame, reg)
}

// ResolveInto appends to dst[:0], reusing its storage.
func ResolveInto(dst []types.LedUpdate, frame types.UpdateFrame, reg Lookup) []types.LedUpdate {
	dst = dst[:0]
	for _, p := range frame.Drivers {
		c, ok := reg.Color(p.Driver)
		if !ok {
			continue
		}
		dst = append(dst, types.LedUpdate{Index: p.LED, R: c.R, G: c.G, B: c.B})
	}
	return dst
}

// Misses counts positions whose driver is unknown to reg.
func Misses(frame types.UpdateFrame, reg Lookup) int {
	n := 0
	for _, p := range frame.Drivers {
		if _, ok := reg.Color(p.Driver); !ok {
			n++
		}
	}
	return n
}
