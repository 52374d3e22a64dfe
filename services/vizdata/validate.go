package vizdata

import (
	"strconv"

	"f1led-go/errcode"
	"f1led-go/types"
)

// Validate checks every frame against a strip of numLEDs: at most NumDrivers
// entries, unique driver numbers and LEDs in [0, numLEDs).
func Validate(data types.VisualizationData, numLEDs int) error {
	const op = "vizdata.validate"
	for i, f := range data.Frames {
		at := "frame " + strconv.Itoa(i) + ": "
		if len(f.Drivers) > types.NumDrivers {
			return errcode.New(errcode.InvalidPayload, op, at+"too many drivers")
		}
		for j, p := range f.Drivers {
			if p.LED < 0 || p.LED >= numLEDs {
				return errcode.New(errcode.IndexOutOfRange, op, at+"led "+strconv.Itoa(p.LED))
			}
			for _, q := range f.Drivers[:j] {
				if q.Driver == p.Driver {
					return errcode.New(errcode.InvalidPayload, op, at+"duplicate driver "+strconv.FormatUint(uint64(p.Driver), 10))
				}
			}
		}
	}
	return nil
}
