package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"f1led-go/drivers/hd108"
	"f1led-go/services/registry"
	"f1led-go/services/vizdata"
	"f1led-go/types"
)

func newInspectCmd(o *options) *cobra.Command {
	var (
		rateMs  uint32
		numLEDs int
		frames  bool
	)
	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Summarise a dataset (the built-in sample if no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, name, err := datasetFor(args, rateMs)
			if err != nil {
				return err
			}
			summarize(cmd.OutOrStdout(), name, data, numLEDs, frames)
			return nil
		},
	}
	cmd.Flags().Uint32Var(&rateMs, "rate", vizdata.SampleRateMs, "Update rate in ms for inputs without one")
	cmd.Flags().IntVar(&numLEDs, "leds", hd108.DefaultNumLEDs, "Strip length to validate against")
	cmd.Flags().BoolVar(&frames, "frames", false, "Print every frame")
	return cmd
}

func summarize(w io.Writer, name string, data types.VisualizationData, numLEDs int, perFrame bool) {
	reg := registry.Default()
	seen := map[uint32]bool{}
	minLED, maxLED := -1, -1
	for _, f := range data.Frames {
		for _, p := range f.Drivers {
			seen[p.Driver] = true
			if minLED < 0 || p.LED < minLED {
				minLED = p.LED
			}
			if p.LED > maxLED {
				maxLED = p.LED
			}
		}
	}
	drivers := make([]int, 0, len(seen))
	unknown := 0
	for d := range seen {
		drivers = append(drivers, int(d))
		if _, ok := reg.Lookup(d); !ok {
			unknown++
		}
	}
	sort.Ints(drivers)

	fmt.Fprintf(w, "dataset:  %s\n", name)
	fmt.Fprintf(w, "frames:   %d\n", len(data.Frames))
	fmt.Fprintf(w, "rate:     %d ms\n", data.UpdateRateMs)
	fmt.Fprintf(w, "drivers:  %d (%d unknown) %v\n", len(drivers), unknown, drivers)
	if maxLED >= 0 {
		// Board numbering is 1-based.
		fmt.Fprintf(w, "leds:     %d..%d\n", minLED+1, maxLED+1)
	}
	if err := vizdata.Validate(data, numLEDs); err != nil {
		fmt.Fprintf(w, "valid:    no (%v)\n", err)
	} else {
		fmt.Fprintf(w, "valid:    yes for %d leds\n", numLEDs)
	}

	if !perFrame {
		return
	}
	for i, f := range data.Frames {
		fmt.Fprintf(w, "#%d", i)
		if f.TimestampMs != 0 {
			fmt.Fprintf(w, " t=%d", f.TimestampMs)
		}
		for _, p := range f.Drivers {
			code := "?"
			if d, ok := reg.Lookup(p.Driver); ok {
				code = d.Code
			}
			fmt.Fprintf(w, " %s@%d", code, p.LED+1)
		}
		fmt.Fprintln(w)
	}
}
