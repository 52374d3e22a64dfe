package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"f1led-go/drivers/hd108"
	"f1led-go/services/vizdata"
)

func newConvertCmd(o *options) *cobra.Command {
	var (
		rateMs  uint32
		numLEDs int
	)
	cmd := &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert a dataset between CSV, binary and container formats",
		Long: `Convert reads any supported dataset and writes it in the format named by
the output extension: .cbor writes a container, anything else writes raw
binary frames as streamed over the uplink.

The data is validated against --leds before anything is written.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, out := args[0], args[1]
			data, err := loadData(in, rateMs)
			if err != nil {
				return err
			}
			if err := vizdata.Validate(data, numLEDs); err != nil {
				return err
			}
			if strings.EqualFold(filepath.Ext(out), ".cbor") {
				err = vizdata.WriteFile(out, data, numLEDs)
			} else {
				var raw []byte
				if raw, err = vizdata.Encode(data.Frames); err == nil {
					err = os.WriteFile(out, raw, 0o644)
				}
			}
			if err != nil {
				return err
			}
			o.log.Info().Str("in", in).Str("out", out).Int("frames", len(data.Frames)).Msg("converted")
			return nil
		},
	}
	cmd.Flags().Uint32Var(&rateMs, "rate", vizdata.SampleRateMs, "Update rate in ms for inputs without one")
	cmd.Flags().IntVar(&numLEDs, "leds", hd108.DefaultNumLEDs, "Strip length to validate against")
	return cmd
}
