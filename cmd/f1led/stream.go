package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.bug.st/serial"

	"f1led-go/services/uplink"
)

func newStreamCmd(o *options) *cobra.Command {
	var (
		portName string
		baud     int
		rateMs   uint32
	)
	cmd := &cobra.Command{
		Use:   "stream [file]",
		Short: "Send a dataset to the board over the serial uplink",
		Long: `Stream writes binary frames to the board's uplink UART, one per update
interval. The board plays them when its source is set to "uplink" and the
button has been pressed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.loadConfig()
			if err != nil {
				return err
			}
			if rateMs == 0 {
				rateMs = cfg.Playback.UpdateRateMs
			}
			data, name, err := datasetFor(args, rateMs)
			if err != nil {
				return err
			}
			if baud == 0 {
				baud = int(cfg.Uplink.Baud)
			}
			mode := &serial.Mode{
				BaudRate: baud,
				DataBits: 8,
				Parity:   serial.NoParity,
				StopBits: serial.OneStopBit,
			}
			port, err := serial.Open(portName, mode)
			if err != nil {
				return fmt.Errorf("failed to open serial port %s: %w", portName, err)
			}
			defer port.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rate := time.Duration(data.UpdateRateMs) * time.Millisecond
			o.log.Info().Str("dataset", name).Str("port", portName).Int("baud", baud).Dur("rate", rate).Msg("streaming")
			n, err := uplink.Send(ctx, port, data.Frames, rate)
			o.log.Info().Int("frames", n).Msg("sent")
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&portName, "port", "p", "", "Serial port device (e.g. /dev/ttyACM0)")
	cmd.Flags().IntVarP(&baud, "baud", "b", 0, "Baud rate (config uplink.baud if zero)")
	cmd.Flags().Uint32Var(&rateMs, "rate", 0, "Update rate in ms for inputs without one (config if zero)")
	_ = cmd.MarkFlagRequired("port")
	return cmd
}
