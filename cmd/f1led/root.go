package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"f1led-go/services/config"
	"f1led-go/services/vizdata"
	"f1led-go/types"
)

// options are shared by every subcommand.
type options struct {
	configPath string
	verbose    bool
	log        zerolog.Logger
}

func newRootCmd() *cobra.Command {
	o := &options{log: zerolog.Nop()}
	root := &cobra.Command{
		Use:   "f1led",
		Short: "F1 track LED strip tooling",
		Long: `f1led prepares and previews the telemetry datasets shown on the HD108
track strip.

Datasets are read by file extension:
  .csv   grouped telemetry table (timestamp, then one column per driver)
  .cbor  self-describing container
  other  raw binary frames (20 x (driver, led) pairs per frame)

Configuration is the host board defaults, layered with --config and then
F1LED_* environment variables.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.TimeFieldFormat = time.RFC3339
			level := zerolog.InfoLevel
			if o.verbose {
				level = zerolog.DebugLevel
			}
			o.log = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen}).
				Level(level).With().Timestamp().Logger()
		},
	}
	root.PersistentFlags().StringVarP(&o.configPath, "config", "c", "", "YAML config file")
	root.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "Debug logging")

	root.AddCommand(
		newConvertCmd(o),
		newInspectCmd(o),
		newSimulateCmd(o),
		newStreamCmd(o),
	)
	return root
}

// loadConfig resolves the effective host configuration.
func (o *options) loadConfig() (config.Config, error) {
	var cfg config.Config
	if o.configPath == "" {
		cfg, _ = config.ForBoard(config.DefaultBoard)
	} else {
		c, err := config.Load(o.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = c
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	o.log.Debug().Str("board", cfg.Board).Int("leds", cfg.Strip.NumLEDs).Str("source", cfg.Playback.Source).Msg("config loaded")
	return cfg, nil
}

// loadData reads a dataset; rateMs applies to formats without a cadence.
func loadData(path string, rateMs uint32) (types.VisualizationData, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return types.VisualizationData{}, err
		}
		defer f.Close()
		return vizdata.ReadCSV(f, rateMs)
	case ".cbor":
		c, err := vizdata.ReadFile(path)
		if err != nil {
			return types.VisualizationData{}, err
		}
		return c.Data(), nil
	default:
		raw, err := os.ReadFile(path)
		if err != nil {
			return types.VisualizationData{}, err
		}
		frames, err := vizdata.Decode(raw)
		if err != nil {
			return types.VisualizationData{}, fmt.Errorf("%s: %w", path, err)
		}
		return types.VisualizationData{UpdateRateMs: rateMs, Frames: frames}, nil
	}
}

// datasetFor loads args[0] or falls back to the built-in sample.
func datasetFor(args []string, rateMs uint32) (types.VisualizationData, string, error) {
	if len(args) == 0 {
		return vizdata.Sample(), "sample", nil
	}
	data, err := loadData(args[0], rateMs)
	return data, args[0], err
}
