package main

import (
	"fmt"
	"os"
	"time"

	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/theme"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"fyseq/internal/config"
	"fyseq/internal/logging"
	"fyseq/internal/scan"
	"fyseq/internal/service"
	"fyseq/internal/store"
	"fyseq/internal/ui"
)

type guiFlags struct {
	config      string
	dbPath      string
	key         string
	historySize int
	interval    time.Duration
	noLoop      bool
	verbose     bool
}

func newRootCmd() *cobra.Command {
	var flags guiFlags
	cmd := &cobra.Command{
		Use:     "fyseq [file]",
		Short:   "Pick a data file and scrub through its time series",
		Args:    cobra.MaximumNArgs(1),
		Version: service.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags.config)
			if err != nil {
				return err
			}
			applyFlags(cmd, cfg, flags)

			level, err := logging.ParseLevel(cfg.Log.Level)
			if err != nil {
				return err
			}
			if flags.verbose {
				level = zerolog.DebugLevel
			}
			logger := logging.NewDefault()
			logger.SetLevel(level)

			lister, err := scan.NewLister(cfg.Detect.Filter, logger.Func("scan"))
			if err != nil {
				return err
			}
			st, err := store.NewBoltStore(cfg.Store.Path, logger.Func("store"))
			if err != nil {
				return fmt.Errorf("failed to open sequence DB: %w", err)
			}
			logger.Debugf("sequence DB: %s", st.Path())
			svc := service.NewService(st, lister, logger.Func("service"))
			svc.Detector = cfg.Detector()

			opts := ui.Options{
				Key:         flags.key,
				HistorySize: cfg.History.Size,
				Interval:    cfg.Playback.Interval,
				Loop:        cfg.Playback.Loop,
			}
			if len(args) == 1 {
				opts.File = args[0]
			}

			a := app.NewWithID("com.github.fyseq")
			a.Settings().SetTheme(ui.NewCompactTheme(theme.DefaultTheme(), 4))
			ui.NewApp(a, svc, logger, opts).Run()
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.config, "config", "", "Path to the config file")
	cmd.Flags().StringVar(&flags.dbPath, "dbpath", "", "Path to the sequence database (file or directory)")
	cmd.Flags().StringVar(&flags.key, "key", ui.DefaultKey, "Store key of the file entry")
	cmd.Flags().IntVar(&flags.historySize, "history-size", 0, "Number of opened datasets to remember")
	cmd.Flags().DurationVar(&flags.interval, "interval", 0, "Delay between timesteps while playing")
	cmd.Flags().BoolVar(&flags.noLoop, "no-loop", false, "Stop playing at the last timestep")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log at debug level")
	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// applyFlags overrides cfg with the flags given on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config, flags guiFlags) {
	if flags.dbPath != "" {
		cfg.Store.Path = flags.dbPath
	}
	if cmd.Flags().Changed("history-size") {
		cfg.History.Size = flags.historySize
	}
	if flags.interval > 0 {
		cfg.Playback.Interval = flags.interval
	}
	if flags.noLoop {
		cfg.Playback.Loop = false
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
