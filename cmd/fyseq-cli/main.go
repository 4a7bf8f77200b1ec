package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"fyseq/internal/config"
	"fyseq/internal/logging"
	"fyseq/internal/scan"
	"fyseq/internal/sequence"
	"fyseq/internal/service"
	"fyseq/internal/store"
	"fyseq/internal/watch"
)

var (
	dbPathFlag  string
	configFlag  string
	verboseFlag bool
	noStoreFlag bool
	svc         *service.Service
	logger      *logging.Logger
)

// ServiceFactory builds the service used by the commands from the loaded
// configuration. Tests inject their own to run against a MemoryStore.
type ServiceFactory func(cfg *config.Config, logger *logging.Logger) (*service.Service, error)

func loadConfig() (*config.Config, error) {
	if configFlag != "" {
		return config.LoadFile(configFlag)
	}
	return config.Load()
}

// NewRootCmd creates the root command for the CLI application.
// It takes a function `getService` which is responsible for initializing
// and returning the service. This allows tests to inject test-specific
// instances.
func NewRootCmd(getService ServiceFactory) *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:           "fyseq-cli",
		Short:         "fyseq CLI - detect and persist numbered file sequences",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if dbPathFlag != "" {
				cfg.Store.Path = dbPathFlag
			}

			level, err := logging.ParseLevel(cfg.Log.Level)
			if err != nil {
				return err
			}
			if verboseFlag {
				level = zerolog.DebugLevel
			}
			logger = logging.New(cmd.ErrOrStderr(), level)

			svc, err = getService(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize service: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if svc != nil && svc.Store != nil {
				if err := svc.Store.Close(); err != nil {
					logger.Errorf("failed to close store: %v", err)
				}
			}
		},
	}

	rootCmd.AddCommand(
		newDetectCmd(),
		newIndexCmd(),
		newOpenCmd(),
		newShowCmd(),
		newStepCmd(),
		newListCmd(),
		newForgetCmd(),
		newCleanCmd(),
		newScriptCmd(),
		newWatchCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	// Define persistent flags on the rootCmd returned by NewRootCmd
	// This ensures flags are available when NewRootCmd is called from main or tests.
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "dbpath", "", "Path to the sequence database (file or directory)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Log at debug level")
	rootCmd.PersistentFlags().BoolVar(&noStoreFlag, "no-store", false, "Keep records in memory only")

	return rootCmd
}

// writeFormatted prints v as json or yaml, or calls text for the default format.
func writeFormatted(cmd *cobra.Command, format string, v interface{}, text func()) error {
	switch strings.ToLower(format) {
	case "", "text":
		text()
		return nil
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

func printRecord(cmd *cobra.Command, rec *store.Record) {
	cmd.Printf("%s: %s\n", rec.Key, rec.Value)
	cmd.Printf("  timestep %d of %d\n", rec.TimeStep, len(rec.Files))
	if len(rec.Files) > 1 {
		cmd.Printf("  first %s\n", filepath.Base(rec.Files[0]))
		cmd.Printf("  last  %s\n", filepath.Base(rec.Files[len(rec.Files)-1]))
	}
}

func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}
	return abs, nil
}

func newDetectCmd() *cobra.Command {
	var format, filter string
	cmd := &cobra.Command{
		Use:   "detect [file]",
		Short: "Print the sequence a file belongs to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := absPath(args[0])
			if err != nil {
				return err
			}
			if filter != "" {
				lister, err := scan.NewLister(filter, logger.Func("scan"))
				if err != nil {
					return err
				}
				svc.Lister = lister
			}
			report, err := svc.Detect(path)
			if err != nil {
				return err
			}
			return writeFormatted(cmd, format, report, func() {
				cmd.Printf("Directory: %s\n", report.Dir)
				if l, ok := svc.Lister.(*scan.Lister); ok && l.Filter() != "" {
					cmd.Printf("Filter: %s\n", l.Filter())
				}
				cmd.Printf("Stem: %q  Run: %q  Ext: %q\n", report.Stem, report.Run, report.Ext)
				if report.Fallback {
					cmd.Printf("No sequence found (%d files listed)\n", report.Listed)
				} else {
					cmd.Printf("Pattern: %s  Range: %d..%d  Timesteps: %d\n", report.Pattern, report.Min, report.Max, len(report.Files))
				}
				for i, f := range report.Files {
					marker := " "
					if i == report.Index {
						marker = "*"
					}
					cmd.Printf("%s %4d  %s\n", marker, i, f)
				}
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json or yaml")
	cmd.Flags().StringVar(&filter, "filter", "", "Glob restricting the directory listing")
	return cmd
}

func newIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index [file]",
		Short: "Print the timestep of a file within its sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := absPath(args[0])
			if err != nil {
				return err
			}
			report, err := svc.Detect(path)
			if err != nil {
				return err
			}
			if report.Index < 0 {
				return fmt.Errorf("%s: %w", path, sequence.ErrNotFound)
			}
			cmd.Println(report.Index)
			return nil
		},
	}
}

func newOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open [key] [file]",
		Short: "Detect the sequence of a file and store it under key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := absPath(args[1])
			if err != nil {
				return err
			}
			rec, err := svc.Open(args[0], path)
			if err != nil {
				return err
			}
			printRecord(cmd, rec)
			return nil
		},
	}
}

func newShowCmd() *cobra.Command {
	var format string
	var frames bool
	cmd := &cobra.Command{
		Use:   "show [key]",
		Short: "Show the sequence stored under key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !frames {
				rec, err := svc.Show(args[0])
				if err != nil {
					return err
				}
				return writeFormatted(cmd, format, rec, func() { printRecord(cmd, rec) })
			}

			infos, err := svc.FrameInfo(args[0])
			if err != nil {
				return err
			}
			return writeFormatted(cmd, format, infos, func() {
				for _, info := range infos {
					marker := " "
					if info.Current {
						marker = "*"
					}
					if !info.Present {
						cmd.Printf("%s %4d  %s  (missing)\n", marker, info.Index, info.Path)
						continue
					}
					cmd.Printf("%s %4d  %s  %s  %s\n", marker, info.Index, info.Path,
						service.FormatSize(info.Size), info.ModTime.Format(time.DateTime))
				}
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json or yaml")
	cmd.Flags().BoolVar(&frames, "frames", false, "List every timestep with its size and modification time")
	return cmd
}

func newStepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "step [key] [timestep]",
		Short: "Select a timestep of the stored sequence",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid timestep %q: %w", args[1], err)
			}
			rec, err := svc.Step(args[0], ts)
			if err != nil {
				return err
			}
			printRecord(cmd, rec)
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := svc.Keys()
			if err != nil {
				return err
			}
			if len(keys) == 0 {
				cmd.Println("No sequences stored.")
				return nil
			}
			for _, key := range keys {
				rec, err := svc.Show(key)
				if err != nil {
					cmd.Printf("%s (unreadable: %v)\n", key, err)
					continue
				}
				cmd.Printf("%s\t%s\t[%d/%d]\n", key, rec.Value, rec.TimeStep, len(rec.Files))
			}
			return nil
		},
	}
}

func newForgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forget [key]",
		Short: "Remove the sequence stored under key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := svc.Forget(args[0]); err != nil {
				return err
			}
			cmd.Printf("Forgot %s\n", args[0])
			return nil
		},
	}
}

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove stored sequences whose file no longer exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := svc.CleanStore()
			if err != nil {
				return err
			}
			cmd.Printf("Removed %d stale record(s)\n", removed)
			return nil
		},
	}
}

func newScriptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "script [key]",
		Short: "Print the stored sequence as a shell snippet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := svc.Script(args[0])
			if err != nil {
				return err
			}
			cmd.Print(script)
			return nil
		},
	}
}

func newWatchCmd() *cobra.Command {
	var debounce, timeout time.Duration
	cmd := &cobra.Command{
		Use:   "watch [key]",
		Short: "Re-detect the stored sequence whenever its directory changes",
		Long: `Watch the directory of the sequence stored under key. Every time files are
created, removed or renamed the sequence is detected again and stored.
Runs until interrupted, or until --timeout elapses.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			e := svc.NewEntry(key, nil)
			if err := e.Reset(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			changes := make(chan struct{}, 1)
			w, err := watch.New(e.Dir(), debounce, func() {
				select {
				case changes <- struct{}{}:
				default:
				}
			}, logger.Func("watch"))
			if err != nil {
				return err
			}
			defer w.Close()
			if err := w.Start(ctx); err != nil {
				return err
			}

			cmd.Printf("Watching %s (%d timesteps)\n", w.Dir(), len(e.Files()))
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-changes:
					before := len(e.Files())
					if err := e.Redetect(); err != nil {
						logger.Errorf("re-detect failed: %v", err)
						continue
					}
					if err := e.Accept(); err != nil {
						logger.Errorf("failed to store %s: %v", key, err)
						continue
					}
					cmd.Printf("%s: %d -> %d timesteps, current %s\n",
						key, before, len(e.Files()), filepath.Base(e.Value()))
				}
			}
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period before re-detecting")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Stop watching after this long (0 runs until interrupted)")
	return cmd
}

func newConfigCmd() *cobra.Command {
	var write bool
	var cfg *config.Config
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after the config file and --dbpath are applied.
With --write it is saved to the --config path, or the default location.`,
		Args: cobra.NoArgs,
		// The store is not opened for this command.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if dbPathFlag != "" {
				cfg.Store.Path = dbPathFlag
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {},
		RunE: func(cmd *cobra.Command, args []string) error {
			if write {
				path := configFlag
				if path == "" {
					var err error
					if path, err = config.DefaultPath(); err != nil {
						return err
					}
				}
				if err := cfg.Save(path); err != nil {
					return err
				}
				cmd.Printf("Wrote %s\n", path)
				return nil
			}
			return writeFormatted(cmd, "yaml", cfg, nil)
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "Save the configuration instead of printing it")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "version",
		Short:             "Print the version",
		PersistentPreRun:  func(cmd *cobra.Command, args []string) {},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("fyseq-cli %s\n", service.Version)
		},
	}
}

func main() {
	getSvcFunc := func(cfg *config.Config, logger *logging.Logger) (*service.Service, error) {
		lister, err := scan.NewLister(cfg.Detect.Filter, logger.Func("scan"))
		if err != nil {
			return nil, err
		}
		var st store.SequenceStore
		if noStoreFlag {
			st = store.NewMemoryStore()
		} else {
			bs, err := store.NewBoltStore(cfg.Store.Path, logger.Func("store"))
			if err != nil {
				return nil, fmt.Errorf("failed to open sequence DB: %w", err)
			}
			logger.Debugf("sequence DB: %s", bs.Path())
			st = bs
		}
		s := service.NewService(st, lister, logger.Func("service"))
		s.Detector = cfg.Detector()
		return s, nil
	}
	rootCmd := NewRootCmd(getSvcFunc)
	// cmd.Print* default to stderr; results belong on stdout.
	rootCmd.SetOut(os.Stdout)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
