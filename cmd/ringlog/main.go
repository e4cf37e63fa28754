package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/rzbill/ringlog/internal/blockdev"
	cfgpkg "github.com/rzbill/ringlog/internal/config"
	"github.com/rzbill/ringlog/internal/metrics"
	"github.com/rzbill/ringlog/internal/ring"
	"github.com/rzbill/ringlog/internal/server/diag"
	logpkg "github.com/rzbill/ringlog/pkg/log"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "ringlog",
		Short: "ringlog partition CLI",
		Long:  "ringlog manages a wear-leveling ring log stored in a file-backed flash partition.",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a JSON or YAML config file")

	loadConfig := func() (cfgpkg.Config, logpkg.Logger, error) {
		cfg, err := cfgpkg.Load(configPath)
		if err != nil {
			return cfgpkg.Config{}, nil, err
		}
		cfgpkg.FromEnv(&cfg)
		level, err := logpkg.ParseLevel(cfg.LogLevel)
		if err != nil {
			level = logpkg.InfoLevel
		}
		logger := logpkg.NewLogger(logpkg.WithLevel(level))
		return cfg, logger, nil
	}

	openRing := func(cfg cfgpkg.Config, logger logpkg.Logger, hook ring.MetricsHook) (*ring.Log, *blockdev.FileDevice, error) {
		dev, err := blockdev.OpenFileDevice(cfg.Device.Path, cfg.Device.EraseUnitSize, cfg.Device.Size)
		if err != nil {
			return nil, nil, err
		}
		l, err := ring.New(dev, ring.Options{
			Tag:        cfg.Record.Tag,
			RecordSize: cfg.Record.Size,
			Metrics:    hook,
			Logger:     logger,
		})
		if err != nil {
			dev.Close()
			return nil, nil, err
		}
		return l, dev, nil
	}

	formatCmd := &cobra.Command{
		Use:   "format",
		Short: "Erase the partition and initialize a fresh ring",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			l, dev, err := openRing(cfg, logger, nil)
			if err != nil {
				return err
			}
			defer dev.Close()
			if err := l.Format(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "formatted %s: capacity %d records of %d bytes\n",
				cfg.Device.Path, l.Capacity(), cfg.Record.Size)
			return nil
		},
	}

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Scan the partition and report counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			l, dev, err := openRing(cfg, logger, nil)
			if err != nil {
				return err
			}
			defer dev.Close()
			if err := l.Scan(); err != nil {
				return err
			}
			est, err := l.EstimateCount()
			if err != nil {
				return err
			}
			exact, err := l.ExactCount()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "capacity: %d\nestimated: %d\nexact: %d\n", l.Capacity(), est, exact)
			return nil
		},
	}

	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the sector table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			l, dev, err := openRing(cfg, logger, nil)
			if err != nil {
				return err
			}
			defer dev.Close()
			if err := l.Scan(); err != nil {
				return err
			}
			l.Dump(cmd.OutOrStdout())
			return nil
		},
	}

	appendCmd := &cobra.Command{
		Use:   "append",
		Short: "Append records read from stdin",
		Long:  "Reads stdin as a stream of fixed-size records and appends each one.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			l, dev, err := openRing(cfg, logger, nil)
			if err != nil {
				return err
			}
			defer dev.Close()
			if err := l.Scan(); err != nil {
				return err
			}
			buf := make([]byte, cfg.Record.Size)
			n := 0
			for {
				_, err := io.ReadFull(cmd.InOrStdin(), buf)
				if err == io.EOF {
					break
				}
				if err != nil {
					return fmt.Errorf("stdin is not a whole number of %d-byte records: %w", cfg.Record.Size, err)
				}
				if err := l.Append(buf); err != nil {
					return err
				}
				n++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "appended %d records\n", n)
			return nil
		},
	}

	var fetchCount int
	var fetchCommit bool
	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Read records oldest-first to stdout",
		Long:  "Writes raw records to stdout. Without --commit the read is non-destructive; with --commit the fetched records are discarded.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			l, dev, err := openRing(cfg, logger, nil)
			if err != nil {
				return err
			}
			defer dev.Close()
			if err := l.Scan(); err != nil {
				return err
			}
			n := 0
			for fetchCount == 0 || n < fetchCount {
				rec, err := l.Fetch()
				if errors.Is(err, ring.ErrNoMoreRecords) {
					break
				}
				if err != nil {
					return err
				}
				if _, err := cmd.OutOrStdout().Write(rec); err != nil {
					return err
				}
				n++
			}
			if fetchCommit {
				if err := l.Discard(); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "fetched %d records\n", n)
			return nil
		},
	}
	fetchCmd.Flags().IntVarP(&fetchCount, "count", "n", 0, "maximum records to fetch (0 = all)")
	fetchCmd.Flags().BoolVar(&fetchCommit, "commit", false, "discard fetched records")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve diagnostics and metrics over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			reg := prometheus.NewRegistry()
			l, dev, err := openRing(cfg, logger, metrics.NewCollector(reg))
			if err != nil {
				return err
			}
			defer dev.Close()
			if err := l.Scan(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			srv := diag.New(l, &sync.Mutex{}, reg, logger)
			defer srv.Close()
			return srv.ListenAndServe(ctx, cfg.Listen)
		},
	}

	rootCmd.AddCommand(formatCmd, infoCmd, dumpCmd, appendCmd, fetchCmd, serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
