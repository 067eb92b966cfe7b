package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/RowanDark/namepool/config"
	"github.com/RowanDark/namepool/ingest"
	"github.com/RowanDark/namepool/intern"
	"github.com/RowanDark/namepool/logging"
	"github.com/RowanDark/namepool/metrics"
	"github.com/RowanDark/namepool/output"
	"github.com/RowanDark/namepool/stats"
)

const metricsShutdownTimeout = 2 * time.Second

func newBuildCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "build [files...]",
		Short: "Intern every input line and write one record per value",
		Long: `build reads names from the given files (or stdin), interns every token into
one pool and writes a record per non-blank line. Use --table to dump the final
pool and --seed to start from a previous dump.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger, err := setup(cmd, cfg)
			if err != nil {
				return err
			}
			defer logger.Close()

			return runBuild(ctx, cmd, cfg, logger, args)
		},
	}
}

func runBuild(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *logging.Logger, args []string) error {
	inputs := append(slices.Clone(cfg.Inputs), args...)

	var stdin io.Reader
	if len(inputs) == 0 {
		stdin = stdinInput(cmd.InOrStdin())
		if stdin == nil {
			logger.Warnf("No input specified. Pass files as arguments, use --input, or pipe names via stdin.")
			return nil
		}
	}

	normalize, err := ingest.NewNormalizer(cfg.Normalize)
	if err != nil {
		return err
	}

	var seed []string
	if cfg.SeedPath != "" {
		seed, err = output.LoadTable(cfg.SeedPath)
		if err != nil {
			return err
		}
		logger.Infof("Seeded pool with %d entries from %s", len(seed), cfg.SeedPath)
	}
	pool := intern.NewFrom(cfg.InternStrategy(), seed)

	registry := prometheus.NewRegistry()
	collectors := metrics.New(registry)
	collectors.SetTableSize(pool.Len())
	if cfg.MetricsAddr != "" {
		shutdown, err := serveMetrics(cfg.MetricsAddr, registry, logger.With("metrics"))
		if err != nil {
			return err
		}
		defer shutdown()
	}

	tracker := stats.NewTracker(stats.Options{Logger: logger.With("stats"), Interval: cfg.StatsInterval, Table: pool})
	tracker.Start(ctx.Done())

	opts := ingest.Options{
		Pool:      pool,
		Normalize: normalize,
		Workers:   cfg.Workers,
		Tracker:   tracker,
		Metrics:   collectors,
		Logger:    logger.With("ingest"),
	}

	logger.Infof("Building pool (strategy=%s, normalize=%s)", cfg.Strategy, cfg.Normalize)
	var entries []ingest.Entry
	if stdin != nil {
		entries, err = ingest.Reader(ctx, ingest.StdinSource, stdin, opts)
	} else {
		entries, err = ingest.Files(ctx, inputs, opts)
	}
	snapshot := tracker.Stop()
	if err != nil {
		return err
	}

	writer, err := output.NewWriter(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	for _, entry := range entries {
		text, err := entry.Value.String(pool)
		if err != nil {
			_ = writer.Close()
			return fmt.Errorf("%s line %d: %w", entry.Source, entry.Line, err)
		}
		record := output.Record{Source: entry.Source, Line: entry.Line, Text: text, Handles: entry.Value.Handles()}
		if err := writer.WriteRecord(record); err != nil {
			_ = writer.Close()
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	if cfg.TablePath != "" {
		if err := output.WriteTable(cfg.TablePath, pool.Values()); err != nil {
			return err
		}
	}

	logBuildSummary(logger, cfg, snapshot, pool)
	return nil
}

// stdinInput returns r unless it is an interactive terminal.
func stdinInput(r io.Reader) io.Reader {
	file, ok := r.(*os.File)
	if ok {
		if stat, err := file.Stat(); err == nil {
			if stat.Mode()&os.ModeCharDevice != 0 {
				return nil
			}
		}
	}
	return r
}

func serveMetrics(addr string, gatherer prometheus.Gatherer, logger *logging.Logger) (func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening for metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(gatherer))
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          log.New(logger.Writer(logging.LevelWarn), "", 0),
	}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("metrics server stopped: %v", err)
		}
	}()
	logger.Infof("Serving metrics on http://%s/metrics", listener.Addr())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Warnf("metrics server shutdown: %v", err)
		}
	}, nil
}

func logBuildSummary(logger *logging.Logger, cfg *config.Config, snapshot stats.Snapshot, pool intern.Table) {
	if logger == nil || cfg == nil {
		return
	}

	duration := snapshot.Duration
	durationStr := "<1s"
	if duration > 0 {
		rounded := duration.Truncate(time.Second)
		if rounded == 0 {
			rounded = duration
		}
		durationStr = rounded.String()
	}

	logger.Infof("Build complete: %d values from %d tokens across %s", snapshot.Values, snapshot.Tokens, durationStr)
	logger.Infof("Pool holds %d entries (hit rate %.1f%%, %.2f tokens per entry), fingerprint %016x", pool.Len(), snapshot.HitRate(), snapshot.DedupRatio(), pool.Fingerprint())

	if breakdown := stats.FormatSourceBreakdown(snapshot.Sources, 5); breakdown != "" {
		logger.Infof("Top inputs: %s", breakdown)
	}

	if cfg.LiveOutput() {
		logger.Infof("Records streamed to stdout using %s format", cfg.Format)
	} else {
		logger.Infof("Records saved to %s", cfg.OutputPath)
	}
	if cfg.TablePath != "" {
		logger.Infof("Table saved to %s", cfg.TablePath)
	}
}
