package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/biclique"
	"github.com/hupe1980/biclique/archive"
	"github.com/hupe1980/biclique/bitvector"
	"github.com/hupe1980/biclique/cipher/toy"
	"github.com/hupe1980/biclique/compare"
	"github.com/hupe1980/biclique/rating"
	"github.com/hupe1980/biclique/resource"
	"github.com/hupe1980/biclique/resultstore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type searchFlags struct {
	runID          string
	nibbles        int
	rounds         int
	rotate         bool
	windowLength   int
	dimension      int
	threads        int
	memoryLimit    int64
	rater          string
	granularity    string
	stopAfterFirst bool
	baseKey        string
	store          string
	dir            string
	compression    string
	ioLimit        int64
	metricsAddr    string
	logFormat      string
	logLevel       string
}

func newSearchCmd(root *rootFlags) *cobra.Command {
	f := &searchFlags{}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search every configured round window and archive the results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(root.configPath)
			if err != nil {
				return err
			}
			f.apply(cmd.Flags(), &cfg)
			if err := cfg.validate(); err != nil {
				return err
			}
			return runSearch(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, f.runID)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.runID, "run-id", "", "run identifier (default: random UUID)")
	fs.IntVar(&f.nibbles, "nibbles", 0, "toy cipher width in nibbles")
	fs.IntVar(&f.rounds, "rounds", 0, "toy cipher rounds")
	fs.BoolVar(&f.rotate, "rotate", false, "enable the toy cipher nibble rotation")
	fs.IntVar(&f.windowLength, "window-length", 0, "rounds per searched window")
	fs.IntVar(&f.dimension, "dimension", 0, "biclique dimension (max key difference weight)")
	fs.IntVar(&f.threads, "threads", 0, "search workers (default: GOMAXPROCS)")
	fs.Int64Var(&f.memoryLimit, "memory-limit", 0, "trail memory limit in bytes (default: free memory, 1GiB if unknown)")
	fs.StringVar(&f.rater, "rater", "", fmt.Sprintf("biclique rater %v", rating.Names()))
	fs.StringVar(&f.granularity, "granularity", "", "independence granularity (bit, nibble, byte)")
	fs.BoolVar(&f.stopAfterFirst, "stop-after-first", false, "stop each window at the first biclique")
	fs.StringVar(&f.baseKey, "base-key", "", "base key in hex (default: zero key)")
	fs.StringVar(&f.store, "store", "", "archive store (none, local, minio, s3)")
	fs.StringVar(&f.dir, "dir", "", "directory of the local store")
	fs.StringVar(&f.compression, "compression", "", "archive compression (none, lz4, zstd)")
	fs.Int64Var(&f.ioLimit, "io-limit", 0, "archive upload limit in bytes per second")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	fs.StringVar(&f.logFormat, "log-format", "", "log format (text, json)")
	fs.StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	return cmd
}

// apply copies every flag the user set onto cfg.
func (f *searchFlags) apply(fs *pflag.FlagSet, cfg *Config) {
	set := func(name string, fn func()) {
		if fs.Changed(name) {
			fn()
		}
	}
	set("nibbles", func() { cfg.Cipher.Nibbles = f.nibbles })
	set("rounds", func() { cfg.Cipher.Rounds = f.rounds })
	set("rotate", func() { cfg.Cipher.RotateNibbles = f.rotate })
	set("window-length", func() {
		cfg.Search.WindowLength = f.windowLength
		cfg.Search.Windows = nil
	})
	set("dimension", func() { cfg.Search.Dimension = f.dimension })
	set("threads", func() { cfg.Search.Threads = f.threads })
	set("memory-limit", func() { cfg.Search.MemoryLimit = f.memoryLimit })
	set("rater", func() { cfg.Search.Rater = f.rater })
	set("granularity", func() { cfg.Search.Granularity = f.granularity })
	set("stop-after-first", func() { cfg.Search.StopAfterFirst = f.stopAfterFirst })
	set("base-key", func() { cfg.Search.BaseKey = f.baseKey })
	set("store", func() { cfg.Output.Store = f.store })
	set("dir", func() { cfg.Output.Dir = f.dir })
	set("compression", func() { cfg.Output.Compression = f.compression })
	set("io-limit", func() { cfg.Output.IOLimit = f.ioLimit })
	set("metrics-addr", func() { cfg.Metrics.Addr = f.metricsAddr })
	set("log-format", func() { cfg.Log.Format = f.logFormat })
	set("log-level", func() { cfg.Log.Level = f.logLevel })
}

func searchOptions(cfg SearchConfig, logger *biclique.Logger, mc biclique.MetricsCollector) ([]biclique.Option, error) {
	rater, err := rating.ByName(cfg.Rater)
	if err != nil {
		return nil, err
	}
	g, err := compare.ParseGranularity(cfg.Granularity)
	if err != nil {
		return nil, err
	}

	opts := []biclique.Option{
		biclique.WithLogger(logger),
		biclique.WithMetricsCollector(mc),
		biclique.WithDimension(cfg.Dimension),
		biclique.WithRater(rater),
		biclique.WithComparator(compare.NewActiveComponents(g)),
		biclique.WithStopAfterFirst(cfg.StopAfterFirst),
		biclique.WithMemoryLimit(memoryLimit(cfg, logger)),
	}
	if cfg.Threads > 0 {
		opts = append(opts, biclique.WithThreads(cfg.Threads))
	}
	if cfg.LogInterval > 0 {
		opts = append(opts, biclique.WithLogInterval(cfg.LogInterval))
	}
	if cfg.BaseKey != "" {
		key, err := bitvector.FromHex(cfg.BaseKey)
		if err != nil {
			return nil, fmt.Errorf("base key: %w", err)
		}
		opts = append(opts, biclique.WithBaseKey(key))
	}
	return opts, nil
}

// defaultMemoryLimit applies when memory_limit is unset and the host's free
// memory cannot be probed.
const defaultMemoryLimit = 1 << 30

var freeMemory = resource.FreeMemory

func memoryLimit(cfg SearchConfig, logger *biclique.Logger) int64 {
	if cfg.MemoryLimit > 0 {
		return cfg.MemoryLimit
	}
	if _, err := freeMemory(); err != nil {
		logger.Warn("free memory unknown, using default limit; set search.memory_limit or --memory-limit",
			"memory_limit", defaultMemoryLimit,
			"error", err,
		)
		return defaultMemoryLimit
	}
	return 0
}

func runSearch(ctx context.Context, stdout, stderr io.Writer, cfg Config, runID string) error {
	if runID == "" {
		runID = uuid.NewString()
	}

	logger, err := newLogger(cfg.Log, stderr)
	if err != nil {
		return err
	}
	logger = logger.WithRunID(runID)

	reg := prometheus.NewRegistry()
	collector := newPrometheusCollector(reg)
	if cfg.Metrics.Addr != "" {
		if _, err := serveMetrics(ctx, cfg.Metrics.Addr, reg, logger); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	c, err := toy.New(cfg.Cipher)
	if err != nil {
		return err
	}
	b, err := toy.NewBuilder(cfg.Cipher)
	if err != nil {
		return err
	}

	opts, err := searchOptions(cfg.Search, logger, collector)
	if err != nil {
		return err
	}
	s, err := biclique.New(c, b, opts...)
	if err != nil {
		return err
	}

	windows := cfg.windows()
	if len(windows) == 0 {
		return fmt.Errorf("%w: no window of %d rounds in a %d-round cipher",
			biclique.ErrInvalidWindow, cfg.Search.WindowLength, cfg.Cipher.Rounds)
	}

	results, searchErr := s.SearchWindows(ctx, windows)
	printResults(stdout, results)

	if len(results) > 0 {
		// Partial results of an interrupted run are still archived.
		if err := saveResults(context.WithoutCancel(ctx), stdout, cfg.Output, runID, results); err != nil {
			return errors.Join(searchErr, err)
		}
	}
	return searchErr
}

func saveResults(ctx context.Context, stdout io.Writer, cfg OutputConfig, runID string, results []*biclique.Result) error {
	store, err := openStore(ctx, cfg)
	if err != nil || store == nil {
		return err
	}
	compression, err := archive.ParseCompression(cfg.Compression)
	if err != nil {
		return err
	}

	rec := &archive.Record{
		RunID:     runID,
		CreatedAt: time.Now().UTC(),
		Results:   results,
	}
	name := resultstore.ArchiveName(runID)
	if _, err := resultstore.SaveRecord(ctx, store, name, rec, archive.WithCompression(compression)); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "archive: %s\n", name)
	return nil
}

func printResults(w io.Writer, results []*biclique.Result) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CIPHER\tWINDOW\tDIM\tCANDIDATES\tBICLIQUES\tMAX SCORE\tITERATIONS\tFAILED\tDURATION")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
			r.CipherName, r.Window, r.Dimension, r.NumDifferences, len(r.Bicliques),
			r.MaxScore, len(r.Iterations), r.FailedWorkers, r.Duration.Round(time.Microsecond))
	}
	_ = tw.Flush()
}
