package biclique

import (
	"runtime"

	"github.com/hupe1980/biclique/bitvector"
	"github.com/hupe1980/biclique/compare"
	"github.com/hupe1980/biclique/enumerate"
	"github.com/hupe1980/biclique/rating"
	"github.com/hupe1980/biclique/resource"
)

// DefaultLogInterval is the number of candidates between progress logs.
const DefaultLogInterval = 1000

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	threads          int
	dimension        int
	comparator       compare.Comparator
	rater            rating.Rater
	stopAfterFirst   bool
	logInterval      int
	baseKey          *bitvector.Vector
	enumerator       enumerate.Factory
	memoryLimit      int64
	rc               *resource.Controller
}

func defaultOptions() options {
	return options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		threads:          runtime.GOMAXPROCS(0),
		dimension:        1,
		comparator:       compare.NewActiveComponents(compare.Nibble),
		rater:            rating.Default{},
		logInterval:      DefaultLogInterval,
		enumerator:       enumerate.WeightBoundedFactory,
	}
}

// Option configures a Searcher.
type Option func(*options)

// WithLogger configures structured logging for searches.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := biclique.NewJSONLogger(slog.LevelInfo)
//	s, _ := biclique.New(c, b, biclique.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &biclique.BasicMetricsCollector{}
//	s, _ := biclique.New(c, b, biclique.WithMetricsCollector(metrics))
//	// ... search ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithThreads sets the number of search workers (default GOMAXPROCS).
func WithThreads(n int) Option {
	return func(o *options) {
		o.threads = n
	}
}

// WithDimension sets the maximum Hamming weight of key-difference candidates.
func WithDimension(d int) Option {
	return func(o *options) {
		o.dimension = d
	}
}

// WithComparator replaces the independence test.
func WithComparator(c compare.Comparator) Option {
	return func(o *options) {
		if c != nil {
			o.comparator = c
		}
	}
}

// WithRater replaces the scoring policy.
func WithRater(r rating.Rater) Option {
	return func(o *options) {
		if r != nil {
			o.rater = r
		}
	}
}

// WithStopAfterFirst ends the search as soon as one biclique is recorded.
func WithStopAfterFirst(stop bool) Option {
	return func(o *options) {
		o.stopAfterFirst = stop
	}
}

// WithLogInterval sets the number of candidates between progress logs.
// Values <= 0 disable progress logging.
func WithLogInterval(n int) Option {
	return func(o *options) {
		o.logInterval = n
	}
}

// WithBaseKey sets the first secret key of every trail. Defaults to zero.
// The key is copied.
func WithBaseKey(key *bitvector.Vector) Option {
	return func(o *options) {
		o.baseKey = key
	}
}

// WithEnumerator replaces the candidate enumerator.
func WithEnumerator(f enumerate.Factory) Option {
	return func(o *options) {
		if f != nil {
			o.enumerator = f
		}
	}
}

// WithMemoryLimit caps the memory used for forward trails. With 0 (the
// default) the free system memory is used.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithResourceController shares rc with other searchers. Its memory limit
// replaces WithMemoryLimit, and the worker pool is capped at rc.MaxWorkers().
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}
