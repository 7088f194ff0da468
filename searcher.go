package biclique

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hupe1980/biclique/bitvector"
	"github.com/hupe1980/biclique/cipher"
	"github.com/hupe1980/biclique/differential"
	"github.com/hupe1980/biclique/enumerate"
	"github.com/hupe1980/biclique/resource"
	"github.com/hupe1980/biclique/model"
)

// Searcher searches round windows of one cipher for bicliques.
//
// A Searcher owns a fixed pool of workers sized to the configured thread
// count. The pool is reused by every phase and every search, so searches on
// one Searcher run one at a time. Searchers sharing a resource controller run
// concurrently within its worker slots and memory limit.
type Searcher struct {
	cipher  cipher.Cipher
	builder differential.Builder
	opts    options
	rc      *resource.Controller

	mu      sync.Mutex
	workers []*worker
	forward []*differential.Differential
}

// worker is the per-goroutine state of one pool slot.
type worker struct {
	id    int
	quota uint64

	// forward collects delta trails without locking; merged after the join.
	forward []*differential.Differential

	candidates  uint64
	comparisons uint64
	independent uint64
	err         *WorkerError
}

func (w *worker) reset(quota uint64) {
	clear(w.forward)
	w.forward = w.forward[:0]
	w.quota = quota
	w.candidates = 0
	w.comparisons = 0
	w.independent = 0
	w.err = nil
}

// New creates a Searcher for c whose trails are built by b.
func New(c cipher.Cipher, b differential.Builder, optFns ...Option) (*Searcher, error) {
	if c == nil {
		return nil, ErrNilCipher
	}
	if b == nil {
		return nil, ErrNilBuilder
	}

	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}

	if o.threads <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidThreads, o.threads)
	}
	numBits := c.KeySize() * 8
	if o.dimension < 0 || o.dimension > numBits {
		return nil, &ErrInvalidDimension{Dimension: o.dimension, NumBits: numBits}
	}
	switch {
	case o.baseKey == nil:
		o.baseKey = bitvector.New(c.KeySize())
	case o.baseKey.Len() != c.KeySize():
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrInvalidBaseKey, o.baseKey.Len(), c.KeySize())
	default:
		o.baseKey = o.baseKey.Clone()
	}

	rc := o.rc
	if rc == nil {
		rc = resource.NewController(resource.Config{
			MemoryLimitBytes: o.memoryLimit,
			MaxWorkers:       int64(o.threads),
		})
	}
	threads := int(min(int64(o.threads), rc.MaxWorkers()))

	s := &Searcher{
		cipher:  c,
		builder: b,
		opts:    o,
		rc:      rc,
		workers: make([]*worker, threads),
	}
	for i := range s.workers {
		s.workers[i] = &worker{id: i}
	}
	return s, nil
}

// Threads returns the size of the worker pool.
func (s *Searcher) Threads() int { return len(s.workers) }

// Dimension returns the configured candidate weight bound.
func (s *Searcher) Dimension() int { return s.opts.dimension }

// SearchWindows searches each window in order. It stops at the first fatal
// error and returns the results gathered so far.
func (s *Searcher) SearchWindows(ctx context.Context, windows []cipher.Window) ([]*Result, error) {
	results := make([]*Result, 0, len(windows))
	for _, w := range windows {
		res, err := s.Search(ctx, w)
		if res != nil {
			results = append(results, res)
		}
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// Search finds the maximal-score bicliques of window w.
//
// Configuration and memory errors are returned before any work starts. Worker
// failures only reduce coverage and are reported in Result.WorkerErrors. If
// ctx is cancelled the partial result is returned together with ctx.Err().
func (s *Searcher) Search(ctx context.Context, w cipher.Window) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	log := s.opts.logger.WithCipher(s.cipher.Name()).WithWindow(w)

	plan, err := s.Plan(w)
	if err != nil {
		s.opts.metricsCollector.RecordSearch(0, time.Since(start), err)
		log.LogSearch(ctx, 0, 0, time.Since(start), err)
		return nil, err
	}
	log.LogPlan(ctx, plan)

	// Key setup happens once, before any worker exists.
	if err := s.cipher.SetKey(s.opts.baseKey.Clone()); err != nil {
		err = fmt.Errorf("%w: %w", ErrInvalidBaseKey, err)
		s.opts.metricsCollector.RecordSearch(0, time.Since(start), err)
		log.LogSearch(ctx, 0, 0, time.Since(start), err)
		return nil, err
	}

	res := &Result{
		CipherName:     s.cipher.Name(),
		Window:         w,
		Dimension:      s.opts.dimension,
		NumDifferences: plan.NumDifferences,
		Plan:           plan,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	r := &run{
		s:       s,
		window:  w,
		plan:    plan,
		log:     log,
		surv:    newSurvivors(s.opts.stopAfterFirst),
		cancel:  cancel,
		numBits: s.cipher.KeySize() * 8,
	}

	err = r.iterate(runCtx, res)

	items, maxScore := r.surv.Snapshot()
	res.Bicliques = items
	res.MaxScore = maxScore
	res.StoppedEarly = r.stopped.Load()
	res.FailedWorkers = len(r.errs)
	res.WorkerErrors = errors.Join(r.errs...)
	res.Duration = time.Since(start)

	if err == nil {
		err = ctx.Err()
	}
	s.opts.metricsCollector.RecordSearch(len(items), res.Duration, err)
	log.LogSearch(ctx, len(items), maxScore, res.Duration, err)

	if err != nil && ctx.Err() == nil {
		return nil, err
	}
	return res, err
}

// run is the state of one Search call.
type run struct {
	s       *Searcher
	window  cipher.Window
	plan    Plan
	log     *Logger
	surv    *survivors
	cancel  context.CancelFunc
	stopped atomic.Bool
	errs    []error
	numBits int
}

func (r *run) iterate(ctx context.Context, res *Result) error {
	if r.plan.Iterations == 0 {
		return nil
	}

	// The delta enumerator is shared by every iteration, so each iteration
	// continues where the previous one stopped.
	deltaEnum := r.s.opts.enumerator()
	if _, err := deltaEnum.Init(r.s.opts.dimension, r.numBits); err != nil {
		return &ErrInvalidDimension{Dimension: r.s.opts.dimension, NumBits: r.numBits, cause: err}
	}

	for i := 0; i < r.plan.Iterations; i++ {
		if ctx.Err() != nil {
			break
		}

		start := time.Now()
		size := r.plan.IterationSize(i)
		reserved := int64(size) * r.plan.BytesPerTrail
		if err := r.s.rc.AcquireMemory(reserved); err != nil {
			return fmt.Errorf("%w: iteration %d: %w", ErrInsufficientMemory, i, err)
		}
		r.log.LogReservation(ctx, i, reserved, r.s.rc.MemoryUsage())

		stats := IterationStats{Index: i}
		forward := r.deltaPhase(ctx, deltaEnum, size, &stats)
		err := r.nablaPhase(ctx, forward, &stats)

		clear(r.s.forward)
		r.s.forward = r.s.forward[:0]
		r.s.rc.ReleaseMemory(reserved)

		if err != nil {
			return err
		}

		stats.Duration = time.Since(start)
		res.Iterations = append(res.Iterations, stats)
		r.s.opts.metricsCollector.RecordIteration(i, stats.DeltaCandidates, stats.Duration)
	}
	return nil
}

func (r *run) deltaPhase(ctx context.Context, enum enumerate.Enumerator, size uint64, stats *IterationStats) []*differential.Differential {
	start := time.Now()
	progress := r.newProgress(DeltaPhase, size)

	r.runWorkers(ctx, DeltaPhase, size, func(w *worker) error {
		return r.deltaWorker(ctx, w, enum, progress)
	})

	forward := r.s.forward[:0]
	for _, w := range r.s.workers {
		forward = append(forward, w.forward...)
		stats.DeltaCandidates += w.candidates
	}
	r.s.forward = forward
	stats.ForwardTrails = len(forward)

	r.log.LogPhase(ctx, DeltaPhase, stats.Index, stats.DeltaCandidates, time.Since(start))
	return forward
}

func (r *run) deltaWorker(ctx context.Context, w *worker, enum enumerate.Enumerator, progress *progress) error {
	for i := uint64(0); i < w.quota; i++ {
		if ctx.Err() != nil {
			return nil
		}
		cand, ok := enum.Next()
		if !ok {
			return nil
		}
		w.candidates++

		start := time.Now()
		trail, err := r.s.builder.ForwardDifferential(ctx, r.request(cand, r.window.FromRound-1))
		r.s.opts.metricsCollector.RecordDifferential(DeltaPhase, time.Since(start), err)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("forward differential for %s: %w", cand, err)
		}

		w.forward = append(w.forward, trail)
		progress.step(ctx)
	}
	return nil
}

func (r *run) nablaPhase(ctx context.Context, forward []*differential.Differential, stats *IterationStats) error {
	start := time.Now()

	// Every iteration replays the whole backward sequence against its slice
	// of forward trails.
	enum := r.s.opts.enumerator()
	total, err := enum.Init(r.s.opts.dimension, r.numBits)
	if err != nil {
		return &ErrInvalidDimension{Dimension: r.s.opts.dimension, NumBits: r.numBits, cause: err}
	}
	progress := r.newProgress(NablaPhase, total)

	r.runWorkers(ctx, NablaPhase, total, func(w *worker) error {
		return r.nablaWorker(ctx, w, enum, forward, progress)
	})

	for _, w := range r.s.workers {
		stats.NablaCandidates += w.candidates
		stats.Comparisons += w.comparisons
		stats.Independent += w.independent
	}

	r.log.LogPhase(ctx, NablaPhase, stats.Index, stats.NablaCandidates, time.Since(start))
	return nil
}

func (r *run) nablaWorker(ctx context.Context, w *worker, enum enumerate.Enumerator, forward []*differential.Differential, progress *progress) error {
	opts := &r.s.opts
	for i := uint64(0); i < w.quota; i++ {
		if ctx.Err() != nil {
			return nil
		}
		cand, ok := enum.Next()
		if !ok {
			return nil
		}
		w.candidates++

		start := time.Now()
		nabla, err := r.s.builder.BackwardDifferential(ctx, r.request(cand, r.window.ToRound))
		opts.metricsCollector.RecordDifferential(NablaPhase, time.Since(start), err)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("backward differential for %s: %w", cand, err)
		}

		for _, delta := range forward {
			if ctx.Err() != nil {
				return nil
			}
			shared, err := opts.comparator.ShareActiveNonLinearOperations(delta, nabla)
			if err != nil {
				return fmt.Errorf("compare: %w", err)
			}
			w.comparisons++
			opts.metricsCollector.RecordComparison(!shared)
			if shared {
				continue
			}
			w.independent++

			b, err := model.New(r.s.cipher.Name(), opts.dimension, delta, nabla)
			if err != nil {
				return err
			}
			score := opts.rater.Score(b)
			accepted := r.surv.Offer(b, score)
			opts.metricsCollector.RecordBiclique(score, accepted)

			if accepted && opts.stopAfterFirst {
				r.stopped.Store(true)
				r.cancel()
				return nil
			}
		}
		progress.step(ctx)
	}
	return nil
}

func (r *run) request(cand *bitvector.Vector, pivot int) differential.Request {
	return differential.Request{
		FromRound:     r.window.FromRound,
		ToRound:       r.window.ToRound,
		KeyDifference: cand,
		BaseKey:       r.s.opts.baseKey.Clone(),
		PivotRound:    pivot,
	}
}

// runWorkers splits total evenly across the pool, the last worker taking the
// remainder, and blocks until every worker has returned. Workers with an
// empty quota are not started.
func (r *run) runWorkers(ctx context.Context, phase Phase, total uint64, fn func(w *worker) error) {
	n := uint64(len(r.s.workers))
	per := total / n

	var g errgroup.Group
	for i, w := range r.s.workers {
		quota := per
		if i == len(r.s.workers)-1 {
			quota += total % n
		}
		w.reset(quota)
		if quota == 0 {
			continue
		}
		g.Go(func() error {
			r.work(ctx, w, phase, fn)
			return nil
		})
	}
	_ = g.Wait()

	for _, w := range r.s.workers {
		if w.err != nil {
			r.errs = append(r.errs, w.err)
		}
	}
}

// work runs fn in a worker slot. Errors and panics stop only this worker.
func (r *run) work(ctx context.Context, w *worker, phase Phase, fn func(w *worker) error) {
	if err := r.s.rc.AcquireWorker(ctx); err != nil {
		return
	}
	defer r.s.rc.ReleaseWorker()

	var err error
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
		if err != nil {
			w.err = &WorkerError{Worker: w.id, Phase: phase, Err: err}
			r.log.LogWorkerError(ctx, w.err)
		}
	}()
	err = fn(w)
}

// progress counts processed candidates of one phase and logs every
// logInterval of them.
type progress struct {
	log       *Logger
	phase     Phase
	total     uint64
	done      atomic.Uint64
	sometimes *rate.Sometimes
}

func (r *run) newProgress(phase Phase, total uint64) *progress {
	p := &progress{log: r.log, phase: phase, total: total}
	if r.s.opts.logInterval > 0 {
		p.sometimes = &rate.Sometimes{Every: r.s.opts.logInterval}
	}
	return p
}

func (p *progress) step(ctx context.Context) {
	done := p.done.Add(1)
	if p.sometimes == nil {
		return
	}
	p.sometimes.Do(func() {
		p.log.LogProgress(ctx, p.phase, done, p.total)
	})
}
