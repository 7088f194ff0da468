package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/hupe1980/biclique"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// prometheusCollector implements biclique.MetricsCollector.
type prometheusCollector struct {
	iterations   prometheus.Counter
	candidates   prometheus.Counter
	differential *prometheus.HistogramVec
	comparisons  *prometheus.CounterVec
	bicliques    *prometheus.CounterVec
	bestScore    prometheus.Gauge
	searches     *prometheus.CounterVec
	searchTime   prometheus.Histogram
}

var _ biclique.MetricsCollector = (*prometheusCollector)(nil)

func newPrometheusCollector(reg prometheus.Registerer) *prometheusCollector {
	c := &prometheusCollector{
		iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "biclique_iterations_total",
			Help: "Search iterations completed",
		}),
		candidates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "biclique_delta_candidates_total",
			Help: "Delta candidates processed",
		}),
		differential: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "biclique_differential_seconds",
			Help:    "Latency of differential trail construction",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"phase", "status"}),
		comparisons: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "biclique_comparisons_total",
			Help: "Independence tests by outcome",
		}, []string{"independent"}),
		bicliques: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "biclique_bicliques_total",
			Help: "Independent pairs by survivor set outcome",
		}, []string{"accepted"}),
		bestScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "biclique_last_accepted_score",
			Help: "Score of the most recently accepted biclique",
		}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "biclique_searches_total",
			Help: "Window searches by status",
		}, []string{"status"}),
		searchTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "biclique_search_seconds",
			Help:    "Duration of window searches",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.iterations,
		c.candidates,
		c.differential,
		c.comparisons,
		c.bicliques,
		c.bestScore,
		c.searches,
		c.searchTime,
	)
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (c *prometheusCollector) RecordIteration(_ int, candidates uint64, _ time.Duration) {
	c.iterations.Inc()
	c.candidates.Add(float64(candidates))
}

func (c *prometheusCollector) RecordDifferential(phase biclique.Phase, d time.Duration, err error) {
	c.differential.WithLabelValues(phase.String(), status(err)).Observe(d.Seconds())
}

func (c *prometheusCollector) RecordComparison(independent bool) {
	c.comparisons.WithLabelValues(strconv.FormatBool(independent)).Inc()
}

func (c *prometheusCollector) RecordBiclique(score int, accepted bool) {
	c.bicliques.WithLabelValues(strconv.FormatBool(accepted)).Inc()
	if accepted {
		c.bestScore.Set(float64(score))
	}
}

func (c *prometheusCollector) RecordSearch(_ int, d time.Duration, err error) {
	c.searches.WithLabelValues(status(err)).Inc()
	c.searchTime.Observe(d.Seconds())
}

// serveMetrics exposes reg on addr until ctx is done. It returns the bound
// address, which differs from addr when addr uses port 0.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *biclique.Logger) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", "addr", ln.Addr().String())
	return ln.Addr().String(), nil
}
