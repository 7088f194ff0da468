package main

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/biclique"
	"github.com/hupe1980/biclique/cipher"
	"github.com/hupe1980/biclique/cipher/toy"
	"github.com/hupe1980/biclique/rating"
	"github.com/hupe1980/biclique/resource"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(t.Context())
	return stdout.String(), err
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	require.NoError(t, cfg.validate())
	assert.Equal(t, []cipher.Window{{FromRound: 1, ToRound: 2}}, cfg.windows())

	path := filepath.Join(t.TempDir(), "biclique.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
cipher:
  nibbles: 4
  rounds: 3
  rotate_nibbles: true
search:
  windows:
    - {from: 1, to: 2}
    - {from: 2, to: 3}
  dimension: 2
  rater: active-bytes
  granularity: byte
output:
  store: none
log:
  format: json
  level: debug
`), 0o600))

	cfg, err = loadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.validate())

	assert.Equal(t, 4, cfg.Cipher.Nibbles)
	assert.True(t, cfg.Cipher.RotateNibbles)
	assert.Equal(t, 2, cfg.Search.Dimension)
	assert.Equal(t, "active-bytes", cfg.Search.Rater)
	assert.Equal(t, 1000, cfg.Search.LogInterval, "unset keys keep their defaults")
	assert.Len(t, cfg.windows(), 2)

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_ValidateRejects(t *testing.T) {
	mutations := map[string]func(*Config){
		"rater":       func(c *Config) { c.Search.Rater = "nope" },
		"granularity": func(c *Config) { c.Search.Granularity = "word" },
		"compression": func(c *Config) { c.Output.Compression = "brotli" },
		"store":       func(c *Config) { c.Output.Store = "ftp" },
		"log level":   func(c *Config) { c.Log.Level = "loud" },
		"log format":  func(c *Config) { c.Log.Format = "xml" },
		"window":      func(c *Config) { c.Search.WindowLength = 0 },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			cfg := defaultConfig()
			mutate(&cfg)
			assert.Error(t, cfg.validate())
		})
	}

	cfg := defaultConfig()
	cfg.Search.Rater = "nope"
	assert.ErrorIs(t, cfg.validate(), rating.ErrUnknownRater)
}

func TestSearchListInspect(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "search",
		"--store", "local", "--dir", dir,
		"--run-id", "test-run",
		"--threads", "2",
		"--memory-limit", "1048576",
		"--compression", "lz4",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "toy8")
	assert.Contains(t, out, "[1,2]")
	assert.Contains(t, out, "archive: runs/test-run.bcq")

	out, err = execute(t, "list", "--dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "runs/test-run.bcq\n", out)

	out, err = execute(t, "inspect", "--dir", dir, "--bicliques", "runs/test-run.bcq")
	require.NoError(t, err)
	assert.Contains(t, out, "run:         test-run")
	assert.Contains(t, out, "json/lz4")
	assert.Contains(t, out, "max score:   4")
	assert.Contains(t, out, "Biclique(toy8")

	out, err = execute(t, "inspect", "--file", "--json", filepath.Join(dir, "runs", "test-run.bcq"))
	require.NoError(t, err)
	assert.Contains(t, out, `"runId": "test-run"`)

	_, err = execute(t, "inspect", "--dir", dir, "runs/missing.bcq")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSearch_NoStoreAndBadWindow(t *testing.T) {
	out, err := execute(t, "search", "--store", "none", "--dimension", "0")
	require.NoError(t, err)
	assert.NotContains(t, out, "archive:")

	_, err = execute(t, "search", "--store", "none", "--window-length", "3")
	assert.ErrorIs(t, err, biclique.ErrInvalidWindow)

	_, err = execute(t, "search", "--rater", "nope")
	assert.ErrorIs(t, err, rating.ErrUnknownRater)
}

func TestMemoryLimit_FallsBackWhenFreeMemoryUnknown(t *testing.T) {
	saved := freeMemory
	t.Cleanup(func() { freeMemory = saved })

	var buf bytes.Buffer
	logger := biclique.NewLogger(slog.NewTextHandler(&buf, nil))

	freeMemory = func() (int64, error) { return 0, resource.ErrMemoryProbe }
	assert.Equal(t, int64(defaultMemoryLimit), memoryLimit(SearchConfig{}, logger))
	assert.Contains(t, buf.String(), "search.memory_limit")
	assert.Equal(t, int64(4096), memoryLimit(SearchConfig{MemoryLimit: 4096}, logger))

	buf.Reset()
	freeMemory = func() (int64, error) { return 1 << 30, nil }
	assert.Zero(t, memoryLimit(SearchConfig{}, logger), "known free memory keeps the free-memory default")
	assert.Empty(t, buf.String())
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "biclique dev")
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestPrometheusCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	mc := newPrometheusCollector(reg)

	cfg := defaultConfig()
	opts, err := searchOptions(cfg.Search, biclique.NoopLogger(), mc)
	require.NoError(t, err)

	c, b := toyPair(t, cfg)
	s, err := biclique.New(c, b, append(opts, biclique.WithMemoryLimit(1<<20))...)
	require.NoError(t, err)
	_, err = s.Search(t.Context(), cipher.Window{FromRound: 1, ToRound: 2})
	require.NoError(t, err)

	assert.Equal(t, float64(1), counterValue(t, reg, "biclique_searches_total"))
	assert.Equal(t, float64(8), counterValue(t, reg, "biclique_delta_candidates_total"))
	assert.Equal(t, float64(64), counterValue(t, reg, "biclique_comparisons_total"))
	assert.Equal(t, float64(32), counterValue(t, reg, "biclique_bicliques_total"))
}

func TestServeMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	newPrometheusCollector(reg)

	addr, err := serveMetrics(t.Context(), "127.0.0.1:0", reg, biclique.NoopLogger())
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "biclique_iterations_total")
}

func toyPair(t *testing.T, cfg Config) (*toy.Cipher, *toy.Builder) {
	t.Helper()
	c, err := toy.New(cfg.Cipher)
	require.NoError(t, err)
	b, err := toy.NewBuilder(cfg.Cipher)
	require.NoError(t, err)
	return c, b
}
