package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/hupe1980/biclique/archive"
	"github.com/hupe1980/biclique/cipher"
	"github.com/hupe1980/biclique/cipher/toy"
	"github.com/hupe1980/biclique/compare"
	"github.com/hupe1980/biclique/rating"
	"github.com/hupe1980/biclique/resultstore/minio"
	"gopkg.in/yaml.v3"
)

// Config is the YAML configuration of the CLI. Flags override file values.
type Config struct {
	Cipher  toy.Config    `yaml:"cipher"`
	Search  SearchConfig  `yaml:"search"`
	Output  OutputConfig  `yaml:"output"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// SearchConfig configures the searcher and the windows to search.
type SearchConfig struct {
	// Windows lists explicit round windows. If empty, all windows of
	// WindowLength rounds are searched.
	Windows      []cipher.Window `yaml:"windows"`
	WindowLength int             `yaml:"window_length"`

	Dimension      int    `yaml:"dimension"`
	Threads        int    `yaml:"threads"` // 0 means GOMAXPROCS
	MemoryLimit    int64  `yaml:"memory_limit"`
	Rater          string `yaml:"rater"`
	Granularity    string `yaml:"granularity"`
	StopAfterFirst bool   `yaml:"stop_after_first"`
	LogInterval    int    `yaml:"log_interval"`
	BaseKey        string `yaml:"base_key"` // hex
}

// OutputConfig selects where archives are written.
type OutputConfig struct {
	// Store is one of none, local, minio or s3.
	Store       string       `yaml:"store"`
	Dir         string       `yaml:"dir"`
	Compression string       `yaml:"compression"`
	IOLimit     int64        `yaml:"io_limit"` // bytes per second, 0 = unlimited
	S3          S3Config     `yaml:"s3"`
	Minio       minio.Config `yaml:"minio"`
}

// S3Config configures the S3 store.
type S3Config struct {
	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Format string `yaml:"format"` // text or json
	Level  string `yaml:"level"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the listen address of /metrics, e.g. ":2112". Empty disables it.
	Addr string `yaml:"addr"`
}

func defaultConfig() Config {
	return Config{
		Cipher: toy.DefaultConfig,
		Search: SearchConfig{
			WindowLength: 2,
			Dimension:    1,
			Rater:        "default",
			Granularity:  compare.Nibble.String(),
			LogInterval:  1000,
		},
		Output: OutputConfig{
			Store:       "local",
			Dir:         "results",
			Compression: archive.CompressionZstd.String(),
		},
		Log: LogConfig{
			Format: "text",
			Level:  "info",
		},
	}
}

// loadConfig reads path on top of the defaults. An empty path yields the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// validate checks the values the library cannot check itself.
func (c Config) validate() error {
	if _, err := rating.ByName(c.Search.Rater); err != nil {
		return err
	}
	if _, err := compare.ParseGranularity(c.Search.Granularity); err != nil {
		return err
	}
	if _, err := archive.ParseCompression(c.Output.Compression); err != nil {
		return err
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	switch c.Output.Store {
	case "none", "local", "minio", "s3":
	default:
		return fmt.Errorf("unknown output store %q", c.Output.Store)
	}
	if len(c.Search.Windows) == 0 && c.Search.WindowLength < 1 {
		return fmt.Errorf("window_length must be positive, got %d", c.Search.WindowLength)
	}
	return nil
}

// windows returns the configured windows, or all windows of WindowLength.
func (c Config) windows() []cipher.Window {
	if len(c.Search.Windows) > 0 {
		return c.Search.Windows
	}
	return cipher.Windows(c.Cipher.Rounds, c.Search.WindowLength)
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}
