package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/netcas/splitter/splitter/bwtable"
	"github.com/netcas/splitter/splitter/tunables"
)

// Config is the splitter's on-disk configuration: the operating point the
// bandwidth table was calibrated at, and where to find that table. Anything
// not covered here (window sizes, thresholds, pattern bound) is a compile-time
// tunable (splitter/tunables) rather than a runtime one, matching the
// reference control loop's split between "calibration data" and "constants".
type Config struct {
	IODepth       int    `yaml:"io_depth"`
	NumJobs       int    `yaml:"numjobs"`
	BandwidthYAML string `yaml:"bandwidth_table_yaml"`
	BandwidthBolt string `yaml:"bandwidth_table_bolt"`
}

// defaultConfig mirrors tunables' compiled-in defaults so a user can run
// without a config file at all.
func defaultConfig() Config {
	return Config{
		IODepth: tunables.IODepth,
		NumJobs: tunables.NumJobs,
	}
}

// loadConfig parses path into a Config with strict field checking: an unknown
// key is a typo, not a forward-compatible extension, so it must fail loudly
// rather than be silently ignored.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cmd: reading config %s: %w", path, err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("cmd: parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// loadBandwidthTable resolves a Config's table source, preferring the bbolt
// path (pre-converted, O(log n) lookups) over the YAML path when both are
// set.
func loadBandwidthTable(cfg Config) (splitterTable, error) {
	switch {
	case cfg.BandwidthBolt != "":
		t, err := bwtable.OpenBoltTable(cfg.BandwidthBolt)
		if err != nil {
			return nil, fmt.Errorf("cmd: opening bbolt table: %w", err)
		}
		return t, nil
	case cfg.BandwidthYAML != "":
		t, err := bwtable.LoadMemoryTableYAML(cfg.BandwidthYAML)
		if err != nil {
			return nil, fmt.Errorf("cmd: loading YAML table: %w", err)
		}
		return t, nil
	default:
		return bwtable.NewMemoryTable(nil), nil
	}
}

// splitterTable is the narrow interface cmd needs from either table backend,
// named locally so this file doesn't need to import splitter/ratio just to
// spell the method signature.
type splitterTable interface {
	Lookup(ioDepth, numJobs, splitPct int) uint64
}
