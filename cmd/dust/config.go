package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"

	"github.com/ungetc/dust/pkg/dust"
)

// cliConfigFileName is the default name of the optional ambient config
// file, looked for in the working directory.
const cliConfigFileName = ".dust.json"

// cliConfig holds ambient settings the three named environment variables
// don't cover: defaults for newly created indexes, and verbosity. It never
// overrides STORE_INDEX/STORE_ARENA/STORE_FAKE_TIMESTAMP, which always
// come from the environment.
type cliConfig struct {
	// NumBuckets is the bucket count used when creating a new index.
	NumBuckets uint64 `json:"num_buckets"`

	// Mmap selects the mmap index storage strategy for newly opened
	// indexes instead of the stdio default.
	Mmap bool `json:"mmap"`

	// Verbose enables diagnostic logging to stderr.
	Verbose bool `json:"verbose"`
}

func defaultCLIConfig() cliConfig {
	return cliConfig{NumBuckets: 0, Mmap: false, Verbose: false}
}

// loadCLIConfig applies a defaults -> file precedence: start from
// defaultCLIConfig, then overlay whatever the JSONC file (standardized to
// JSON via hujson, then decoded) sets. A missing file is not an error.
func loadCLIConfig(path string) (cliConfig, error) {
	cfg := defaultCLIConfig()

	if path == "" {
		path = cliConfigFileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}

		return cliConfig{}, fmt.Errorf("read config %q: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return cliConfig{}, fmt.Errorf("parse config %q: %w", path, err)
	}

	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return cliConfig{}, fmt.Errorf("decode config %q: %w", path, err)
	}

	return cfg, nil
}

func (c cliConfig) indexStrategy() dust.IndexStrategy {
	if c.Mmap {
		return dust.IndexMmap
	}

	return dust.IndexStdio
}
