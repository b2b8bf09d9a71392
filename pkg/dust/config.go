package dust

import (
	"fmt"
	"os"
	"strconv"
)

// Default paths used when the corresponding environment variable is
// unset or empty. An explicitly empty environment variable is treated the
// same as an unset one, matching the C reference's behavior for
// DUST_INDEX/DUST_ARENA.
const (
	DefaultIndexPath = "index"
	DefaultArenaPath = "arena"
)

// Environment variable names read by ConfigFromEnv.
const (
	EnvIndexPath      = "STORE_INDEX"
	EnvArenaPath      = "STORE_ARENA"
	EnvFakeTimestamp  = "STORE_FAKE_TIMESTAMP"
)

// Config is the explicit, assembled-once configuration passed into every
// operation that needs it. There are no package-level mutable globals.
type Config struct {
	// IndexPath is the path to the index file.
	IndexPath string

	// ArenaPath is the path to the arena file.
	ArenaPath string

	// FakeTimestamp, if non-nil, is used in place of wall-clock time for
	// every block written through this configuration, for deterministic
	// testing.
	FakeTimestamp *uint64

	// IndexStrategy selects how a newly-opened index is stored.
	IndexStrategy IndexStrategy

	// NumBuckets is the bucket count used when creating a new index.
	// Zero means defaultNumBuckets.
	NumBuckets uint64

	// Logger receives diagnostic messages. A nil Logger is treated as
	// discardLogger{}.
	Logger Logger
}

// ConfigFromEnv builds a Config from STORE_INDEX, STORE_ARENA, and
// STORE_FAKE_TIMESTAMP, applying DefaultIndexPath/DefaultArenaPath when
// the corresponding variable is unset or empty. This resolution happens
// once, here, so that every caller -- including the rebuild-index command,
// which must compare its target path against "the currently configured
// index" -- compares against the same resolved value rather than a
// possibly-empty raw environment string.
func ConfigFromEnv(env map[string]string) (Config, error) {
	cfg := Config{
		IndexPath: firstNonEmpty(env[EnvIndexPath], DefaultIndexPath),
		ArenaPath: firstNonEmpty(env[EnvArenaPath], DefaultArenaPath),
	}

	if raw, ok := env[EnvFakeTimestamp]; ok && raw != "" {
		ts, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s=%q: %v", ErrLogic, EnvFakeTimestamp, raw, err)
		}

		cfg.FakeTimestamp = &ts
	}

	return cfg, nil
}

// EnvMap converts os.Environ() into the map[string]string shape
// ConfigFromEnv expects, passing the environment explicitly rather than
// reading os.Getenv ad hoc throughout the codebase.
func EnvMap() map[string]string {
	environ := os.Environ()
	m := make(map[string]string, len(environ))

	for _, kv := range environ {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				m[kv[:i]] = kv[i+1:]
				break
			}
		}
	}

	return m
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}

	return b
}
