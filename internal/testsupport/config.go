package testsupport

import (
	"path/filepath"
	"testing"

	"dubstudio/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Deepgram.APIKey = "test-deepgram"
	cfg.ElevenLabs.APIKey = "test-elevenlabs"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithDeepgramKey sets the Deepgram API key on the test config.
func WithDeepgramKey(key string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Deepgram.APIKey = key
	}
}

// WithElevenLabsKey sets the ElevenLabs API key on the test config.
func WithElevenLabsKey(key string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.ElevenLabs.APIKey = key
	}
}
