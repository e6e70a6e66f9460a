package testsupport

import (
	"path/filepath"
	"testing"

	"brandforge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Marketplace.APIKey = "test"
	cfgVal.Marketplace.WalletAddress = "0xtest"
	cfgVal.Media.APIKey = "test"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	return builder.cfg
}

// WithMarketplaceBaseURL points the marketplace client at a test server.
func WithMarketplaceBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Marketplace.BaseURL = url
	}
}

// WithMediaBaseURL points the media client at a test server.
func WithMediaBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Media.BaseURL = url
	}
}

// WithAPIToken enables bearer authentication on the status API.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.APIToken = token
	}
}

// WithPendingTimeout overrides the pending-job deadline in seconds.
func WithPendingTimeout(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workflow.PendingTimeout = seconds
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
