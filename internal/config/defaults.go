package config

const (
	defaultStateDir           = "~/.local/share/brandforge/state"
	defaultLogDir             = "~/.local/share/brandforge/logs"
	defaultAPIBind            = "127.0.0.1:7519"
	defaultMarketplaceBaseURL = "https://acp.virtuals.io/api"
	defaultMarketplaceTimeout = 30
	defaultMediaPollAttempts  = 10
	defaultMediaPollDelay     = 5
	defaultPollInterval       = 10
	defaultErrorRetryInterval = 15
	defaultPendingTimeout     = 1800
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
			APIBind:  defaultAPIBind,
		},
		Marketplace: Marketplace{
			BaseURL:        defaultMarketplaceBaseURL,
			RequestTimeout: defaultMarketplaceTimeout,
		},
		Media: Media{
			PollAttempts: defaultMediaPollAttempts,
			PollDelay:    defaultMediaPollDelay,
		},
		Workflow: Workflow{
			PollInterval:       defaultPollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			PendingTimeout:     defaultPendingTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
