package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMarketplace(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateMedia(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateMarketplace() error {
	if c.Marketplace.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/brandforge/config.toml"
		}
		return fmt.Errorf("marketplace.api_key is required. Set BRANDFORGE_MARKETPLACE_API_KEY env var or edit %s (create with 'brandforge config init')", defaultPath)
	}
	if c.Marketplace.WalletAddress == "" {
		return errors.New("marketplace.wallet_address must be set")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if err := ensurePositiveMap(map[string]int{
		"workflow.poll_interval":        c.Workflow.PollInterval,
		"workflow.error_retry_interval": c.Workflow.ErrorRetryInterval,
		"marketplace.request_timeout":   c.Marketplace.RequestTimeout,
	}); err != nil {
		return err
	}
	if c.Workflow.PendingTimeout < 0 {
		return errors.New("workflow.pending_timeout must be zero or positive")
	}
	return nil
}

func (c *Config) validateMedia() error {
	if c.Media.PollAttempts <= 0 {
		return errors.New("media.poll_attempts must be positive")
	}
	if c.Media.PollDelay <= 0 {
		return errors.New("media.poll_delay must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for name, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
