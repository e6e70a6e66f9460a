package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeMarketplace()
	c.normalizeMedia()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeMarketplace() {
	if c.Marketplace.APIKey == "" {
		if value, ok := os.LookupEnv("BRANDFORGE_MARKETPLACE_API_KEY"); ok {
			c.Marketplace.APIKey = strings.TrimSpace(value)
		}
	}
	c.Marketplace.BaseURL = strings.TrimSpace(c.Marketplace.BaseURL)
	if c.Marketplace.BaseURL == "" {
		c.Marketplace.BaseURL = defaultMarketplaceBaseURL
	}
	c.Marketplace.WalletAddress = strings.TrimSpace(c.Marketplace.WalletAddress)
	if c.Marketplace.RequestTimeout <= 0 {
		c.Marketplace.RequestTimeout = defaultMarketplaceTimeout
	}
}

func (c *Config) normalizeMedia() {
	if c.Media.APIKey == "" {
		if value, ok := os.LookupEnv("BRANDFORGE_MEDIA_API_KEY"); ok {
			c.Media.APIKey = strings.TrimSpace(value)
		}
	}
	c.Media.BaseURL = strings.TrimSpace(c.Media.BaseURL)
	if c.Media.PollAttempts <= 0 {
		c.Media.PollAttempts = defaultMediaPollAttempts
	}
	if c.Media.PollDelay <= 0 {
		c.Media.PollDelay = defaultMediaPollDelay
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
