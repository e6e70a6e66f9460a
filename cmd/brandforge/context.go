package main

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"brandforge/internal/config"
	"brandforge/internal/ledger"
	"brandforge/internal/logging"
	"brandforge/internal/marketplace"
	"brandforge/internal/media"
	"brandforge/internal/workflow"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) openLedger() (*ledger.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return ledger.Open(cfg)
}

func (c *commandContext) workflowStore(logger *slog.Logger) (*workflow.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return workflow.NewStore(cfg.WorkflowDocumentPath(), logger), nil
}

func (c *commandContext) marketplaceClient() (*marketplace.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return marketplace.New(
		cfg.Marketplace.BaseURL,
		cfg.Marketplace.APIKey,
		time.Duration(cfg.Marketplace.RequestTimeout)*time.Second,
	)
}

func (c *commandContext) mediaClient() (*media.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return media.New(
		cfg.Media.BaseURL,
		cfg.Media.APIKey,
		media.WithPollBudget(cfg.Media.PollAttempts, time.Duration(cfg.Media.PollDelay)*time.Second),
	)
}

func (c *commandContext) logger() *slog.Logger {
	cfg, err := c.ensureConfig()
	if err != nil {
		return logging.NewNop()
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
