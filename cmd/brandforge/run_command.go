package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"brandforge/internal/daemon"
	"brandforge/internal/logging"
	"brandforge/internal/media"
	"brandforge/internal/pilot"
	"brandforge/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the brandforge daemon in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemonProcess(ctx, cmd)
		},
	}
}

func runDaemonProcess(ctx *commandContext, cmd *cobra.Command) error {
	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	ledgerStore, err := ctx.openLedger()
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}

	workflowStore := workflow.NewStore(cfg.WorkflowDocumentPath(), logger)
	market, err := ctx.marketplaceClient()
	if err != nil {
		ledgerStore.Close()
		return fmt.Errorf("marketplace client: %w", err)
	}

	var mediaClient *media.Client
	if cfg.Media.BaseURL != "" && cfg.Media.APIKey != "" {
		mediaClient, err = ctx.mediaClient()
		if err != nil {
			ledgerStore.Close()
			return fmt.Errorf("media client: %w", err)
		}
	} else {
		logger.Info("media api not configured; meme briefs go out without drafts")
	}

	sink := workflow.NewSink(ledgerStore, logger)
	reconciler := workflow.NewReconciler(
		workflowStore, ledgerStore, market, sink, logger,
		workflow.WithPendingTimeout(time.Duration(cfg.Workflow.PendingTimeout)*time.Second),
	)
	gate := workflow.NewGate(workflowStore, market, jobBudget, logger)
	p := pilot.New(reconciler, gate, mediaClient, logger)

	d, err := daemon.New(cfg, ledgerStore, workflowStore, p, logger)
	if err != nil {
		ledgerStore.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return err
	}

	<-signalCtx.Done()
	logger.Info("brandforge daemon shutting down")
	return nil
}

// jobBudget is the flat spend offered per delegated job.
const jobBudget = 10
