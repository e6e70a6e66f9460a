package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"brandforge/internal/config"
	"brandforge/internal/ledger"
	"brandforge/internal/logging"
	"brandforge/internal/pilot"
	"brandforge/internal/workflow"
)

// Daemon runs the pipeline poll loop and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	ledger   *ledger.Store
	workflow *workflow.Store
	pilot    *pilot.Pilot
	api      *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
	mu      sync.Mutex
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	LockFilePath string
	LedgerPath   string
	Stats        ledger.Stats
	Document     workflow.Document
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, ledgerStore *ledger.Store, workflowStore *workflow.Store, p *pilot.Pilot, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || ledgerStore == nil || workflowStore == nil || p == nil || logger == nil {
		return nil, errors.New("daemon requires config, stores, pilot, and logger")
	}

	lockPath := filepath.Join(cfg.Paths.StateDir, "brandforged.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		ledger:   ledgerStore,
		workflow: workflowStore,
		pilot:    p,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}

	api, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start acquires the daemon lock and launches the poll loop.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another brandforge daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}

	d.cancel = cancel
	d.done = make(chan struct{})
	d.running.Store(true)
	go d.run(runCtx)

	d.logger.Info("daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop halts the poll loop and releases the daemon lock.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	<-d.done
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close stops the daemon and releases its stores.
func (d *Daemon) Close() error {
	d.Stop()
	if d.ledger != nil {
		return d.ledger.Close()
	}
	return nil
}

// run is the poll loop. A successful step that initiated work polls again
// immediately so a single instance advances through eligible domains without
// waiting out the interval; errors back off on the retry interval.
func (d *Daemon) run(ctx context.Context) {
	defer close(d.done)

	pollInterval := time.Duration(d.cfg.Workflow.PollInterval) * time.Second
	retryInterval := time.Duration(d.cfg.Workflow.ErrorRetryInterval) * time.Second

	var wait time.Duration
	for {
		if wait > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
		} else if ctx.Err() != nil {
			return
		}

		advanced, err := d.pilot.Step(ctx)
		switch {
		case err != nil:
			if errors.Is(err, context.Canceled) {
				return
			}
			d.logger.Error("pipeline step failed", logging.Error(err))
			wait = retryInterval
		case advanced:
			wait = 0
		default:
			wait = pollInterval
		}
	}
}

// Running reports whether the poll loop is active.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) (Status, error) {
	stats, err := d.ledger.Stats(ctx)
	if err != nil {
		return Status{}, err
	}
	doc, err := d.workflow.Read()
	if err != nil {
		return Status{}, err
	}
	return Status{
		Running:      d.running.Load(),
		LockFilePath: d.lockPath,
		LedgerPath:   d.ledger.Path(),
		Stats:        stats,
		Document:     doc,
	}, nil
}
