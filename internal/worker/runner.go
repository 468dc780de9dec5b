package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"winnow/internal/config"
	"winnow/internal/logging"
	"winnow/internal/queue"
)

// Evaluator produces the evaluation result for a claimed job.
type Evaluator interface {
	Evaluate(ctx context.Context, job *queue.Job) (json.RawMessage, error)
}

// EvaluatorFunc adapts a plain function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, job *queue.Job) (json.RawMessage, error)

// Evaluate implements Evaluator.
func (f EvaluatorFunc) Evaluate(ctx context.Context, job *queue.Job) (json.RawMessage, error) {
	return f(ctx, job)
}

// Options configure loop timing and locking outside the config path.
type Options struct {
	PollInterval       time.Duration
	ErrorRetryInterval time.Duration
	StaleTimeout       time.Duration
	ReclaimInterval    time.Duration
	LockPath           string
}

// Runner drives the evaluation loop and enforces single-instance execution.
type Runner struct {
	manager   *queue.Manager
	evaluator Evaluator
	logger    *slog.Logger

	pollInterval       time.Duration
	errorRetryInterval time.Duration
	staleTimeout       time.Duration
	reclaimInterval    time.Duration

	lockPath string
	lock     *flock.Flock

	// lastReclaim is only touched from the run goroutine.
	lastReclaim time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New constructs a runner with loop timing taken from the worker config.
func New(cfg *config.Config, manager *queue.Manager, evaluator Evaluator, logger *slog.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("worker requires config")
	}
	return NewWithOptions(manager, evaluator, logger, Options{
		PollInterval:       time.Duration(cfg.Worker.PollInterval) * time.Second,
		ErrorRetryInterval: time.Duration(cfg.Worker.ErrorRetryInterval) * time.Second,
		StaleTimeout:       time.Duration(cfg.Worker.StaleTimeout) * time.Second,
		ReclaimInterval:    time.Duration(cfg.Worker.ReclaimInterval) * time.Second,
		LockPath:           cfg.WorkerLockPath(),
	})
}

// NewWithOptions constructs a runner with explicit loop timing.
func NewWithOptions(manager *queue.Manager, evaluator Evaluator, logger *slog.Logger, opts Options) (*Runner, error) {
	if manager == nil || evaluator == nil {
		return nil, errors.New("worker requires manager and evaluator")
	}
	if opts.LockPath == "" {
		return nil, errors.New("worker requires a lock path")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.ErrorRetryInterval <= 0 {
		opts.ErrorRetryInterval = opts.PollInterval
	}
	return &Runner{
		manager:            manager,
		evaluator:          evaluator,
		logger:             logging.NewComponentLogger(logger, "worker"),
		pollInterval:       opts.PollInterval,
		errorRetryInterval: opts.ErrorRetryInterval,
		staleTimeout:       opts.StaleTimeout,
		reclaimInterval:    opts.ReclaimInterval,
		lockPath:           opts.LockPath,
		lock:               flock.New(opts.LockPath),
	}, nil
}

// Start acquires the worker lock and launches the evaluation loop.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return errors.New("worker already running")
	}

	ok, err := r.lock.TryLock()
	if err != nil {
		r.mu.Unlock()
		return fmt.Errorf("acquire worker lock: %w", err)
	}
	if !ok {
		r.mu.Unlock()
		return errors.New("another winnow worker instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.running = true
	r.wg.Add(1)
	r.mu.Unlock()

	go r.run(runCtx)
	r.logger.Info("worker started", logging.String("lock", r.lockPath))
	return nil
}

// Stop terminates the loop, waits for any in-flight job, and releases the lock.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	cancel := r.cancel
	r.running = false
	r.cancel = nil
	r.mu.Unlock()

	cancel()
	r.wg.Wait()
	if err := r.lock.Unlock(); err != nil {
		r.logger.Warn("failed to release worker lock", logging.Error(err))
	}
	r.logger.Info("worker stopped")
}

// Running reports whether the loop is active.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Runner) run(ctx context.Context) {
	defer r.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		r.maybeReclaim(ctx)

		job, err := r.manager.ClaimNextJob(ctx)
		if err != nil {
			r.handleClaimError(ctx, err)
			continue
		}
		if job == nil {
			r.waitForJobOrShutdown(ctx)
			continue
		}

		if err := r.process(ctx, job); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
		}
	}
}

// maybeReclaim sweeps stale running claims back to pending at most once per
// reclaim interval. The first sweep runs immediately after startup so jobs
// orphaned by a previous worker are not stuck for a full interval.
func (r *Runner) maybeReclaim(ctx context.Context) {
	if r.staleTimeout <= 0 {
		return
	}
	if !r.lastReclaim.IsZero() && time.Since(r.lastReclaim) < r.reclaimInterval {
		return
	}
	r.lastReclaim = time.Now()
	if _, err := r.manager.ReclaimStale(ctx, r.staleTimeout); err != nil {
		r.logger.Warn("reclaim stale running jobs failed; stuck jobs may remain",
			logging.Error(err),
			logging.String(logging.FieldEventType, "stale_reclaim_failed"),
			logging.String(logging.FieldErrorHint, "check job database access"),
		)
	}
}

func (r *Runner) handleClaimError(ctx context.Context, err error) {
	r.logger.Error("failed to claim next job",
		logging.Error(err),
		logging.String(logging.FieldEventType, "claim_failed"),
		logging.String(logging.FieldErrorHint, "check job database access"),
	)
	select {
	case <-ctx.Done():
	case <-time.After(r.errorRetryInterval):
	}
}

func (r *Runner) waitForJobOrShutdown(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(r.pollInterval):
	}
}

// process evaluates a claimed job and records the outcome. A context
// cancellation mid-evaluation leaves the job running; the stale sweep
// returns it to pending once the claim expires.
func (r *Runner) process(ctx context.Context, job *queue.Job) error {
	logger := r.logger.With(
		logging.String(logging.FieldJobID, job.ID),
		logging.String(logging.FieldDatasetID, job.DatasetID),
	)
	logger.Info("evaluating dataset")
	started := time.Now()

	result, evalErr := r.evaluator.Evaluate(ctx, job)
	if evalErr != nil {
		if errors.Is(evalErr, context.Canceled) {
			return evalErr
		}
		logger.Error("evaluation failed", logging.Error(evalErr))
		if err := r.manager.ReportStatus(ctx, job.ID, queue.StatusFailed, evalErr.Error()); err != nil {
			logger.Error("failed to record job failure",
				logging.Error(err),
				logging.String(logging.FieldEventType, "report_failed"),
				logging.String(logging.FieldErrorHint, "check job database access"),
			)
			return err
		}
		return nil
	}

	if err := r.manager.ReportResult(ctx, job.ID, result); err != nil {
		logger.Error("failed to record evaluation result", logging.Error(err))
		if statusErr := r.manager.ReportStatus(ctx, job.ID, queue.StatusFailed, err.Error()); statusErr != nil {
			logger.Error("failed to record job failure", logging.Error(statusErr))
		}
		return err
	}
	if err := r.manager.ReportStatus(ctx, job.ID, queue.StatusDone, ""); err != nil {
		logger.Error("failed to record job completion", logging.Error(err))
		return err
	}

	logger.Info("evaluation complete", logging.Duration("elapsed", time.Since(started)))
	return nil
}
