package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"winnow/internal/dataset"
	"winnow/internal/logging"
)

// Manager orchestrates job submission and worker reporting over the store.
//
// Submission checks for an active duplicate, resolves and validates the
// dataset, then inserts the job. Status transitions are not restricted to
// the pending, running, done, failed order; any recognized status may be
// set on any job. Claiming is the exception: ClaimNextJob only ever moves a
// pending job to running.
type Manager struct {
	store     *Store
	datasets  dataset.Store
	validator *dataset.Validator
	logger    *slog.Logger
}

// NewManager wires the store with the external dataset collaborators.
func NewManager(store *Store, datasets dataset.Store, validator *dataset.Validator, logger *slog.Logger) *Manager {
	return &Manager{
		store:     store,
		datasets:  datasets,
		validator: validator,
		logger:    logging.NewComponentLogger(logger, "queue"),
	}
}

// Submit enqueues a dataset for evaluation and returns the new pending job.
//
// ErrJobExists is returned when the dataset already has an active job.
// Validation failures propagate unchanged and leave no job behind.
func (m *Manager) Submit(ctx context.Context, datasetID string) (*Job, error) {
	exists, err := m.store.ExistsActive(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: dataset %s", ErrJobExists, datasetID)
	}

	ds, err := m.datasets.Get(ctx, datasetID)
	if err != nil {
		return nil, fmt.Errorf("resolve dataset %s: %w", datasetID, err)
	}
	if err := m.validator.Validate(ctx, ds); err != nil {
		return nil, err
	}

	job, err := m.store.Insert(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	m.logger.Info("job enqueued",
		logging.String(logging.FieldJobID, job.ID),
		logging.String(logging.FieldDatasetID, job.DatasetID))
	return job, nil
}

// NextJob returns the oldest pending job without claiming it, or nil when
// the queue is empty. An empty queue is not an error.
func (m *Manager) NextJob(ctx context.Context) (*Job, error) {
	return m.store.NextPending(ctx)
}

// ClaimNextJob atomically claims the oldest pending job for processing, or
// returns nil when none is pending.
func (m *Manager) ClaimNextJob(ctx context.Context) (*Job, error) {
	job, err := m.store.ClaimNextPending(ctx)
	if err != nil {
		return nil, err
	}
	if job != nil {
		m.logger.Debug("job claimed",
			logging.String(logging.FieldJobID, job.ID),
			logging.String(logging.FieldDatasetID, job.DatasetID))
	}
	return job, nil
}

// ReportStatus records a worker's status transition for a job.
func (m *Manager) ReportStatus(ctx context.Context, jobID string, status Status, statusMsg string) error {
	if err := m.store.SetStatus(ctx, jobID, status, statusMsg); err != nil {
		return err
	}
	m.logger.Debug("job status updated",
		logging.String(logging.FieldJobID, jobID),
		logging.String("status", string(status)))
	return nil
}

// ReportResult records a worker's evaluation output for a job.
func (m *Manager) ReportResult(ctx context.Context, jobID string, result json.RawMessage) error {
	return m.store.SetResult(ctx, jobID, result)
}

// ReclaimStale returns running jobs untouched for longer than olderThan to
// pending, so a dead worker's claims do not wedge their datasets.
func (m *Manager) ReclaimStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	reclaimed, err := m.store.ReclaimStaleRunning(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	if reclaimed > 0 {
		m.logger.Info("reclaimed stale running jobs", logging.Int64("count", reclaimed))
	}
	return reclaimed, nil
}

// Job fetches a job by identifier. Absent jobs yield a nil job and nil error.
func (m *Manager) Job(ctx context.Context, jobID string) (*Job, error) {
	return m.store.Get(ctx, jobID)
}

// JobsForDataset returns a dataset's evaluation history, oldest first.
func (m *Manager) JobsForDataset(ctx context.Context, datasetID string) ([]*Job, error) {
	return m.store.ListForDataset(ctx, datasetID)
}

// IsDuplicateJob reports whether an error came from submitting a dataset
// that already has an active job.
func IsDuplicateJob(err error) bool {
	return errors.Is(err, ErrJobExists)
}
