package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ExistsActive reports whether the dataset has a pending or running job.
func (s *Store) ExistsActive(ctx context.Context, datasetID string) (bool, error) {
	var count int
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT COUNT(1) FROM eval_jobs WHERE dataset_id = ? AND status IN (?, ?)`,
		datasetID,
		StatusPending,
		StatusRunning,
	)
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("count active jobs: %w", err)
	}
	return count > 0, nil
}

// Insert creates a pending job for a dataset and returns it. ErrJobExists is
// returned when the dataset already has an active job; the partial unique
// index closes the race between concurrent submitters.
func (s *Store) Insert(ctx context.Context, datasetID string) (*Job, error) {
	if strings.TrimSpace(datasetID) == "" {
		return nil, errors.New("dataset id is empty")
	}

	id := uuid.NewString()
	timestamp := time.Now().UTC().Format(timeLayout)

	if _, err := s.execWithRetry(
		ctx,
		`INSERT INTO eval_jobs (id, dataset_id, status, status_msg, result, created, updated)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		datasetID,
		StatusPending,
		nil,
		nil,
		timestamp,
		timestamp,
	); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: dataset %s", ErrJobExists, datasetID)
		}
		return nil, fmt.Errorf("insert job: %w", err)
	}

	return s.Get(ctx, id)
}

// Get fetches a job by identifier. Absent jobs yield a nil job and nil error.
func (s *Store) Get(ctx context.Context, jobID string) (*Job, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+jobColumns+` FROM eval_jobs WHERE id = ?`, jobID)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// ListForDataset returns every job for a dataset, oldest first.
func (s *Store) ListForDataset(ctx context.Context, datasetID string) ([]*Job, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+jobColumns+` FROM eval_jobs WHERE dataset_id = ? ORDER BY created, id`,
		datasetID,
	)
	if err != nil {
		return nil, fmt.Errorf("list jobs for dataset: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// List returns jobs filtered by status set (or all jobs when no status is
// provided), oldest first.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Job, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + jobColumns + ` FROM eval_jobs`
	orderClause := ` ORDER BY created, id`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ensureContext(ctx), baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ensureContext(ctx), query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// NextPending returns the oldest pending job without claiming it, or nil
// when the queue is empty. Use ClaimNextPending to take ownership.
func (s *Store) NextPending(ctx context.Context) (*Job, error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT `+jobColumns+` FROM eval_jobs WHERE status = ? ORDER BY created, id LIMIT 1`,
		StatusPending,
	)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next pending job: %w", err)
	}
	return job, nil
}

// ClaimNextPending transitions the oldest pending job to running and returns
// it, or nil when no job is pending. The transition and read happen in one
// statement, so concurrent claimants each receive a distinct job.
func (s *Store) ClaimNextPending(ctx context.Context) (*Job, error) {
	ctx = ensureContext(ctx)
	timestamp := time.Now().UTC().Format(timeLayout)

	var job *Job
	err := retryOnBusy(ctx, func() error {
		row := s.db.QueryRowContext(
			ctx,
			`UPDATE eval_jobs
             SET status = ?, status_msg = NULL, updated = ?
             WHERE id = (
                 SELECT id FROM eval_jobs WHERE status = ? ORDER BY created, id LIMIT 1
             )
             RETURNING `+jobColumns,
			StatusRunning,
			timestamp,
			StatusPending,
		)
		claimed, scanErr := scanJob(row)
		if errors.Is(scanErr, sql.ErrNoRows) {
			job = nil
			return nil
		}
		if scanErr != nil {
			return scanErr
		}
		job = claimed
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("claim next pending job: %w", err)
	}
	return job, nil
}

// SetStatus atomically updates a job's status, message, and updated
// timestamp. An empty message clears any prior one. ErrInvalidStatus is
// returned for values outside the recognized set, leaving the store
// unchanged. Unknown job ids are ignored, matching plain UPDATE semantics.
func (s *Store) SetStatus(ctx context.Context, jobID string, status Status, statusMsg string) error {
	normalized, ok := ParseStatus(string(status))
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, string(status))
	}

	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE eval_jobs SET status = ?, status_msg = ?, updated = ? WHERE id = ?`,
		normalized,
		nullableString(statusMsg),
		time.Now().UTC().Format(timeLayout),
		jobID,
	); err != nil {
		return fmt.Errorf("set job status: %w", err)
	}
	return nil
}

// SetResult atomically updates a job's result payload and updated timestamp,
// independent of status. A nil or empty payload clears the stored result.
// Unknown job ids are ignored.
func (s *Store) SetResult(ctx context.Context, jobID string, result json.RawMessage) error {
	if len(result) > 0 && !json.Valid(result) {
		return errors.New("result is not valid JSON")
	}

	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE eval_jobs SET result = ?, updated = ? WHERE id = ?`,
		nullableResult(result),
		time.Now().UTC().Format(timeLayout),
		jobID,
	); err != nil {
		return fmt.Errorf("set job result: %w", err)
	}
	return nil
}
