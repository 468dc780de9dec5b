package testsupport

import (
	"context"
	"testing"

	"winnow/internal/config"
	"winnow/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewJob enqueues a job for tests using the provided store.
func NewJob(t testing.TB, store *queue.Store, datasetID string) *queue.Job {
	t.Helper()

	job, err := store.Insert(context.Background(), datasetID)
	if err != nil {
		t.Fatalf("store.Insert: %v", err)
	}
	return job
}
