package queue_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"winnow/internal/dataset"
	"winnow/internal/logging"
	"winnow/internal/queue"
	"winnow/internal/testsupport"
)

func newManager(t *testing.T, datasets *testsupport.Datasets, lowlevel *testsupport.LowLevel) (*queue.Manager, *queue.Store) {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	validator := dataset.NewValidator(&testsupport.SchemaValidator{}, lowlevel)
	return queue.NewManager(store, datasets, validator, logging.NewNop()), store
}

func TestSubmitEnqueuesValidatedDataset(t *testing.T) {
	datasets := testsupport.NewDatasets(testsupport.NewDataset("d1",
		dataset.Class{Name: "happy", Recordings: []string{"rec-1"}},
		dataset.Class{Name: "sad", Recordings: []string{"rec-2"}},
	))
	lowlevel := testsupport.NewLowLevel(map[string]int{"rec-1": 2, "rec-2": 1})
	mgr, store := newManager(t, datasets, lowlevel)

	ctx := context.Background()
	job, err := mgr.Submit(ctx, "d1")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if job.Status != queue.StatusPending {
		t.Fatalf("expected pending job, got %s", job.Status)
	}
	if job.DatasetID != "d1" {
		t.Fatalf("expected dataset d1, got %s", job.DatasetID)
	}

	persisted, err := store.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if persisted == nil || persisted.Status != queue.StatusPending {
		t.Fatalf("expected persisted pending job, got %#v", persisted)
	}
}

func TestSubmitRejectsActiveDuplicate(t *testing.T) {
	datasets := testsupport.NewDatasets(testsupport.NewDataset("d1",
		dataset.Class{Name: "happy", Recordings: []string{"rec-1"}},
	))
	lowlevel := testsupport.NewLowLevel(map[string]int{"rec-1": 1})
	mgr, _ := newManager(t, datasets, lowlevel)

	ctx := context.Background()
	if _, err := mgr.Submit(ctx, "d1"); err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}

	_, err := mgr.Submit(ctx, "d1")
	if !queue.IsDuplicateJob(err) {
		t.Fatalf("expected duplicate job error, got %v", err)
	}

	history, err := mgr.JobsForDataset(ctx, "d1")
	if err != nil {
		t.Fatalf("JobsForDataset: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected a single job, got %d", len(history))
	}
}

func TestSubmitAllowsResubmitAfterTerminalJob(t *testing.T) {
	datasets := testsupport.NewDatasets(testsupport.NewDataset("d1",
		dataset.Class{Name: "happy", Recordings: []string{"rec-1"}},
	))
	lowlevel := testsupport.NewLowLevel(map[string]int{"rec-1": 1})
	mgr, _ := newManager(t, datasets, lowlevel)

	ctx := context.Background()
	first, err := mgr.Submit(ctx, "d1")
	if err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}
	if err := mgr.ReportStatus(ctx, first.ID, queue.StatusDone, ""); err != nil {
		t.Fatalf("ReportStatus: %v", err)
	}

	if _, err := mgr.Submit(ctx, "d1"); err != nil {
		t.Fatalf("expected resubmit after done, got %v", err)
	}
}

func TestSubmitRejectsIncompleteDataset(t *testing.T) {
	datasets := testsupport.NewDatasets(testsupport.NewDataset("d1",
		dataset.Class{Name: "happy", Recordings: []string{"rec-1", "rec-2"}},
	))
	lowlevel := testsupport.NewLowLevel(map[string]int{"rec-1": 1})
	mgr, _ := newManager(t, datasets, lowlevel)

	ctx := context.Background()
	_, err := mgr.Submit(ctx, "d1")
	if !errors.Is(err, dataset.ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
	var missing *dataset.MissingDataError
	if !errors.As(err, &missing) || missing.RecordingID != "rec-2" {
		t.Fatalf("expected missing data for rec-2, got %v", err)
	}

	history, err := mgr.JobsForDataset(ctx, "d1")
	if err != nil {
		t.Fatalf("JobsForDataset: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected no job for invalid dataset, got %d", len(history))
	}
}

func TestSubmitReportsUnknownDataset(t *testing.T) {
	mgr, _ := newManager(t, testsupport.NewDatasets(), testsupport.NewLowLevel(nil))

	_, err := mgr.Submit(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error for unknown dataset")
	}
	if !strings.Contains(err.Error(), "resolve dataset missing") {
		t.Fatalf("expected resolve context in error, got %v", err)
	}
}

func TestClaimNextJobTransitionsOldest(t *testing.T) {
	datasets := testsupport.NewDatasets(
		testsupport.NewDataset("d1", dataset.Class{Name: "happy", Recordings: []string{"rec-1"}}),
		testsupport.NewDataset("d2", dataset.Class{Name: "happy", Recordings: []string{"rec-1"}}),
	)
	lowlevel := testsupport.NewLowLevel(map[string]int{"rec-1": 1})
	mgr, _ := newManager(t, datasets, lowlevel)

	ctx := context.Background()
	first, err := mgr.Submit(ctx, "d1")
	if err != nil {
		t.Fatalf("Submit d1: %v", err)
	}
	second, err := mgr.Submit(ctx, "d2")
	if err != nil {
		t.Fatalf("Submit d2: %v", err)
	}

	claimed, err := mgr.ClaimNextJob(ctx)
	if err != nil {
		t.Fatalf("ClaimNextJob: %v", err)
	}
	if claimed == nil || claimed.ID != first.ID || claimed.Status != queue.StatusRunning {
		t.Fatalf("expected first job running, got %#v", claimed)
	}

	next, err := mgr.NextJob(ctx)
	if err != nil {
		t.Fatalf("NextJob: %v", err)
	}
	if next == nil || next.ID != second.ID {
		t.Fatalf("expected second job pending next, got %#v", next)
	}
}

func TestReportStatusAndResult(t *testing.T) {
	datasets := testsupport.NewDatasets(testsupport.NewDataset("d1",
		dataset.Class{Name: "happy", Recordings: []string{"rec-1"}},
	))
	lowlevel := testsupport.NewLowLevel(map[string]int{"rec-1": 1})
	mgr, _ := newManager(t, datasets, lowlevel)

	ctx := context.Background()
	if _, err := mgr.Submit(ctx, "d1"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	claimed, err := mgr.ClaimNextJob(ctx)
	if err != nil {
		t.Fatalf("ClaimNextJob: %v", err)
	}

	payload := []byte(`{"accuracy": 0.87}`)
	if err := mgr.ReportResult(ctx, claimed.ID, payload); err != nil {
		t.Fatalf("ReportResult: %v", err)
	}
	if err := mgr.ReportStatus(ctx, claimed.ID, queue.StatusDone, ""); err != nil {
		t.Fatalf("ReportStatus: %v", err)
	}

	job, err := mgr.Job(ctx, claimed.ID)
	if err != nil {
		t.Fatalf("Job: %v", err)
	}
	if job.Status != queue.StatusDone {
		t.Fatalf("expected done job, got %s", job.Status)
	}
	if string(job.Result) != string(payload) {
		t.Fatalf("expected stored result, got %s", job.Result)
	}

	if err := mgr.ReportStatus(ctx, claimed.ID, queue.Status("nope"), ""); !errors.Is(err, queue.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}
