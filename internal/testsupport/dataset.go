package testsupport

import (
	"context"
	"fmt"

	"winnow/internal/dataset"
)

// NewDataset builds a dataset with the given ID and classes for tests.
func NewDataset(id string, classes ...dataset.Class) *dataset.Dataset {
	return &dataset.Dataset{
		ID:      id,
		Name:    "Dataset " + id,
		Author:  "tester",
		Public:  true,
		Classes: classes,
	}
}

// Datasets is an in-memory dataset.Store for tests.
type Datasets struct {
	// Err, when set, is returned from every Get call.
	Err  error
	byID map[string]*dataset.Dataset
}

// NewDatasets builds a Datasets store pre-populated with the given datasets.
func NewDatasets(items ...*dataset.Dataset) *Datasets {
	d := &Datasets{byID: make(map[string]*dataset.Dataset)}
	for _, item := range items {
		d.Add(item)
	}
	return d
}

// Add registers a dataset so subsequent Get calls can resolve it.
func (d *Datasets) Add(ds *dataset.Dataset) {
	d.byID[ds.ID] = ds
}

// Get implements dataset.Store.
func (d *Datasets) Get(_ context.Context, datasetID string) (*dataset.Dataset, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	ds, ok := d.byID[datasetID]
	if !ok {
		return nil, fmt.Errorf("dataset %s not found", datasetID)
	}
	return ds, nil
}

// SchemaValidator is a dataset.SchemaValidator fake that records calls.
type SchemaValidator struct {
	// Err, when set, is returned from every Validate call.
	Err error
	// Calls counts how many times Validate was invoked.
	Calls int
	// Complete records the complete flag from the most recent call.
	Complete bool
}

// Validate implements dataset.SchemaValidator.
func (v *SchemaValidator) Validate(_ *dataset.Dataset, complete bool) error {
	v.Calls++
	v.Complete = complete
	return v.Err
}

// LowLevel is a dataset.LowLevelCounter fake backed by a fixed count table.
type LowLevel struct {
	// Err, when set, is returned from every CountForRecording call.
	Err    error
	counts map[string]int
	calls  map[string]int
}

// NewLowLevel builds a LowLevel fake that reports the given submission
// counts. Recordings absent from the table count as zero.
func NewLowLevel(counts map[string]int) *LowLevel {
	return &LowLevel{
		counts: counts,
		calls:  make(map[string]int),
	}
}

// CountForRecording implements dataset.LowLevelCounter.
func (l *LowLevel) CountForRecording(_ context.Context, recordingID string) (int, error) {
	l.calls[recordingID]++
	if l.Err != nil {
		return 0, l.Err
	}
	return l.counts[recordingID], nil
}

// Calls reports how many times the given recording was looked up.
func (l *LowLevel) Calls(recordingID string) int {
	return l.calls[recordingID]
}
