package dataset

import (
	"errors"
	"fmt"
)

// ErrIncomplete indicates a dataset is not ready for evaluation, either
// structurally or because referenced data is missing.
var ErrIncomplete = errors.New("dataset incomplete")

// MissingDataError reports a recording referenced by the dataset that has no
// low-level feature data.
type MissingDataError struct {
	RecordingID string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("no low-level data for recording %s", e.RecordingID)
}

func (e *MissingDataError) Unwrap() error {
	return ErrIncomplete
}
