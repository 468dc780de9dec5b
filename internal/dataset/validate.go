package dataset

import (
	"context"
	"errors"
	"fmt"
)

// Validator confirms a dataset is ready for evaluation: it must satisfy the
// complete schema variant and every recording referenced by its classes must
// have low-level feature data.
type Validator struct {
	schema SchemaValidator
	lookup LowLevelCounter
}

// NewValidator wires the external schema and feature-lookup collaborators.
func NewValidator(schema SchemaValidator, lookup LowLevelCounter) *Validator {
	return &Validator{schema: schema, lookup: lookup}
}

// Validate returns nil when the dataset can be evaluated. Structural failures
// propagate from the schema validator; a recording without low-level data
// yields a MissingDataError naming the first offender.
//
// Recordings shared by multiple classes are looked up once.
func (v *Validator) Validate(ctx context.Context, ds *Dataset) error {
	if ds == nil {
		return errors.New("dataset is nil")
	}
	if v.schema == nil || v.lookup == nil {
		return errors.New("validator is not configured")
	}

	if err := v.schema.Validate(ds, true); err != nil {
		return fmt.Errorf("validate dataset schema: %w", err)
	}

	seen := make(map[string]struct{})
	for _, cls := range ds.Classes {
		for _, recordingID := range cls.Recordings {
			if _, ok := seen[recordingID]; ok {
				continue
			}
			count, err := v.lookup.CountForRecording(ctx, recordingID)
			if err != nil {
				return fmt.Errorf("count low-level data for recording %s: %w", recordingID, err)
			}
			if count == 0 {
				return &MissingDataError{RecordingID: recordingID}
			}
			seen[recordingID] = struct{}{}
		}
	}
	return nil
}
