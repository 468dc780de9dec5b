package dataset

import "context"

// Class groups recordings under a single label within a dataset.
type Class struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Recordings  []string `json:"recordings"`
}

// Dataset is the labeled collection of recordings a job evaluates.
type Dataset struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Author      string  `json:"author,omitempty"`
	Public      bool    `json:"public"`
	Classes     []Class `json:"classes"`
}

// Store resolves full dataset content by identifier.
type Store interface {
	Get(ctx context.Context, datasetID string) (*Dataset, error)
}

// SchemaValidator checks a dataset against the structural schema. The
// complete flag selects the stricter variant required for evaluation.
type SchemaValidator interface {
	Validate(ds *Dataset, complete bool) error
}

// LowLevelCounter reports how many low-level feature records exist for a
// recording.
type LowLevelCounter interface {
	CountForRecording(ctx context.Context, recordingID string) (int, error)
}
