package queue

import "errors"

// ErrJobExists indicates a dataset already has a pending or running
// evaluation job. Submission is a conflict, not a retryable failure.
var ErrJobExists = errors.New("dataset already has an active evaluation job")

// ErrInvalidStatus indicates a status value outside the recognized set.
// The store is left unchanged when it is returned.
var ErrInvalidStatus = errors.New("invalid job status")
