package queue

import (
	"encoding/json"
	"strings"
	"time"
)

// Status represents the lifecycle of an evaluation job.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusRunning,
	StatusDone,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var activeStatuses = map[Status]struct{}{
	StatusPending: {},
	StatusRunning: {},
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsActiveStatus reports whether a status counts toward the one-active-job
// limit for a dataset.
func IsActiveStatus(status Status) bool {
	_, ok := activeStatuses[status]
	return ok
}

// IsTerminalStatus reports whether a status ends the job lifecycle.
func IsTerminalStatus(status Status) bool {
	return status == StatusDone || status == StatusFailed
}

// Job represents one dataset evaluation persisted in SQLite.
type Job struct {
	ID        string          `json:"id"`
	DatasetID string          `json:"dataset_id"`
	Status    Status          `json:"status"`
	StatusMsg string          `json:"status_msg,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	Created   time.Time       `json:"created"`
	Updated   time.Time       `json:"updated"`
}

// IsActive reports whether the job counts toward its dataset's active limit.
func (j Job) IsActive() bool {
	return IsActiveStatus(j.Status)
}

// HealthSummary describes aggregated job counts per lifecycle state.
type HealthSummary struct {
	Total   int `json:"total"`
	Pending int `json:"pending"`
	Running int `json:"running"`
	Done    int `json:"done"`
	Failed  int `json:"failed"`
}

// DatabaseHealth captures diagnostic information about the job database.
type DatabaseHealth struct {
	DBPath           string   `json:"db_path"`
	DatabaseExists   bool     `json:"database_exists"`
	DatabaseReadable bool     `json:"database_readable"`
	SchemaVersion    string   `json:"schema_version"`
	TableExists      bool     `json:"table_exists"`
	ColumnsPresent   []string `json:"columns_present,omitempty"`
	MissingColumns   []string `json:"missing_columns,omitempty"`
	IntegrityCheck   bool     `json:"integrity_check"`
	TotalJobs        int      `json:"total_jobs"`
	Error            string   `json:"error,omitempty"`
}
