package queue

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

const jobColumns = "id, dataset_id, status, status_msg, result, created, updated"

// timeLayout is RFC 3339 with fixed-width nanoseconds. Timestamps are stored
// as TEXT and ordered lexicographically, so trailing zeros must be kept;
// time.RFC3339Nano trims them and breaks the ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id         string
		datasetID  string
		statusStr  string
		statusMsg  sql.NullString
		resultRaw  sql.NullString
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&datasetID,
		&statusStr,
		&statusMsg,
		&resultRaw,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:        id,
		DatasetID: datasetID,
		Status:    Status(statusStr),
		StatusMsg: statusMsg.String,
	}
	if resultRaw.Valid && resultRaw.String != "" {
		job.Result = json.RawMessage(resultRaw.String)
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		job.Created = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		job.Updated = updated
	}
	return job, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableResult(value json.RawMessage) any {
	if len(value) == 0 {
		return nil
	}
	return string(value)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
