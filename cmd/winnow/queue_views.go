package main

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"winnow/internal/queue"
)

func buildQueueStatusRows(stats map[queue.Status]int) [][]string {
	if len(stats) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(stats))
	for _, status := range queue.AllStatuses() {
		count, ok := stats[status]
		if !ok {
			continue
		}
		rows = append(rows, []string{formatStatusLabel(status), fmt.Sprintf("%d", count)})
	}
	return rows
}

func buildJobListRows(jobs []*queue.Job) [][]string {
	if len(jobs) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		rows = append(rows, []string{
			job.ID,
			job.DatasetID,
			formatStatusLabel(job.Status),
			formatDisplayTime(job.Created),
			formatMessage(job.StatusMsg),
		})
	}
	return rows
}

func formatStatusLabel(status queue.Status) string {
	label := strings.TrimSpace(string(status))
	if label == "" {
		return ""
	}
	return cases.Title(language.Und).String(label)
}

func formatDisplayTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04")
}

func formatMessage(msg string) string {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return "-"
	}
	if len(msg) > 48 {
		return msg[:45] + "..."
	}
	return msg
}
