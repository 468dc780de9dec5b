package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"winnow/internal/queue"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <job-id>",
		Short: "Display one evaluation job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobID := strings.TrimSpace(args[0])
			if jobID == "" {
				return fmt.Errorf("invalid job id %q", args[0])
			}
			return ctx.withStore(func(store *queue.Store) error {
				job, err := store.Get(cmd.Context(), jobID)
				if err != nil {
					return err
				}
				if job == nil {
					return fmt.Errorf("job %s not found", jobID)
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, job)
				}
				printJob(cmd, job)
				return nil
			})
		},
	}
}

func printJob(cmd *cobra.Command, job *queue.Job) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	for _, line := range renderSectionHeader("Evaluation job "+job.ID, colorize) {
		fmt.Fprintln(out, line)
	}
	kind := statusKindFor(job.Status)
	fmt.Fprintln(out, renderFieldLine("Dataset", job.DatasetID, false, statusInfo))
	fmt.Fprintln(out, renderFieldLine("Status", formatStatusLabel(job.Status), colorize, kind))
	if job.StatusMsg != "" {
		fmt.Fprintln(out, renderFieldLine("Message", job.StatusMsg, colorize, kind))
	}
	fmt.Fprintln(out, renderFieldLine("Created", formatDisplayTime(job.Created), false, statusInfo))
	fmt.Fprintln(out, renderFieldLine("Updated", formatDisplayTime(job.Updated), false, statusInfo))
	if len(job.Result) > 0 {
		fmt.Fprintln(out, fieldIndent+"Result:")
		fmt.Fprintln(out, indentJSON(job.Result))
	}
}

func indentJSON(raw json.RawMessage) string {
	prefix := fieldIndent + fieldIndent
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, prefix, "  "); err != nil {
		return prefix + string(raw)
	}
	return prefix + buf.String()
}
