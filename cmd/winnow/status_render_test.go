package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"winnow/internal/queue"
)

func TestRenderFieldLineNoColor(t *testing.T) {
	got := renderFieldLine("Status", "Pending", false, statusInfo)
	want := fmt.Sprintf("%s%-*s %s", fieldIndent, fieldLabelWidth, "Status:", "Pending")
	if got != want {
		t.Fatalf("renderFieldLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderFieldLineWithColor(t *testing.T) {
	got := renderFieldLine("Status", "Done", true, statusOK)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestStatusKindFor(t *testing.T) {
	cases := []struct {
		status queue.Status
		want   statusKind
	}{
		{queue.StatusPending, statusInfo},
		{queue.StatusRunning, statusWarn},
		{queue.StatusDone, statusOK},
		{queue.StatusFailed, statusError},
	}
	for _, tc := range cases {
		if got := statusKindFor(tc.status); got != tc.want {
			t.Fatalf("statusKindFor(%s) = %d, want %d", tc.status, got, tc.want)
		}
	}
}

func TestRenderSectionHeader(t *testing.T) {
	lines := renderSectionHeader("Evaluation job abc", false)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "== Evaluation job abc ==" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != strings.Repeat("-", len(lines[0])) {
		t.Fatalf("unexpected rule line: %q", lines[1])
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
