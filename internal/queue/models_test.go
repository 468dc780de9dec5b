package queue

import "testing"

func TestParseStatusNormalizesInput(t *testing.T) {
	cases := []struct {
		input string
		want  Status
		ok    bool
	}{
		{"pending", StatusPending, true},
		{" Pending ", StatusPending, true},
		{"RUNNING", StatusRunning, true},
		{"done", StatusDone, true},
		{"Failed", StatusFailed, true},
		{"", "", false},
		{"cancelled", "", false},
		{"complete", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseStatus(tc.input)
		if ok != tc.ok {
			t.Fatalf("ParseStatus(%q): expected ok=%v, got %v", tc.input, tc.ok, ok)
		}
		if ok && got != tc.want {
			t.Fatalf("ParseStatus(%q): expected %s, got %s", tc.input, tc.want, got)
		}
	}
}

func TestStatusPartition(t *testing.T) {
	for _, status := range AllStatuses() {
		active := IsActiveStatus(status)
		terminal := IsTerminalStatus(status)
		if active == terminal {
			t.Fatalf("status %s must be exactly one of active or terminal", status)
		}
	}
	if !IsActiveStatus(StatusPending) || !IsActiveStatus(StatusRunning) {
		t.Fatal("expected pending and running to be active")
	}
	if !IsTerminalStatus(StatusDone) || !IsTerminalStatus(StatusFailed) {
		t.Fatal("expected done and failed to be terminal")
	}
}

func TestAllStatusesOrderedForDisplay(t *testing.T) {
	want := []Status{StatusPending, StatusRunning, StatusDone, StatusFailed}
	got := AllStatuses()
	if len(got) != len(want) {
		t.Fatalf("expected %d statuses, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestJobIsActive(t *testing.T) {
	job := Job{Status: StatusRunning}
	if !job.IsActive() {
		t.Fatal("expected running job to be active")
	}
	job.Status = StatusFailed
	if job.IsActive() {
		t.Fatal("expected failed job to be inactive")
	}
}
