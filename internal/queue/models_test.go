package queue_test

import (
	"testing"

	"convoy/internal/queue"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from    queue.Status
		to      queue.Status
		allowed bool
	}{
		{queue.StatusQueued, queue.StatusReady, true},
		{queue.StatusQueued, queue.StatusCancelling, true},
		{queue.StatusQueued, queue.StatusFailed, true},
		{queue.StatusQueued, queue.StatusProcessing, false},
		{queue.StatusQueued, queue.StatusCompleted, false},
		{queue.StatusReady, queue.StatusProcessing, true},
		{queue.StatusReady, queue.StatusCancelling, true},
		{queue.StatusReady, queue.StatusFailed, true},
		{queue.StatusReady, queue.StatusCompleted, false},
		{queue.StatusProcessing, queue.StatusCompleted, true},
		{queue.StatusProcessing, queue.StatusFailed, true},
		{queue.StatusProcessing, queue.StatusCancelling, true},
		{queue.StatusProcessing, queue.StatusReady, false},
		{queue.StatusCancelling, queue.StatusFailed, true},
		{queue.StatusCancelling, queue.StatusCompleted, false},
		{queue.StatusCompleted, queue.StatusQueued, false},
		{queue.StatusFailed, queue.StatusQueued, false},
	}
	for _, tc := range cases {
		if got := queue.CanTransition(tc.from, tc.to); got != tc.allowed {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestParseStatus(t *testing.T) {
	cases := []struct {
		input string
		want  queue.Status
		ok    bool
	}{
		{"queued", queue.StatusQueued, true},
		{" PROCESSING ", queue.StatusProcessing, true},
		{"Cancelling", queue.StatusCancelling, true},
		{"", "", false},
		{"paused", "", false},
	}
	for _, tc := range cases {
		got, ok := queue.ParseStatus(tc.input)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("ParseStatus(%q) = (%q, %v), want (%q, %v)", tc.input, got, ok, tc.want, tc.ok)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	for _, status := range queue.AllStatuses() {
		terminal := status == queue.StatusCompleted || status == queue.StatusFailed
		if status.IsTerminal() != terminal {
			t.Errorf("%s.IsTerminal() = %v, want %v", status, status.IsTerminal(), terminal)
		}
		if status.IsActive() == terminal {
			t.Errorf("%s.IsActive() = %v, want %v", status, status.IsActive(), !terminal)
		}
	}
}
