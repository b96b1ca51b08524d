package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"convoy/internal/config"
	"convoy/internal/notifications"
)

type recordedRequest struct {
	body     string
	title    string
	tags     string
	priority string
}

func newRecordingService(t *testing.T, status int) (notifications.Service, *[]recordedRequest) {
	t.Helper()

	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests = append(requests, recordedRequest{
			body:     string(body),
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
		})
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	return notifications.NewService(&cfg), &requests
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyConversionCompleted(context.Background(), "clip.webm", "/out/clip.mp4"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNotifyConversionCompleted(t *testing.T) {
	svc, requests := newRecordingService(t, http.StatusOK)

	if err := svc.NotifyConversionCompleted(context.Background(), "clip.webm", "/out/clip.mp4"); err != nil {
		t.Fatalf("NotifyConversionCompleted failed: %v", err)
	}
	if len(*requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(*requests))
	}
	req := (*requests)[0]
	if req.title != "Convoy - Complete" {
		t.Fatalf("unexpected title %q", req.title)
	}
	if !strings.Contains(req.body, "clip.webm") || !strings.Contains(req.body, "/out/clip.mp4") {
		t.Fatalf("unexpected body %q", req.body)
	}
	if req.tags != "convoy,convert,completed" {
		t.Fatalf("unexpected tags %q", req.tags)
	}
}

func TestNotifyConversionFailedSetsPriority(t *testing.T) {
	svc, requests := newRecordingService(t, http.StatusOK)

	if err := svc.NotifyConversionFailed(context.Background(), "clip.webm", "no decoder"); err != nil {
		t.Fatalf("NotifyConversionFailed failed: %v", err)
	}
	req := (*requests)[0]
	if req.priority != "high" {
		t.Fatalf("unexpected priority %q", req.priority)
	}
	if !strings.Contains(req.body, "no decoder") {
		t.Fatalf("unexpected body %q", req.body)
	}
}

func TestNotifyErrorWithoutCause(t *testing.T) {
	svc, requests := newRecordingService(t, http.StatusOK)

	if err := svc.NotifyError(context.Background(), errors.New("disk full"), "queue"); err != nil {
		t.Fatalf("NotifyError failed: %v", err)
	}
	req := (*requests)[0]
	if !strings.Contains(req.body, "queue") || !strings.Contains(req.body, "disk full") {
		t.Fatalf("unexpected body %q", req.body)
	}
}

func TestSendSurfacesServerError(t *testing.T) {
	svc, _ := newRecordingService(t, http.StatusBadGateway)

	err := svc.TestNotification(context.Background())
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Fatalf("expected status code in error, got %v", err)
	}
}
