package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"convoy/internal/config"
)

const userAgent = "Convoy-Go/0.1.0"

// Service defines the notification surface exposed to the converter worker.
type Service interface {
	NotifyQueueStarted(ctx context.Context, count int) error
	NotifyConversionCompleted(ctx context.Context, inputName, outputPath string) error
	NotifyConversionFailed(ctx context.Context, inputName, reason string) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint: topic,
		client:   client,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyQueueStarted(ctx context.Context, count int) error {
	data := payload{
		title:   "Convoy - Queue Started",
		message: fmt.Sprintf("Started processing queue with %d jobs", count),
		tags:    []string{"convoy", "queue", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyConversionCompleted(ctx context.Context, inputName, outputPath string) error {
	inputName = strings.TrimSpace(inputName)
	outputPath = strings.TrimSpace(outputPath)
	message := fmt.Sprintf("Conversion complete: %s", inputName)
	if outputPath != "" {
		message = fmt.Sprintf("%s\nOutput: %s", message, outputPath)
	}
	data := payload{
		title:   "Convoy - Complete",
		message: message,
		tags:    []string{"convoy", "convert", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyConversionFailed(ctx context.Context, inputName, reason string) error {
	inputName = strings.TrimSpace(inputName)
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "unknown"
	}
	data := payload{
		title:    "Convoy - Failed",
		message:  fmt.Sprintf("Conversion failed: %s\nReason: %s", inputName, reason),
		tags:     []string{"convoy", "convert", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Convoy - Error",
		message:  builder.String(),
		tags:     []string{"convoy", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Convoy - Test",
		message:  "Notification system test",
		tags:     []string{"convoy", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyQueueStarted(context.Context, int) error                   { return nil }
func (noopService) NotifyConversionCompleted(context.Context, string, string) error { return nil }
func (noopService) NotifyConversionFailed(context.Context, string, string) error    { return nil }
func (noopService) NotifyError(context.Context, error, string) error                { return nil }
func (noopService) TestNotification(context.Context) error                          { return nil }
