package ffprobe

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDurationSecondsPrefersFormat(t *testing.T) {
	result := Result{
		Streams: []Stream{{CodecType: "video", Duration: "99.9"}},
		Format:  Format{Duration: "123.45"},
	}
	if got := result.DurationSeconds(); got != 123.45 {
		t.Fatalf("unexpected duration: %v", got)
	}
}

func TestDurationSecondsFallsBackToLongestStream(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "audio", Duration: "12.5"},
			{CodecType: "video", Duration: "60.25"},
		},
	}
	if got := result.DurationSeconds(); got != 60.25 {
		t.Fatalf("unexpected fallback duration: %v", got)
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{
		Format: Format{Duration: "bad", Size: "-1"},
	}
	if got := result.DurationSeconds(); got != 0 {
		t.Fatalf("expected duration 0, got %v", got)
	}
	if got := result.SizeBytes(); got != 0 {
		t.Fatalf("expected size 0, got %d", got)
	}
}

func TestHasVideo(t *testing.T) {
	audioOnly := Result{Streams: []Stream{{CodecType: "audio"}}}
	if audioOnly.HasVideo() {
		t.Fatal("audio-only result reported video")
	}
	mixed := Result{Streams: []Stream{{CodecType: "audio"}, {CodecType: "Video"}}}
	if !mixed.HasVideo() {
		t.Fatal("video stream not detected")
	}
}

func TestInspectRejectsEmptyPath(t *testing.T) {
	if _, err := Inspect(context.Background(), "", "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestInspectParsesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub binary requires a POSIX shell")
	}

	payload, err := json.Marshal(Result{
		Streams: []Stream{{CodecType: "video", CodecName: "vp9", Width: 1280, Height: 720}},
		Format:  Format{Duration: "42.5", Size: "2048"},
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	dir := t.TempDir()
	stub := filepath.Join(dir, "ffprobe-stub")
	script := "#!/bin/sh\ncat <<'EOF'\n" + string(payload) + "\nEOF\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	result, err := Inspect(context.Background(), stub, "/tmp/input.webm")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if result.DurationSeconds() != 42.5 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 2048 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
	if !result.HasVideo() {
		t.Fatal("expected a video stream")
	}
	if result.Streams[0].CodecName != "vp9" {
		t.Fatalf("unexpected codec: %s", result.Streams[0].CodecName)
	}
}

func TestInspectSurfacesCommandFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub binary requires a POSIX shell")
	}

	dir := t.TempDir()
	stub := filepath.Join(dir, "ffprobe-fail")
	script := "#!/bin/sh\necho 'no such file' >&2\nexit 1\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	if _, err := Inspect(context.Background(), stub, "/tmp/missing.webm"); err == nil {
		t.Fatal("expected error from failing binary")
	}
}
