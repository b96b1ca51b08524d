package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"

	"convoy/internal/services"
)

func stubCommand(t *testing.T, mode string, captured *[]string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		if captured != nil {
			*captured = append([]string(nil), args...)
		}
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "FFMPEG_HELPER_MODE="+mode)
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestNewCLIWithBinary(t *testing.T) {
	cli := NewCLI(WithBinary("/opt/ffmpeg"))
	if cli.binary != "/opt/ffmpeg" {
		t.Fatalf("expected binary override to be applied, got %q", cli.binary)
	}
}

func TestConvertRequiresPaths(t *testing.T) {
	cli := NewCLI()
	if err := cli.Convert(context.Background(), ConvertRequest{OutputPath: "/out.mp4"}, nil); err == nil {
		t.Fatal("expected error when input path is empty")
	}
	if err := cli.Convert(context.Background(), ConvertRequest{InputPath: "/in.webm"}, nil); err == nil {
		t.Fatal("expected error when output path is empty")
	}
}

func TestConvertReportsProgress(t *testing.T) {
	var capturedArgs []string
	stubCommand(t, "progress", &capturedArgs)

	cli := NewCLI()
	var updates []ProgressUpdate
	req := ConvertRequest{
		InputPath:       "/in/clip.webm",
		OutputPath:      "/out/clip.mp4",
		PresetArgs:      []string{"-c:v", "libx264", "-crf", "23"},
		DurationSeconds: 100,
	}
	err := cli.Convert(context.Background(), req, func(update ProgressUpdate) {
		updates = append(updates, update)
	})
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}

	if len(updates) < 2 {
		t.Fatalf("expected progress samples, got %d", len(updates))
	}
	last := updates[len(updates)-1]
	if last.Percent != 100 {
		t.Fatalf("final percent = %v, want 100", last.Percent)
	}

	wantArgs := []string{
		"-hide_banner", "-nostdin", "-y", "-i", "/in/clip.webm",
		"-c:v", "libx264", "-crf", "23",
		"-progress", "pipe:1", "/out/clip.mp4",
	}
	if len(capturedArgs) != len(wantArgs) {
		t.Fatalf("args = %v, want %v", capturedArgs, wantArgs)
	}
	for i := range wantArgs {
		if capturedArgs[i] != wantArgs[i] {
			t.Fatalf("arg[%d] = %q, want %q", i, capturedArgs[i], wantArgs[i])
		}
	}
}

func TestConvertDiscoversDurationFromBanner(t *testing.T) {
	stubCommand(t, "banner", nil)

	cli := NewCLI()
	var updates []ProgressUpdate
	req := ConvertRequest{InputPath: "/in/clip.webm", OutputPath: "/out/clip.mp4"}
	err := cli.Convert(context.Background(), req, func(update ProgressUpdate) {
		updates = append(updates, update)
	})
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if len(updates) == 0 {
		t.Fatal("expected progress samples")
	}
	if got := updates[len(updates)-1].Percent; got < 49 || got > 51 {
		t.Fatalf("percent = %v, want ~50 from banner duration", got)
	}
}

func TestConvertFailureIncludesOutputTail(t *testing.T) {
	stubCommand(t, "fail", nil)

	cli := NewCLI()
	req := ConvertRequest{InputPath: "/in/clip.webm", OutputPath: "/out/clip.mp4"}
	err := cli.Convert(context.Background(), req, nil)
	if err == nil {
		t.Fatal("expected conversion failure")
	}
	if got := err.Error(); !strings.Contains(got, "no decoder found") {
		t.Fatalf("error missing ffmpeg output tail: %q", got)
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("error not tagged as external tool failure: %v", err)
	}
}

func TestExtractThumbnailArgs(t *testing.T) {
	var capturedArgs []string
	stubCommand(t, "success", &capturedArgs)

	cli := NewCLI()
	if err := cli.ExtractThumbnail(context.Background(), "/in/clip.webm", "/out/thumb.jpg", 9); err != nil {
		t.Fatalf("ExtractThumbnail returned error: %v", err)
	}

	assertArgPair(t, capturedArgs, "-ss", "9.000")
	assertArgPair(t, capturedArgs, "-vf", "scale=320:-1")
	assertArgPair(t, capturedArgs, "-frames:v", "1")
}

func assertArgPair(t *testing.T, args []string, flag, value string) {
	t.Helper()
	for i, arg := range args {
		if arg == flag {
			if i+1 >= len(args) || args[i+1] != value {
				t.Fatalf("flag %s has wrong value in %v, want %s", flag, args, value)
			}
			return
		}
	}
	t.Fatalf("flag %s missing from %v", flag, args)
}

// TestHelperProcess is re-executed by the stubbed commandContext; it plays
// the role of ffmpeg for the modes the tests request.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("FFMPEG_HELPER_MODE") {
	case "progress":
		fmt.Println("frame=1 fps=0.0 q=0.0 size=0kB time=00:00:00.00 bitrate=N/A speed=N/A")
		fmt.Println("out_time_ms=25000000")
		fmt.Println("progress=continue")
		fmt.Println("out_time_ms=100000000")
		fmt.Println("progress=end")
	case "banner":
		fmt.Println("  Duration: 00:00:20.00, start: 0.000000, bitrate: 1205 kb/s")
		fmt.Println("out_time=00:00:10.000000")
		fmt.Println("progress=end")
	case "fail":
		fmt.Println("Stream #0:0: Video: vp9")
		fmt.Println("Error: no decoder found for stream")
		os.Exit(1)
	case "success":
	}
	os.Exit(0)
}
