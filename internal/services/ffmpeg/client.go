package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"convoy/internal/services"
)

var commandContext = exec.CommandContext

// ProgressUpdate captures one conversion progress sample.
type ProgressUpdate struct {
	Seconds float64
	Percent float64
	Message string
}

// ConvertRequest describes a single conversion run. PresetArgs is the
// encoder portion of the argument vector; input and output placement is the
// client's concern. DurationSeconds, when positive, converts elapsed time
// into a percentage.
type ConvertRequest struct {
	InputPath       string
	OutputPath      string
	PresetArgs      []string
	DurationSeconds float64
}

// Client defines ffmpeg conversion behaviour.
type Client interface {
	Convert(ctx context.Context, req ConvertRequest, progress func(ProgressUpdate)) error
	ExtractThumbnail(ctx context.Context, inputPath, outputPath string, atSeconds float64) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the ffmpeg command-line encoder.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// errorTailLines bounds how much trailing ffmpeg output a failure reports.
const errorTailLines = 12

// Convert launches ffmpeg and streams progress samples until it exits.
func (c *CLI) Convert(ctx context.Context, req ConvertRequest, progress func(ProgressUpdate)) error {
	if req.InputPath == "" {
		return services.Wrap(services.ErrValidation, "convert", "ffmpeg", "input path required", nil)
	}
	if req.OutputPath == "" {
		return services.Wrap(services.ErrValidation, "convert", "ffmpeg", "output path required", nil)
	}

	args := []string{"-hide_banner", "-nostdin", "-y", "-i", req.InputPath}
	args = append(args, req.PresetArgs...)
	args = append(args, "-progress", "pipe:1", req.OutputPath)

	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	duration := req.DurationSeconds
	var tail []string

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			tail = append(tail, trimmed)
			if len(tail) > errorTailLines {
				tail = tail[1:]
			}
		}
		if duration <= 0 {
			if parsed, ok := parseDurationFromInfo(line); ok {
				duration = parsed
			}
		}
		seconds, ok := parseProgressLine(line)
		if !ok || progress == nil {
			continue
		}
		update := ProgressUpdate{Seconds: seconds}
		if duration > 0 {
			update.Percent = seconds / duration * 100
			if update.Percent > 100 {
				update.Percent = 100
			}
		}
		progress(update)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read ffmpeg output: %w", err)
	}

	if err := cmd.Wait(); err != nil {
		return services.Wrap(services.ErrExternalTool, "convert", "ffmpeg", strings.Join(tail, "; "), err)
	}
	return nil
}

// ExtractThumbnail grabs a single scaled frame from the input.
func (c *CLI) ExtractThumbnail(ctx context.Context, inputPath, outputPath string, atSeconds float64) error {
	if inputPath == "" {
		return services.Wrap(services.ErrValidation, "thumbnail", "ffmpeg", "input path required", nil)
	}
	if outputPath == "" {
		return services.Wrap(services.ErrValidation, "thumbnail", "ffmpeg", "output path required", nil)
	}
	if atSeconds < 0 {
		atSeconds = 0
	}

	args := []string{
		"-hide_banner", "-nostdin", "-y",
		"-ss", strconv.FormatFloat(atSeconds, 'f', 3, 64),
		"-i", inputPath,
		"-frames:v", "1",
		"-vf", "scale=320:-1",
		outputPath,
	}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "thumbnail", "ffmpeg", strings.TrimSpace(string(output)), err)
	}
	return nil
}

var _ Client = (*CLI)(nil)
