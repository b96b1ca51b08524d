package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Result holds the subset of ffprobe output the conversion pipeline
// consumes: stream codec info plus container duration and size.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Duration  string `json:"duration"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// Format captures container-level metadata.
type Format struct {
	Duration string `json:"duration"`
	Size     string `json:"size"`
}

// Inspect runs ffprobe against path and decodes its JSON output. An empty
// binary falls back to "ffprobe" on PATH.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(output)))
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// DurationSeconds returns the container duration in seconds. Some muxers
// omit the format-level duration, so streams serve as a fallback; the
// longest stream wins. Returns 0 when nothing usable is present.
func (r Result) DurationSeconds() float64 {
	if seconds := parseNumber(r.Format.Duration); seconds > 0 {
		return seconds
	}
	longest := 0.0
	for _, stream := range r.Streams {
		if seconds := parseNumber(stream.Duration); seconds > longest {
			longest = seconds
		}
	}
	return longest
}

// SizeBytes returns the reported container size in bytes, or 0 when
// unavailable.
func (r Result) SizeBytes() int64 {
	size := parseNumber(r.Format.Size)
	if size <= 0 {
		return 0
	}
	return int64(size)
}

// HasVideo reports whether the container carries at least one video stream.
// Audio-only inputs skip thumbnail extraction.
func (r Result) HasVideo() bool {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "video") {
			return true
		}
	}
	return false
}

func parseNumber(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed
}
