package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const versionProbeTimeout = 3 * time.Second

// Version reports the version banner of an ffmpeg-family binary.
//
// Both ffmpeg and ffprobe print a banner like
// "ffmpeg version 6.1.1 Copyright ..." as the first line of `-version`
// output. Version returns just the "name version x.y.z" portion so status
// output stays on one line.
func Version(ctx context.Context, command string) (string, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return "", fmt.Errorf("version probe: command not configured")
	}

	probeCtx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()

	output, err := exec.CommandContext(probeCtx, command, "-version").Output()
	if err != nil {
		return "", fmt.Errorf("version probe %q: %w", command, err)
	}
	return parseVersionBanner(string(output)), nil
}

func parseVersionBanner(output string) string {
	line, _, _ := strings.Cut(output, "\n")
	line = strings.TrimSpace(line)
	if idx := strings.Index(line, " Copyright"); idx > 0 {
		line = line[:idx]
	}
	return line
}
