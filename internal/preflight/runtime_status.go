package preflight

import (
	"context"
	"strings"

	"convoy/internal/config"
	"convoy/internal/deps"
)

// CheckNtfyFromConfig evaluates ntfy status from config and connectivity.
func CheckNtfyFromConfig(cfg *config.Config) Result {
	const name = "ntfy"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	check := CheckNtfy(context.Background(), cfg.Notifications.NtfyTopic)
	if check.Passed {
		return Result{Name: name, Passed: true, Detail: check.Detail}
	}
	return Result{Name: name, Detail: check.Detail}
}

// EncoderProbe reports the resolved encoder binaries with version banners.
type EncoderProbe struct {
	FFmpeg  deps.Status
	FFprobe deps.Status
}

// ProbeEncoders resolves the configured ffmpeg/ffprobe binaries and, when
// available, replaces the availability detail with the version banner.
func ProbeEncoders(ctx context.Context, cfg *config.Config) EncoderProbe {
	var probe EncoderProbe
	if cfg == nil {
		probe.FFmpeg = deps.Status{Name: "FFmpeg", Detail: "command not configured"}
		probe.FFprobe = deps.Status{Name: "FFprobe", Detail: "command not configured"}
		return probe
	}

	statuses := CheckSystemDeps(cfg)
	for _, status := range statuses {
		if status.Available {
			if version, err := deps.Version(ctx, status.Command); err == nil {
				status.Detail = version
			}
		}
		switch status.Name {
		case "FFmpeg":
			probe.FFmpeg = status
		case "FFprobe":
			probe.FFprobe = status
		}
	}
	return probe
}
