package ffmpeg

import (
	"strconv"
	"strings"
)

// parseProgressLine extracts an elapsed-seconds value from one line of
// ffmpeg output. It understands the -progress key=value stream
// (out_time_ms= carries microseconds, out_time= a clock string) and the
// stderr stats lines containing time=HH:MM:SS.cc.
func parseProgressLine(line string) (float64, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return 0, false
	}

	if value, ok := strings.CutPrefix(line, "out_time_ms="); ok {
		micros, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || micros < 0 {
			return 0, false
		}
		return float64(micros) / 1e6, true
	}

	if value, ok := strings.CutPrefix(line, "out_time="); ok {
		seconds, err := parseTimeToSeconds(strings.TrimSpace(value))
		if err != nil {
			return 0, false
		}
		return seconds, true
	}

	if idx := strings.Index(line, "time="); idx >= 0 {
		rest := line[idx+len("time="):]
		if end := strings.IndexByte(rest, ' '); end >= 0 {
			rest = rest[:end]
		}
		seconds, err := parseTimeToSeconds(strings.TrimSpace(rest))
		if err != nil {
			return 0, false
		}
		return seconds, true
	}

	return 0, false
}

// parseDurationFromInfo pulls the total duration out of ffmpeg's
// "Duration: HH:MM:SS.cc," banner line.
func parseDurationFromInfo(line string) (float64, bool) {
	idx := strings.Index(line, "Duration:")
	if idx < 0 {
		return 0, false
	}
	rest := strings.TrimSpace(line[idx+len("Duration:"):])
	if end := strings.IndexByte(rest, ','); end >= 0 {
		rest = rest[:end]
	}
	seconds, err := parseTimeToSeconds(rest)
	if err != nil {
		return 0, false
	}
	return seconds, true
}

// parseTimeToSeconds converts an HH:MM:SS[.frac] clock string to seconds.
// MM:SS and bare seconds forms are accepted too.
func parseTimeToSeconds(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "N/A" {
		return 0, strconv.ErrSyntax
	}

	parts := strings.Split(value, ":")
	if len(parts) > 3 {
		return 0, strconv.ErrSyntax
	}

	total := 0.0
	for _, part := range parts {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || parsed < 0 {
			return 0, strconv.ErrSyntax
		}
		total = total*60 + parsed
	}
	return total, nil
}
