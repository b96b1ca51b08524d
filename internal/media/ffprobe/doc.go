// Package ffprobe is a thin typed wrapper around ffprobe JSON output.
//
// It deliberately decodes only the fields the conversion pipeline needs:
// container duration and size for progress estimation and size-change
// reporting, and the stream list to tell video from audio-only inputs.
//
// Inspect executes the binary; Result carries the parsed response with
// helpers for duration, size, and video-stream detection.
package ffprobe
