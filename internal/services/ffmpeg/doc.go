// Package ffmpeg wraps the ffmpeg command line for conversions and
// thumbnail extraction, translating its progress output into callbacks.
package ffmpeg
