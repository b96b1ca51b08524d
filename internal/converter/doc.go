// Package converter runs the conversion worker and exposes the collaborator
// surface the workflow coordinator drives.
//
// The Service owns a single conversion lane: it polls the queue, moves each
// job through preprocess (probe + thumbnail) and convert (ffmpeg) stages,
// and publishes every store mutation on the event bus with the job's new
// revision. Exactly one job is in processing at a time; determinism is
// preferred over throughput.
//
// Cancellation uses a registry of per-job context cancel functions: queued
// and ready jobs fail immediately, a processing job transitions through the
// cancelling state while its ffmpeg run is torn down.
package converter
