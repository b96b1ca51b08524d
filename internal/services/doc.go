// Package services defines shared utilities consumed by the converter
// worker and external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, stage names, and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that keep failure
//     messages consistent across stages.
//   - Thin abstractions that make command execution and progress streaming
//     from external tools testable.
package services
