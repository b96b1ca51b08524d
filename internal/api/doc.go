// Package api defines the transport-friendly views of jobs, history,
// presets, and daemon state shared by the IPC handlers and the CLI's
// direct-store fallback.
package api
