// Package main hosts the Convoy CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into IPC calls
// against the daemon: queueing files, inspecting the queue and conversion
// history, editing naming settings, previewing filename templates, log
// tailing, and configuration scaffolding. Queue and history reads fall back
// to direct read-only store access when the daemon socket is absent.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
