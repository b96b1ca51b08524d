// Package workflow owns the authoritative in-memory ledger of jobs,
// history, settings, and presets. Every mutation funnels through the
// Coordinator; a synchronizer loop folds bus events back into the ledger so
// readers always observe a consistent snapshot regardless of event order.
package workflow
