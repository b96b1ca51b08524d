// Package textutil provides small text helpers shared by the CLI:
// human-readable byte sizes, display labels for queue statuses, and a
// generic conditional helper for table cells.
package textutil
