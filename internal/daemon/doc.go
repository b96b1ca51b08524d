// Package daemon binds the converter worker and workflow coordinator into
// a single-instance background process. A file lock enforces exclusivity;
// the exported methods back the IPC handlers.
package daemon
