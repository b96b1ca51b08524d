// Package preflight provides readiness checks for the binaries, directories,
// and services Convoy depends on.
//
// These checks run in two contexts:
//   - The daemon logs a dependency snapshot at startup so a missing ffmpeg
//     is visible before the first job fails.
//   - The CLI "convoy status" command uses individual check functions
//     (CheckSystemDeps, CheckDirectoryAccess, CheckNtfy) to display health.
//
// Each check is gated by its config value -- unconfigured features are skipped.
package preflight
