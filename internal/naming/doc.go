// Package naming owns the output naming rules: template validation, output
// path resolution with collision-aware numbering, and inline placeholder
// suggestions for template editors.
//
// Everything here is a pure function over its inputs. Resolution never
// touches the filesystem; callers supply a snapshot of already-claimed paths
// and perform any live existence checks themselves. That split keeps batch
// numbering deterministic and makes every rule in this package directly
// testable.
package naming
