// Package presets defines the conversion profiles convoy offers and loads
// user extensions from an optional YAML catalog file.
//
// Jobs copy their preset by value at submission time, so catalog edits never
// retroactively change a queued or running conversion. The built-in set
// covers the common quality/size tradeoffs; the catalog file can append new
// profiles, override built-ins by name, or replace the built-in set
// entirely.
package presets
