// Package config loads, normalizes, and validates the TOML configuration
// shared by the convoy CLI and daemon.
//
// Load applies repository defaults first, then overlays the user's file with
// strict decoding so typos surface as errors instead of silently falling back
// to defaults. Path fields come back expanded and absolute.
package config
