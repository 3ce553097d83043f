// Package config loads, normalizes, and validates cbae configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CBAE_FFMPEG. Command-line flags override individual fields after Load, so
// every caller should go through Validate again once overrides are applied.
package config
