// Package config loads, normalizes, and validates audioscribe configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours AUDIOSCRIBE_* environment overrides so the CLI can
// take every setting from one place.
package config
