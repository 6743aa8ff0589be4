// Package config loads, normalizes, and validates lyricsync configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads .env files, and honours environment
// fallbacks such as GENIUS_ACCESS_TOKEN. The Config type centralizes every knob
// the pipeline and CLI need, so job folders, lyric providers, alignment
// thresholds, caption layout, and beat analysis are configured in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
