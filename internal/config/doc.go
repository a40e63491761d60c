// Package config loads, normalizes, and validates mmove configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the MMOVE_STORE_DRIVER and
// MMOVE_STORE_DSN environment overrides. The Config type holds the ledger
// backend selection, the file classification lists, and the year windows the
// organizer applies, so every command discovers them in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, lower-cased extensions, and clear validation errors.
package config
