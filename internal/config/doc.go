// Package config loads, normalizes, and validates oddsmap configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the ODDSMAP_DATA_DIR environment
// fallback. Store locations not set explicitly are derived from the data
// directory so a single setting relocates the alias cache, both canonical
// corpora, and both proposal queues together.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
