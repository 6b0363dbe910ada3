// Package config loads, normalizes, and validates Marquee configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// API_TOKEN (optionally sourced from a .env file). The Config type centralizes
// every knob the web server and CLI need, allowing the catalog artifact, TMDB
// credentials, and batching limits to be discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
