// Package config loads, normalizes, and validates dpcretl configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files from ~/.config/dpcretl/config.toml or a
// project-local dpcretl.toml. Command-line flags override the resulting
// values; obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
