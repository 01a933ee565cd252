// Package config loads, normalizes, and validates the TOML configuration
// shared by the dubstudio daemon and CLI.
package config
