// Package config loads, normalizes, and validates the TOML configuration
// for rscapture. Path values support ~ expansion and are resolved to
// absolute paths during load.
package config
