// Package config loads server and client settings from environment variables
// (prefix WALLETSTATS_) and an optional config.yaml, applies defaults and
// validates the result. Environment variables take precedence over the file.
package config
