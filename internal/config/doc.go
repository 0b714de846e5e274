// Package config loads runtime configuration from the environment and an
// optional YAML file. Secrets come from the environment only; the file
// carries tunables that are safe to commit.
package config
