// Package config loads the pipeline configuration from yaml, environment and flags.
package config
