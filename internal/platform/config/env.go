// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	return ParseEnvWithPrefix("", target)
}

// ParseEnvWithPrefix loads configuration from environment variables whose
// names start with prefix. Struct tags name the variable without the prefix.
func ParseEnvWithPrefix(prefix string, target any) error {
	if target == nil {
		return fmt.Errorf("parse env: config target is required")
	}
	opts := env.Options{Prefix: strings.TrimSpace(prefix)}
	if err := env.ParseWithOptions(target, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
