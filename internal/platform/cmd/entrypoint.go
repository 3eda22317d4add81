// Package cmd holds the startup plumbing shared by tracker commands.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/louisbranch/pitchside/internal/platform/config"
	"github.com/louisbranch/pitchside/internal/platform/otel"
)

const defaultOTelShutdownTimeout = 5 * time.Second

// ServiceTracker names the tracker process in telemetry and log prefixes.
const ServiceTracker = "tracker"

// EnvPrefix is prepended to every tracker configuration variable.
const EnvPrefix = "PITCHSIDE_"

// ParseConfig loads environment defaults into cfg. Tags on cfg name variables
// without the shared prefix.
func ParseConfig[T any](cfg *T, service string) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnvWithPrefix(servicePrefix(service), cfg)
}

// ParseArgs parses command-line flags.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// RunWithTelemetry configures tracing and executes a service run loop,
// flushing spans when run returns.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return fmt.Errorf("service name is required")
	}
	if run == nil {
		return fmt.Errorf("run function is required")
	}
	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultOTelShutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("%s otel shutdown: %v", service, err)
		}
	}()
	return run(ctx)
}

func servicePrefix(service string) string {
	service = strings.ToUpper(strings.TrimSpace(service))
	if service == "" {
		return EnvPrefix
	}
	return EnvPrefix + strings.ReplaceAll(service, "-", "_") + "_"
}
