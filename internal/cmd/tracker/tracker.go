// Package tracker parses tracker command flags and launches the tracker runtime.
package tracker

import (
	"context"
	"flag"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/pitchside/internal/platform/cmd"
	trackerapp "github.com/louisbranch/pitchside/internal/services/tracker/app"
)

// Config holds tracker command configuration.
type Config struct {
	HTTPPort       int           `env:"HTTP_PORT" envDefault:"8095"`
	HealthPort     int           `env:"HEALTH_PORT" envDefault:"8096"`
	DBPath         string        `env:"DB_PATH" envDefault:"data/tracker.db"`
	Remote         string        `env:"REMOTE" envDefault:"none"`
	PostgresURL    string        `env:"POSTGRES_URL"`
	RedisURL       string        `env:"REDIS_URL"`
	SnapshotKey    string        `env:"SNAPSHOT_KEY" envDefault:"default"`
	TeamTitle      string        `env:"TEAM_TITLE" envDefault:"My Team"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	SaveDebounce   time.Duration `env:"SAVE_DEBOUNCE" envDefault:"500ms"`
	TickInterval   time.Duration `env:"TICK_INTERVAL" envDefault:"1s"`
	ProbeInterval  time.Duration `env:"PROBE_INTERVAL" envDefault:"5s"`
	OnlineSettle   time.Duration `env:"ONLINE_SETTLE" envDefault:"1s"`
	RemoteTimeout  time.Duration `env:"REMOTE_TIMEOUT" envDefault:"5s"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg, entrypoint.ServiceTracker); err != nil {
		return Config{}, err
	}
	origins := strings.Join(cfg.AllowedOrigins, ",")
	fs.IntVar(&cfg.HTTPPort, "http-port", cfg.HTTPPort, "The tracker HTTP API port")
	fs.IntVar(&cfg.HealthPort, "health-port", cfg.HealthPort, "The tracker gRPC health port")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The tracker SQLite database path")
	fs.StringVar(&cfg.Remote, "remote", cfg.Remote, "Remote snapshot store: none, postgres or redis")
	fs.StringVar(&cfg.PostgresURL, "postgres-url", cfg.PostgresURL, "Postgres connection URL")
	fs.StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis connection URL")
	fs.StringVar(&cfg.SnapshotKey, "snapshot-key", cfg.SnapshotKey, "Key the season snapshot is stored under")
	fs.StringVar(&cfg.TeamTitle, "team-title", cfg.TeamTitle, "Team title for a fresh season")
	fs.StringVar(&origins, "allowed-origins", origins, "Comma-separated CORS origins")
	fs.DurationVar(&cfg.SaveDebounce, "save-debounce", cfg.SaveDebounce, "Quiet period before a snapshot save")
	fs.DurationVar(&cfg.TickInterval, "tick-interval", cfg.TickInterval, "Wall-clock period of one match second")
	fs.DurationVar(&cfg.ProbeInterval, "probe-interval", cfg.ProbeInterval, "Remote reachability probe interval")
	fs.DurationVar(&cfg.OnlineSettle, "online-settle", cfg.OnlineSettle, "Delay before draining after reconnect")
	fs.DurationVar(&cfg.RemoteTimeout, "remote-timeout", cfg.RemoteTimeout, "Remote store request timeout")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.AllowedOrigins = splitOrigins(origins)
	return cfg, nil
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// Run starts the tracker runtime.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceTracker, func(ctx context.Context) error {
		return trackerapp.Run(ctx, trackerapp.RuntimeConfig{
			HTTPPort:       cfg.HTTPPort,
			HealthPort:     cfg.HealthPort,
			DBPath:         cfg.DBPath,
			Remote:         cfg.Remote,
			PostgresURL:    cfg.PostgresURL,
			RedisURL:       cfg.RedisURL,
			SnapshotKey:    cfg.SnapshotKey,
			TeamTitle:      cfg.TeamTitle,
			AllowedOrigins: cfg.AllowedOrigins,
			SaveDebounce:   cfg.SaveDebounce,
			TickInterval:   cfg.TickInterval,
			ProbeInterval:  cfg.ProbeInterval,
			OnlineSettle:   cfg.OnlineSettle,
			RemoteTimeout:  cfg.RemoteTimeout,
		})
	})
}
