package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/pitchside/internal/platform/timeouts"
	"github.com/louisbranch/pitchside/internal/services/tracker/api/httpapi"
	"github.com/louisbranch/pitchside/internal/services/tracker/domain/season"
	"github.com/louisbranch/pitchside/internal/services/tracker/storage"
	trackerpostgres "github.com/louisbranch/pitchside/internal/services/tracker/storage/postgres"
	trackerredis "github.com/louisbranch/pitchside/internal/services/tracker/storage/redis"
	trackersqlite "github.com/louisbranch/pitchside/internal/services/tracker/storage/sqlite"
	"github.com/louisbranch/pitchside/internal/services/tracker/syncqueue"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// Remote store kinds accepted by RuntimeConfig.Remote.
const (
	RemoteNone     = "none"
	RemotePostgres = "postgres"
	RemoteRedis    = "redis"
)

const (
	defaultHTTPPort    = 8095
	defaultHealthPort  = 8096
	defaultDBPath      = "data/tracker.db"
	defaultSnapshotKey = "default"
)

// RuntimeConfig controls tracker startup, storage and timing.
type RuntimeConfig struct {
	HTTPPort       int
	HealthPort     int
	DBPath         string
	Remote         string
	PostgresURL    string
	RedisURL       string
	SnapshotKey    string
	TeamTitle      string
	AllowedOrigins []string
	SaveDebounce   time.Duration
	TickInterval   time.Duration
	ProbeInterval  time.Duration
	OnlineSettle   time.Duration
	RemoteTimeout  time.Duration
}

func (c RuntimeConfig) normalized() (RuntimeConfig, error) {
	if c.HTTPPort <= 0 {
		c.HTTPPort = defaultHTTPPort
	}
	if c.HealthPort <= 0 {
		c.HealthPort = defaultHealthPort
	}
	if strings.TrimSpace(c.DBPath) == "" {
		c.DBPath = defaultDBPath
	}
	if strings.TrimSpace(c.SnapshotKey) == "" {
		c.SnapshotKey = defaultSnapshotKey
	}
	if strings.TrimSpace(c.TeamTitle) == "" {
		c.TeamTitle = season.DefaultTeamTitle
	}
	if c.SaveDebounce <= 0 {
		c.SaveDebounce = timeouts.SaveDebounce
	}
	if c.TickInterval <= 0 {
		c.TickInterval = timeouts.Tick
	}
	if c.ProbeInterval <= 0 {
		c.ProbeInterval = timeouts.Probe
	}
	if c.OnlineSettle <= 0 {
		c.OnlineSettle = timeouts.OnlineSettle
	}
	if c.RemoteTimeout <= 0 {
		c.RemoteTimeout = timeouts.RemoteRequest
	}

	c.Remote = strings.ToLower(strings.TrimSpace(c.Remote))
	switch c.Remote {
	case "", RemoteNone:
		c.Remote = RemoteNone
	case RemotePostgres:
		if strings.TrimSpace(c.PostgresURL) == "" {
			return RuntimeConfig{}, fmt.Errorf("postgres url is required for remote %q", c.Remote)
		}
	case RemoteRedis:
		if strings.TrimSpace(c.RedisURL) == "" {
			return RuntimeConfig{}, fmt.Errorf("redis url is required for remote %q", c.Remote)
		}
	default:
		return RuntimeConfig{}, fmt.Errorf("unknown remote store %q", c.Remote)
	}
	if c.HTTPPort == c.HealthPort {
		return RuntimeConfig{}, fmt.Errorf("http and health ports must differ, both are %d", c.HTTPPort)
	}
	return c, nil
}

// openRemote returns nil when no remote store is configured. Connections are
// made lazily so the tracker starts while the remote is unreachable.
func openRemote(ctx context.Context, cfg RuntimeConfig) (storage.RemoteStore, error) {
	switch cfg.Remote {
	case RemotePostgres:
		store, err := trackerpostgres.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return store, nil
	case RemoteRedis:
		store, err := trackerredis.Dial(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		return store, nil
	default:
		return nil, nil
	}
}

// Run starts the tracker: storage, the session, the outbound writer, the
// connectivity watcher, the HTTP API and the gRPC health server. It returns
// after ctx is canceled and pending saves are flushed.
func Run(ctx context.Context, cfg RuntimeConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := cfg.normalized()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create tracker storage dir: %w", err)
		}
	}
	local, err := trackersqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open tracker sqlite store: %w", err)
	}
	defer func() {
		if closeErr := local.Close(); closeErr != nil {
			log.Printf("close tracker sqlite store: %v", closeErr)
		}
	}()

	remote, err := openRemote(ctx, cfg)
	if err != nil {
		return err
	}
	var remoteSnapshots storage.SnapshotStore
	var queue *syncqueue.Queue
	if remote != nil {
		defer func() {
			if closeErr := remote.Close(); closeErr != nil {
				log.Printf("close %s store: %v", cfg.Remote, closeErr)
			}
		}()
		remoteSnapshots = remote
		queue = syncqueue.New(local, syncqueue.WithSettleDelay(cfg.OnlineSettle))
		if err := queue.Load(ctx); err != nil {
			return fmt.Errorf("load sync queue: %w", err)
		}
	}

	loaded := LoadSeason(ctx, LoaderConfig{
		Key:           cfg.SnapshotKey,
		Remote:        remoteSnapshots,
		Local:         local,
		RemoteTimeout: cfg.RemoteTimeout,
		Fresh:         func() season.State { return season.NewState(cfg.TeamTitle) },
	})

	// The writer outlives ctx so the final flush still reaches storage.
	writerCtx, stopWriter := context.WithCancel(context.WithoutCancel(ctx))
	defer stopWriter()
	writer := NewWriter(WriterConfig{
		Local:         local,
		Remote:        remoteSnapshots,
		Queue:         queue,
		RemoteTimeout: cfg.RemoteTimeout,
	})
	session := NewSession(SessionConfig{
		Key:          cfg.SnapshotKey,
		Initial:      loaded,
		Persister:    writer,
		SaveDebounce: cfg.SaveDebounce,
		TickInterval: cfg.TickInterval,
	})

	apiCfg := httpapi.Config{Tracker: session, AllowedOrigins: cfg.AllowedOrigins}
	if queue != nil {
		queue.OnReconnect(func() {
			if _, err := writer.Drain(writerCtx); err != nil {
				log.Printf("tracker: drain on reconnect: %v", err)
			}
		})
		apiCfg.Sync = queue
		apiCfg.Drainer = writer
	}

	httpListener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.HTTPPort))
	if err != nil {
		return fmt.Errorf("listen on tracker http port %d: %w", cfg.HTTPPort, err)
	}
	healthListener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.HealthPort))
	if err != nil {
		httpListener.Close()
		return fmt.Errorf("listen on tracker health port %d: %w", cfg.HealthPort, err)
	}

	httpServer := &http.Server{
		Handler:           httpapi.NewHandler(apiCfg),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}
	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("tracker.runtime", grpc_health_v1.HealthCheckResponse_SERVING)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return writer.Run(writerCtx)
	})
	g.Go(func() error {
		log.Printf("tracker http api listening at %v", httpListener.Addr())
		if err := httpServer.Serve(httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.Printf("tracker health server listening at %v", healthListener.Addr())
		if err := grpcServer.Serve(healthListener); err != nil {
			return fmt.Errorf("serve health: %w", err)
		}
		return nil
	})
	if remote != nil {
		watcher := NewWatcher(remote, cfg.ProbeInterval, cfg.RemoteTimeout, queue.SetOnline, log.Printf)
		g.Go(func() error {
			return watcher.Run(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown tracker http api: %v", err)
		}
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		session.Close()
		stopWriter()
		return nil
	})

	log.Printf("tracker started from %s snapshot (key %q, remote %s)", loaded.Source, cfg.SnapshotKey, cfg.Remote)
	return g.Wait()
}
