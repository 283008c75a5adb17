package app

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/huynhanx03/servicequeue/internal/api"
	"github.com/huynhanx03/servicequeue/pkg/audit"
	"github.com/huynhanx03/servicequeue/pkg/database/redis"
	"github.com/huynhanx03/servicequeue/pkg/datastructs/queue"
	"github.com/huynhanx03/servicequeue/pkg/settings"
)

const defaultShutdownTimeout = 10 * time.Second

// App is a configured service queue with its HTTP server and audit trail.
type App struct {
	cfg     *settings.Config
	logger  *zap.Logger
	queue   *queue.ServiceQueue[string]
	trail   *audit.Trail
	server  *http.Server
	closers []io.Closer
}

// New wires the queue, its audit sinks and the HTTP server from cfg.
func New(cfg *settings.Config, logger *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	policy, err := queue.ParsePolicy[string](cfg.Queue.Policy)
	if err != nil {
		return nil, err
	}
	if cfg.Queue.Rule != "" {
		policy = queue.WithRule(policy, cfg.Queue.Rule)
	}

	opts := []queue.Option[string]{
		queue.WithPolicy(policy),
		queue.WithName[string](cfg.Queue.Name),
		queue.WithCapacity[string](cfg.Queue.Capacity),
		queue.WithLogger[string](logger),
	}

	if cfg.Audit.Enabled {
		sink, err := a.buildSink()
		if err != nil {
			a.closeAll()
			return nil, err
		}
		a.trail, err = audit.NewTrail(sink, audit.TrailConfig{
			StripeSize:    cfg.Audit.StripeSize,
			Stripes:       cfg.Audit.Stripes,
			WriteTimeout:  time.Duration(cfg.Audit.WriteTimeout) * time.Millisecond,
			FlushInterval: time.Duration(cfg.Audit.FlushInterval) * time.Millisecond,
			NodeID:        cfg.Audit.NodeID,
		}, logger)
		if err != nil {
			a.closeAll()
			return nil, err
		}
		opts = append(opts, queue.WithRecorder[string](a.trail))
	}

	a.queue = queue.New(opts...)
	if a.trail != nil {
		a.trail.Track(a.queue.Name(), a.queue.CheckpointFunc())
	}

	router := api.NewRouter(api.NewHandler(a.queue, logger), cfg.Server.Mode)
	a.server = &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, fmt.Sprint(cfg.Server.Port)),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("service queue configured",
		zap.String("queue", a.queue.Name()),
		zap.String("policy", queue.PolicyName(policy)),
		zap.String("rule", cfg.Queue.Rule),
		zap.Bool("audit", cfg.Audit.Enabled),
		zap.Bool("redis", cfg.Redis.Enabled),
		zap.Bool("kafka", cfg.Kafka.Enabled),
	)
	return a, nil
}

// buildSink always logs checkpoints and fans out to Redis and Kafka when enabled.
func (a *App) buildSink() (audit.Sink, error) {
	sinks := audit.MultiSink{audit.NewLogSink(a.logger)}

	if a.cfg.Redis.Enabled {
		engine, err := redis.NewConnection(&a.cfg.Redis)
		if err != nil {
			return nil, errors.Wrap(err, "audit redis sink")
		}
		a.closers = append(a.closers, engine)
		ttl := time.Duration(a.cfg.Audit.LatestTTL) * time.Second
		sinks = append(sinks, audit.NewRedisSink(engine, a.cfg.Audit.MaxEntries, ttl))
	}

	if a.cfg.Kafka.Enabled {
		kafka, err := audit.NewKafkaSink(a.cfg.Kafka)
		if err != nil {
			return nil, errors.Wrap(err, "audit kafka sink")
		}
		a.closers = append(a.closers, kafka)
		sinks = append(sinks, kafka)
	}

	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return sinks, nil
}

// Queue returns the served queue.
func (a *App) Queue() *queue.ServiceQueue[string] { return a.queue }

// Handler returns the HTTP handler.
func (a *App) Handler() http.Handler { return a.server.Handler }

// Run serves until ctx is cancelled, then shuts down within the configured timeout.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		a.closeAll()
		return errors.Wrapf(err, "listen %s", a.server.Addr)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("http server listening", zap.String("addr", ln.Addr().String()))
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		timeout := time.Duration(a.cfg.Server.ShutdownTimeout) * time.Second
		if timeout <= 0 {
			timeout = defaultShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		a.logger.Info("shutting down")
		return multierr.Append(a.server.Shutdown(shutdownCtx), a.closeAll())
	})

	return g.Wait()
}

// closeAll flushes the trail before closing the sinks it writes to.
func (a *App) closeAll() error {
	var err error
	if a.trail != nil {
		err = multierr.Append(err, a.trail.Close())
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.closers[i].Close())
	}
	a.closers = nil
	return err
}
