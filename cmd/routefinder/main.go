package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"

	"route-finder/internal/animator"
	"route-finder/internal/api"
	"route-finder/internal/auth"
	"route-finder/internal/config"
	"route-finder/internal/db"
	"route-finder/internal/errtrack"
	"route-finder/internal/finder"
	"route-finder/internal/geocode"
	"route-finder/internal/history"
	"route-finder/internal/logging"
	"route-finder/internal/metrics"
	"route-finder/internal/proxy"
	"route-finder/internal/publisher"
	"route-finder/internal/routing"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load configuration from .env and environment
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, "route-finder", cfg.LogLevel)
	slog.SetDefault(logger)

	if _, err := errtrack.Init(errtrack.Config{DSN: cfg.SentryDSN, Environment: cfg.Environment, Release: version}, logger); err != nil {
		logger.Warn("error tracking disabled", "error", err)
	}
	defer errtrack.Flush(2 * time.Second)

	// Root context with cancellation on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Metrics setup
	var mcol *metrics.Collector
	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		mcol = metrics.NewCollector(cfg.FrameInterval)
		metricsSrv = mcol.Serve(cfg.MetricsAddr, logger)
	}

	store, closeStore, err := openHistory(ctx, cfg, logger)
	if err != nil {
		fatal(logger, "history store", err)
	}
	defer closeStore()

	sink, closeSink, err := openSink(cfg, mcol, logger)
	if err != nil {
		fatal(logger, "nats error", err)
	}
	defer closeSink()

	verifier, err := newVerifier(ctx, cfg, logger)
	if err != nil {
		fatal(logger, "auth", err)
	}

	hc := &http.Client{Timeout: cfg.HTTPTimeout}
	anim := animator.NewManager(animator.TickerFrames(cfg.FrameInterval), mcol, logger)

	var finderStore history.Store
	if cfg.HistoryBackend != config.HistoryNone {
		finderStore = store
	}
	f := finder.New(ctx, finder.Options{
		Geocoder:        geocode.New(hc, cfg.OpenCageURL, cfg.OpenCageAPIKey),
		Router:          routing.New(hc, cfg.OSRMURL),
		Animator:        anim,
		Sink:            sink,
		History:         finderStore,
		HistoryLimit:    cfg.HistoryLimit,
		DefaultLanguage: cfg.DefaultLanguage,
		Metrics:         mcol,
		Logger:          logger,
	})

	var directions http.Handler
	if cfg.GoogleMapsAPIKey != "" {
		mc, err := proxy.NewMapsClient(cfg.GoogleMapsAPIKey, hc)
		if err != nil {
			fatal(logger, "maps client", err)
		}
		directions = proxy.NewHandler(mc, store, mcol, logger)
	} else {
		logger.Warn("GOOGLE_MAPS_API_KEY not set, /api/directions disabled")
	}

	srv := &http.Server{
		Addr: cfg.ListenAddr,
		Handler: api.NewRouter(api.Config{
			Sessions:        f,
			Proxy:           directions,
			Verifier:        verifier,
			CORSOrigin:      cfg.CORSOrigin,
			DefaultLanguage: cfg.DefaultLanguage,
			Logger:          logger,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		// Event streams end when the process is asked to stop.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	go func() {
		logger.Info("listening", "addr", cfg.ListenAddr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Block until context cancelled
	<-ctx.Done()

	// Allow graceful shutdown
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	anim.Shutdown()
	f.Shutdown()
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	logger.Info("shutdown complete")
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	errtrack.Flush(2 * time.Second)
	os.Exit(1)
}

// openHistory connects the configured search history backend.
func openHistory(ctx context.Context, cfg *config.Config, logger *slog.Logger) (history.Store, func(), error) {
	switch cfg.HistoryBackend {
	case config.HistoryFirestore:
		client, err := firestore.NewClient(ctx, cfg.ProjectID)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("history backend", "backend", "firestore", "project", cfg.ProjectID)
		return history.NewFirestoreStore(client), func() { _ = client.Close() }, nil
	case config.HistoryPostgres:
		sqlDB, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Ping(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		if err := db.Migrate(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		logger.Info("history backend", "backend", "postgres")
		return history.NewPostgresStore(sqlDB), func() { _ = sqlDB.Close() }, nil
	default:
		logger.Info("history backend", "backend", "none")
		return history.Nop{}, func() {}, nil
	}
}

// openSink picks where marker samples go: NATS when configured, the log
// otherwise.
func openSink(cfg *config.Config, mcol *metrics.Collector, logger *slog.Logger) (animator.Sink, func(), error) {
	if cfg.NATSURL == "" {
		logger.Info("NATS_URL not set, marker samples go to the log")
		p := publisher.NewLogPublisher(logger)
		return p, p.Close, nil
	}
	p, err := publisher.NewNATSPublisher(cfg.NATSURL, cfg.NATSPrefix, cfg.LogNATSSubjects, publisherMetrics(mcol), logger)
	if err != nil {
		return nil, nil, err
	}
	return p, p.Close, nil
}

// publisherMetrics keeps a nil collector from becoming a non-nil interface.
func publisherMetrics(c *metrics.Collector) publisher.PublisherMetrics {
	if c == nil {
		return nil
	}
	return c
}

func newVerifier(ctx context.Context, cfg *config.Config, logger *slog.Logger) (auth.Verifier, error) {
	if cfg.AuthDisabled {
		logger.Warn("AUTH_DISABLED set, trusting X-User-Id")
		return auth.DevVerifier{}, nil
	}
	return auth.NewFirebaseVerifier(ctx, cfg.ProjectID)
}
