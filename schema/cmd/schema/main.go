package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/telhawk-systems/ocsf-mapper/common/config"
	"github.com/telhawk-systems/ocsf-mapper/common/logging"
	natsclient "github.com/telhawk-systems/ocsf-mapper/common/messaging/nats"
	"github.com/telhawk-systems/ocsf-mapper/schema/internal/handlers"
	schemanats "github.com/telhawk-systems/ocsf-mapper/schema/internal/nats"
	"github.com/telhawk-systems/ocsf-mapper/schema/internal/registry"
	"github.com/telhawk-systems/ocsf-mapper/schema/internal/server"
	"github.com/telhawk-systems/ocsf-mapper/schema/internal/service"
	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/loader"
	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/ocsf"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	addr := flag.String("addr", "", "override listen address")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("schema"))
	logging.SetDefault(logger)

	listenAddr := cfg.Server.Addr()
	if *addr != "" {
		listenAddr = *addr
	}

	defaultVersion, err := ocsf.ParseVersion(cfg.Schema.DefaultVersion)
	if err != nil {
		slog.Error("Invalid default schema version", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("Starting schema service",
		slog.String("addr", listenAddr),
		slog.String("schema_source", cfg.Schema.Source),
		slog.String("default_version", defaultVersion.String()),
		slog.String("log_level", cfg.Logging.Level),
	)

	var source loader.Source
	switch cfg.Schema.Source {
	case "http":
		source = loader.NewHTTPSource(cfg.Schema.BaseURL, cfg.Schema.FetchTimeout)
	default:
		source = loader.FileSource{Dir: cfg.Schema.Dir}
	}

	// Set once NATS is up; loads before that are not announced.
	var natsHandler *schemanats.Handler

	regOpts := []registry.Option{
		registry.WithStrict(cfg.Schema.Strict),
		registry.WithLogger(logger.Logger),
		registry.WithLoadHook(func(v ocsf.Version, g *ocsf.Graph) {
			if natsHandler != nil {
				natsHandler.PublishLoaded(context.Background(), v, g)
			}
		}),
	}

	var store *registry.RedisStore
	if cfg.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		store, err = registry.NewRedisStoreFromURL(ctx, cfg.Redis.URL, cfg.Redis.TTL)
		cancel()
		if err != nil {
			slog.Warn("Failed to connect to Redis (continuing without shared cache)",
				slog.String("error", err.Error()))
		} else {
			slog.Info("Connected to Redis schema cache", slog.Duration("ttl", cfg.Redis.TTL))
			regOpts = append(regOpts, registry.WithStore(store))
			defer store.Close()
		}
	}

	reg := registry.New(source, regOpts...)

	svcOpts := []service.Option{
		service.WithDefaultVersion(defaultVersion),
		service.WithLogger(logger),
		service.WithClearHook(func(ctx context.Context, v ocsf.Version) {
			if natsHandler != nil {
				natsHandler.PublishCleared(ctx, v)
			}
		}),
	}

	// NATS is optional; the HTTP API works without it.
	var natsClient *natsclient.Client
	if cfg.NATS.Enabled {
		natsCfg := natsclient.DefaultConfig()
		natsCfg.URL = cfg.NATS.URL
		natsCfg.MaxReconnects = cfg.NATS.MaxReconnects
		natsCfg.ReconnectWait = cfg.NATS.ReconnectWait
		natsCfg.Logger = logger.Logger

		natsClient, err = natsclient.NewClient(natsCfg)
		if err != nil {
			slog.Warn("Failed to connect to NATS (continuing without NATS)",
				slog.String("url", cfg.NATS.URL),
				slog.String("error", err.Error()))
			natsClient = nil
		} else {
			slog.Info("Connected to NATS", slog.String("url", cfg.NATS.URL))
			svcOpts = append(svcOpts, service.WithMessaging(natsClient))
		}
	} else {
		slog.Info("NATS messaging disabled")
	}

	svc := service.New(reg, svcOpts...)

	if natsClient != nil {
		h := schemanats.NewHandler(natsClient, svc, logger.Logger)
		if err := h.Start(context.Background()); err != nil {
			slog.Warn("Failed to start NATS handler", slog.String("error", err.Error()))
		} else {
			natsHandler = h
		}
	}

	if len(cfg.Schema.Preload) > 0 {
		versions := make([]ocsf.Version, 0, len(cfg.Schema.Preload))
		for _, raw := range cfg.Schema.Preload {
			v, err := ocsf.ParseVersion(raw)
			if err != nil {
				slog.Warn("Skipping unknown preload version", slog.String("version", raw))
				continue
			}
			versions = append(versions, v)
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		if err := reg.Preload(ctx, versions); err != nil {
			slog.Warn("Some schema versions failed to preload", slog.String("error", err.Error()))
		}
		cancel()
	}

	routerOpts := server.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         logger,
	}
	if cfg.Metrics.Enabled {
		routerOpts.MetricsPath = cfg.Metrics.Path
	}

	srv := &http.Server{
		Addr:         listenAddr,
		Handler:      server.NewRouter(handlers.NewHandler(svc, logger), routerOpts),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Schema service listening", slog.String("addr", listenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	<-shutdownCtx.Done()
	slog.Info("Shutdown signal received")

	if natsHandler != nil {
		_ = natsHandler.Stop()
	}
	if natsClient != nil {
		if err := natsClient.Drain(); err != nil {
			slog.Warn("NATS drain failed", slog.String("error", err.Error()))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Graceful shutdown failed", slog.String("error", err.Error()))
	}
}
