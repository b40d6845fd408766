package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/cache"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/config"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/domain"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/handler"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/hub"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/kafka"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/recap"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/registry"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/repository"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/service"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/database"
	pkglog "github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/log"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/pubsub"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty || cfg.Log.Level == "debug",
		ServiceName: "stream-coordinator",
		InstanceID:  cfg.Instance.ID,
	})
	logger := pkglog.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database using GORM
	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db, domain.Models()...); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("database migration completed")

	// Initialize repositories
	var streams repository.StreamRepository = repository.NewGormStreamRepository(db)
	users := repository.NewGormUserRepository(db)
	ledger := repository.NewGormLedger(db)

	if cfg.Cache.Enabled {
		streamCache, err := cache.NewRedisStreamCache(cfg.Redis, cfg.Cache.Prefix)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer streamCache.Close()
		streams = repository.NewCachedStreamRepository(streams, streamCache, cfg.Cache.StreamTTL)
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis stream cache connected")
	}

	// Cross-instance status relay
	var bus pubsub.PubSub
	if cfg.PubSub.Enabled() {
		bus, err = pubsub.NewPubSub(cfg.PubSub)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize pubsub")
		}
		defer bus.Close()
		logger.Info().Str("driver", cfg.PubSub.Driver).Msg("pubsub connected")
	}

	// Lifecycle events
	var producer kafka.StreamEventProducer
	if cfg.Kafka.Enabled {
		p, err := kafka.NewConfluentProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Partitions)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize kafka producer")
		}
		defer p.Close()
		producer = p
		logger.Info().Str("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("kafka producer connected")
	}

	// Recap archive
	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize recap storage")
	}

	// Initialize hub and coordinator
	wsHub := hub.NewHub(cfg.WebSocket)
	go wsHub.Run(ctx)

	coordinator := service.NewCoordinatorService(service.Options{
		Registry:      registry.New(),
		Emitter:       wsHub,
		Streams:       streams,
		Users:         users,
		Ledger:        ledger,
		Producer:      producer,
		PubSub:        bus,
		Recaps:        recap.NewTracker(store),
		InstanceID:    cfg.Instance.ID,
		ChatMaxLength: cfg.Chat.MaxLength,
	})
	if err := coordinator.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to start coordinator")
	}
	defer coordinator.Stop()

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))

	handler.NewHandler(coordinator).RegisterRoutes(r)
	handler.NewWSHandler(ctx, wsHub, coordinator, cfg.WebSocket).RegisterRoutes(r)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: r,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("stream-coordinator listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down stream-coordinator")

		timeout := cfg.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
	}
	logger.Info().Msg("stream-coordinator stopped")
}
