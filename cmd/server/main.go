package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"udonmap/internal/audit"
	cataloghandler "udonmap/internal/catalog/handler"
	catalogservice "udonmap/internal/catalog/service"
	catalogmem "udonmap/internal/catalog/store/memory"
	catalogpg "udonmap/internal/catalog/store/postgres"
	favoritesengine "udonmap/internal/favorites/engine"
	favoriteshandler "udonmap/internal/favorites/handler"
	favmem "udonmap/internal/favorites/store/memory"
	favpg "udonmap/internal/favorites/store/postgres"
	"udonmap/internal/identity"
	"udonmap/internal/platform/config"
	"udonmap/internal/platform/httpserver"
	"udonmap/internal/platform/logger"
	"udonmap/internal/platform/metrics"
	platformpg "udonmap/internal/platform/postgres"
	platformredis "udonmap/internal/platform/redis"
	"udonmap/internal/ratelimit/cooldown"
	cooldownmem "udonmap/internal/ratelimit/store/memory"
	cooldownredis "udonmap/internal/ratelimit/store/redis"
	submissionhandler "udonmap/internal/submission/handler"
	submissionmetrics "udonmap/internal/submission/metrics"
	submissionports "udonmap/internal/submission/ports"
	submissionquota "udonmap/internal/submission/quota"
	submissionservice "udonmap/internal/submission/service"
	submem "udonmap/internal/submission/store/memory"
	subpg "udonmap/internal/submission/store/postgres"
	httptransport "udonmap/internal/transport/http"
)

// main wires stores, services, and the HTTP surface. Every store has an
// in-memory fallback so the service runs without external infrastructure.
func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("failed to load configuration", "error", err.Error())
		os.Exit(1)
	}

	// Stores.
	var (
		catalogStore   catalogservice.Store
		submissionSt   submissionports.Store
		applier        submissionports.DecisionApplier
		favoritesStore favoritesengine.Store
	)
	if cfg.PostgresDSN != "" {
		db, err := platformpg.Open(cfg.PostgresDSN)
		if err != nil {
			log.Error("failed to connect to postgres", "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()
		catalogStore = catalogpg.New(db)
		pgSubs := subpg.New(db)
		submissionSt = pgSubs
		applier = pgSubs
		favoritesStore = favpg.New(db, cfg.FavoritePollInterval)
		log.Info("using postgres stores")
	} else {
		memSubs := submem.New()
		memShops := catalogmem.New()
		catalogStore = memShops
		submissionSt = memSubs
		applier = submem.NewDecisionApplier(memSubs, memShops)
		favoritesStore = favmem.New()
		log.Info("using in-memory stores")
	}

	// Cooldown store, redis-backed when configured.
	var cooldownStore cooldown.Store = cooldownmem.New()
	if cfg.Redis.URL != "" {
		redisClient, err := platformredis.New(cfg.Redis)
		if err != nil {
			log.Error("failed to connect to redis", "error", err.Error())
			os.Exit(1)
		}
		defer redisClient.Close()
		cooldownStore = cooldownredis.New(redisClient.Client)
		log.Info("using redis cooldown store")
	}

	// Audit trail, kafka-backed when configured. Events are drained to the
	// sink by a background worker so request handling never waits on it.
	var auditSink audit.Publisher
	if cfg.KafkaBrokers != "" {
		kafkaPublisher, err := audit.NewKafkaPublisher(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaAuditTopic)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err.Error())
			os.Exit(1)
		}
		defer kafkaPublisher.Close()
		auditSink = kafkaPublisher
		log.Info("publishing audit events to kafka", "topic", cfg.KafkaAuditTopic)
	} else {
		auditSink = audit.NewStorePublisher(audit.NewMemoryStore())
	}
	auditPublisher := audit.NewAsyncPublisher(auditSink, 0, log)
	defer auditPublisher.Close()

	// Services.
	catalog, err := catalogservice.New(catalogStore, catalogservice.WithLogger(log))
	if err != nil {
		log.Error("failed to build catalog service", "error", err.Error())
		os.Exit(1)
	}
	limiter, err := cooldown.New(cooldownStore, cfg.SubmitCooldown, cooldown.WithLogger(log))
	if err != nil {
		log.Error("failed to build cooldown limiter", "error", err.Error())
		os.Exit(1)
	}
	guard, err := submissionquota.New(submissionSt, cfg.PendingLimit)
	if err != nil {
		log.Error("failed to build quota guard", "error", err.Error())
		os.Exit(1)
	}
	submissions, err := submissionservice.New(submissionSt, applier, catalog, limiter, guard,
		submissionservice.WithLogger(log),
		submissionservice.WithAuditPublisher(auditPublisher),
		submissionservice.WithMetrics(submissionmetrics.New()),
	)
	if err != nil {
		log.Error("failed to build submission service", "error", err.Error())
		os.Exit(1)
	}
	favorites, err := favoritesengine.NewManager(favoritesStore, catalog, cfg.FavoriteWriteTimeout,
		favoritesengine.WithManagerLogger(log))
	if err != nil {
		log.Error("failed to build favorites manager", "error", err.Error())
		os.Exit(1)
	}
	defer favorites.Close()

	tokens := identity.NewService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:        log,
		Metrics:       metrics.New(),
		Validator:     tokens,
		ThrottleRPS:   cfg.ThrottleRPS,
		ThrottleBurst: cfg.ThrottleBurst,
		Catalog:       cataloghandler.New(catalog, log),
		Submissions:   submissionhandler.New(submissions, log),
		Favorites:     favoriteshandler.New(favorites, log),
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting udonmap", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
		os.Exit(1)
	}
}
