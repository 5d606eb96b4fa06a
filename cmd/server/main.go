package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"trustledger/internal/admin"
	"trustledger/internal/events"
	"trustledger/internal/events/kafka"
	jwttoken "trustledger/internal/jwt_token"
	"trustledger/internal/ledger/handler"
	"trustledger/internal/ledger/metrics"
	"trustledger/internal/ledger/revcache"
	"trustledger/internal/ledger/service"
	"trustledger/internal/ledger/store"
	"trustledger/internal/platform/config"
	"trustledger/internal/platform/httpserver"
	"trustledger/internal/platform/logger"
	platformredis "trustledger/internal/platform/redis"
	"trustledger/internal/ratelimit"
	"trustledger/internal/signer"
	httptransport "trustledger/internal/transport/http"
	id "trustledger/pkg/domain"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the ledger service.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	owner, err := id.ParseAddress(cfg.Server.OwnerAddress)
	if err != nil || owner.IsZero() {
		log.Error("TRUSTLEDGER_OWNER_ADDRESS must be a non-zero address", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, cleanup, err := buildStore(ctx, cfg, log)
	if err != nil {
		log.Error("store setup failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(metrics.New()),
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis setup failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		opts = append(opts, service.WithRevocationMirror(revcache.NewRedis(redisClient.Client)))
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher, err := kafka.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			log.Error("kafka setup failed", "error", err)
			os.Exit(1)
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}
	opts = append(opts, service.WithEvents(publisher))

	svc := service.New(st, signer.NewSecp256k1(), owner, opts...)
	if err := svc.Restore(ctx); err != nil {
		log.Error("failed to restore ledger state", "error", err)
		os.Exit(1)
	}

	tokens := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, "trustledger", "trustledger-api")
	verifyLimiter := ratelimit.New(120, time.Minute)
	router := httptransport.NewRouter(log,
		handler.New(svc, log, jwttoken.NewJWTServiceAdapter(tokens), verifyLimiter),
		admin.New(svc, owner, cfg.Server.AdminToken, log),
	)

	srv := httpserver.New(cfg.Server.Addr, router)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting trustledger", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("trustledger stopped")
}

// buildStore selects Postgres when a DSN is configured and falls back to the
// in-memory store for local development.
func buildStore(ctx context.Context, cfg config.Config, log *slog.Logger) (store.Store, func(), error) {
	if cfg.Postgres.DSN == "" {
		log.Warn("no postgres DSN configured, using in-memory store")
		return store.NewInMemory(), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, nil, err
	}
	pg := store.NewPostgres(pool)
	if err := pg.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return pg, pool.Close, nil
}
