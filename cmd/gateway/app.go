package main

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/vertexpay/onramp-gateway/internal/config"
	"github.com/vertexpay/onramp-gateway/internal/content"
	"github.com/vertexpay/onramp-gateway/internal/database"
	"github.com/vertexpay/onramp-gateway/internal/errlog"
	"github.com/vertexpay/onramp-gateway/internal/logging"
	"github.com/vertexpay/onramp-gateway/internal/metrics"
	"github.com/vertexpay/onramp-gateway/internal/onramp"
)

// app holds the wired gateway components.
type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	metrics *metrics.Metrics

	pipeline *errlog.Pipeline
	store    content.Store

	coinbase *onramp.CoinbaseService
	stripe   *onramp.StripeService
	moonpay  *onramp.MoonPayService

	redis    *redis.Client
	postgres *content.Postgres
}

// newApp wires services from configuration. Optional tiers degrade rather
// than fail: a missing Supabase or Redis config drops that error-log tier,
// and the content store falls back to memory.
func newApp(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*app, error) {
	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.New(),
	}

	var supabaseClient *database.Client
	if cfg.Supabase.URL != "" && cfg.Supabase.ServiceKey != "" {
		client, err := database.NewClient(database.Config{
			URL:        cfg.Supabase.URL,
			ServiceKey: cfg.Supabase.ServiceKey,
		})
		if err != nil {
			return nil, fmt.Errorf("supabase client: %w", err)
		}
		supabaseClient = client
	}

	var backends []errlog.Backend
	if supabaseClient != nil {
		backends = append(backends, errlog.NewSupabaseBackend(supabaseClient, "", ""))
	}
	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cell := errlog.NewRedisCell(a.redis, "client_error_logs", errlog.DefaultRedisTTL)
		backends = append(backends, errlog.NewCellBackend("redis", cell))
	}

	a.pipeline = errlog.NewPipeline(logger,
		errlog.WithBackends(backends...),
		errlog.WithMetrics(a.metrics),
	)
	a.pipeline.Install()

	store, err := a.buildContentStore(ctx, supabaseClient)
	if err != nil {
		return nil, err
	}
	if err := content.EnsureProviders(ctx, store, config.LoadProvidersConfigOrDefault()); err != nil {
		logger.WithError(err).Warn("seeding provider catalogue")
	}
	a.store = store

	a.coinbase = onramp.NewCoinbaseService(cfg.Coinbase, logger, a.metrics)
	a.stripe = onramp.NewStripeService(cfg.Stripe, logger, a.metrics)
	a.moonpay = onramp.NewMoonPayService(cfg.MoonPay)

	return a, nil
}

// buildContentStore picks the store backend: direct Postgres when a DSN is
// configured, the Supabase REST layer when available, memory otherwise.
func (a *app) buildContentStore(ctx context.Context, supabaseClient *database.Client) (content.Store, error) {
	if a.cfg.Database.DSN != "" {
		pg, err := content.OpenPostgres(ctx, a.cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("content store: %w", err)
		}
		a.postgres = pg
		a.logger.Info("content store: postgres")
		return pg, nil
	}

	if supabaseClient != nil {
		a.logger.Info("content store: supabase")
		return content.NewSupabase(supabaseClient), nil
	}

	a.logger.Warn("content store: in-memory, edits will not survive a restart")
	return content.NewMemory(), nil
}

// close releases held connections.
func (a *app) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.WithError(err).Warn("closing redis")
		}
	}
	if a.postgres != nil {
		if err := a.postgres.Close(); err != nil {
			a.logger.WithError(err).Warn("closing postgres")
		}
	}
}
