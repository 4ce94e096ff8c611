package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KarabasUehal/Smoked-Meat/config"
	httpapi "github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/api/http"
	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/auth"
	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/cart"
	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/client"
	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/gateway"
	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/service"
	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/storage"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()
	config.InitLogger(cfg)

	httpClient := &http.Client{Timeout: cfg.UpstreamTimeout}
	upstream := client.NewUpstream(cfg.UpstreamURL, httpClient)

	var (
		tokens auth.TokenStore = auth.NewMemoryTokenStore()
		pricer cart.Pricer     = upstream
	)
	if cfg.RedisEnabled() {
		rdb := config.MustInitRedis(cfg)
		defer rdb.Close()
		tokens = storage.NewRedisTokenStore(rdb)
		pricer = service.NewCachedPricer(upstream, storage.NewRedisQuoteCache(rdb), cfg.QuoteCacheTTL)
		log.Info().Str("host", cfg.RedisHost).Msg("Redis session store and quote cache enabled")
	}

	var receipts service.ReceiptRepository
	if cfg.PostgresEnabled() {
		db := config.MustInitPostgres(cfg)
		defer db.Close()
		repo := storage.NewPostgresReceiptRepository(db)
		if err := repo.EnsureSchema(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("Failed to ensure receipts schema")
		}
		receipts = repo
		log.Info().Str("host", cfg.DBHost).Msg("Receipts ledger enabled")
	}

	var publisher service.OrderPublisher
	if cfg.KafkaEnabled() {
		writer := config.NewKafkaWriter(cfg)
		defer writer.Close()
		publisher = storage.NewKafkaPublisher(writer)
		log.Info().Str("broker", cfg.KafkaBroker).Str("topic", cfg.KafkaOrdersTopic).Msg("Order events enabled")
	}

	sessions := service.NewSessions(tokens, pricer, cfg.ReconcileTimeout, service.WithIdleTTL(cfg.SessionIdleTTL))
	defer sessions.Close()

	handler := httpapi.NewHandler(
		sessions,
		upstream,
		service.NewCartService(upstream),
		upstream,
		service.NewCheckoutService(upstream, receipts, publisher),
		upstream,
		receipts,
		service.DefaultQRGenerator{BaseURL: cfg.PublicBaseURL},
	)
	gw := gateway.NewGateway(gateway.Config{UpstreamURL: cfg.UpstreamURL}, httpClient, handler.SessionAuth)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SessionIdleTTL > 0 {
		go sessions.RunEviction(ctx, min(cfg.SessionIdleTTL, time.Minute))
	}

	router := httpapi.NewRouter(handler, gw, cfg.AllowedOrigins)
	if err := httpapi.StartServer(ctx, ":"+cfg.Port, router); err != nil {
		log.Error().Err(err).Msg("Server stopped")
	}
}
