package main

import (
	"context"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/stylekart/stylekart-api/internal/assignment"
	"github.com/stylekart/stylekart-api/internal/config"
	"github.com/stylekart/stylekart-api/internal/db"
	"github.com/stylekart/stylekart-api/internal/review"
	"github.com/stylekart/stylekart-api/internal/seed"
	"github.com/stylekart/stylekart-api/internal/server"
	"github.com/stylekart/stylekart-api/internal/store"
	"github.com/stylekart/stylekart-api/pkg/logx"
)

func main() {
	// A missing .env is fine in deployed environments.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logx.Init(cfg.Environment)
	logger := logx.With("server")

	ctx := context.Background()

	database, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to mongo")
	}
	if err := db.EnsureIndexes(ctx, database); err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure indexes")
	}

	products := store.NewProductStore(database)
	users := store.NewUserStore(database)
	orders := store.NewOrderStore(database)
	categories := store.NewCategoryStore(database)
	reviewStore := store.NewReviewStore(database)

	shopStore := store.NewShopStore(database)
	var shops server.ShopStore = shopStore
	var engineShops assignment.ShopStore = shopStore
	if cfg.RedisURL != "" {
		rdb, err := store.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		cached := store.NewCachedShopStore(shopStore, rdb, logx.With("shop-cache"))
		shops = cached
		engineShops = cached
	}

	assigner := assignment.NewService(products, engineShops, logx.With("assignment"))
	reviews := review.NewService(reviewStore, products)

	// Seed the storefront definitions the assignment rules expect.
	defs, err := seed.Load(cfg.ShopSeed)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load shop seed")
	}
	if err := seed.Apply(ctx, engineShops, defs, logx.With("seed")); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed shops")
	}

	srv := server.New(cfg, users, products, shops, orders, categories, reviews, assigner, logger)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 6 * time.Minute, // bulk reassignment runs inside shop writes
	}

	logger.Info().Str("port", cfg.Port).Msg("server running")
	if err := httpServer.ListenAndServe(); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
