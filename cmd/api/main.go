package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "staylist/internal/adapters/http_server"
	"staylist/internal/adapters/identity"
	"staylist/internal/adapters/observability"
	openaiad "staylist/internal/adapters/openai"
	qdrantad "staylist/internal/adapters/qdrant"
	redisad "staylist/internal/adapters/redis"
	stripead "staylist/internal/adapters/stripe"
	"staylist/internal/app"
	"staylist/internal/shared"
	mysqlrepo "staylist/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(reg)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// collaborators
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	embedder, err := openaiad.New(cfg.OpenAIKey, cfg.EmbedModel)
	if err != nil {
		log.Fatal().Err(err).Msg("openai embedder init failed")
	}
	index, err := qdrantad.New(cfg.QdrantHost, cfg.QdrantPort, cfg.Collection)
	if err != nil {
		log.Fatal().Err(err).Msg("qdrant init failed")
	}
	defer index.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := index.EnsureCollection(ctx, openaiad.VectorSize); err != nil {
		log.Fatal().Err(err).Msg("qdrant collection init failed")
	}
	cancel()

	pricing, err := stripead.New(cfg.StripeBase, cfg.StripeKey, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("stripe client init failed")
	}
	verifier, err := identity.New(cfg.IdentityURL)
	if err != nil {
		log.Fatal().Err(err).Msg("identity client init failed")
	}

	// services
	pricingSvc := app.NewPricingService(pricing, repo)
	listing := app.NewListingService(repo, cache, cfg.CacheTTL)
	search := app.NewSearchService(embedder, index, repo, cfg.SearchLimit, cfg.CandidateRatio)
	hotels := app.NewHotelService(repo, embedder, index, pricingSvc, cache, cfg.CacheTTL)
	reviews := app.NewReviewService(repo, cache, cfg.CacheTTL)

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Listing:  listing,
		Search:   search,
		Hotels:   hotels,
		Reviews:  reviews,
		Verifier: verifier,
	})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
