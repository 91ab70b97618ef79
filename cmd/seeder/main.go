// Command seeder loads hotel drafts from a JSON file and creates them
// through the real creation path: embedding, price record, row, vector.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"staylist/internal/adapters/observability"
	openaiad "staylist/internal/adapters/openai"
	qdrantad "staylist/internal/adapters/qdrant"
	redisad "staylist/internal/adapters/redis"
	stripead "staylist/internal/adapters/stripe"
	"staylist/internal/app"
	"staylist/internal/domain"
	"staylist/internal/shared"
	mysqlrepo "staylist/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	path := "seed/hotels.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Str("path", path).Err(err).Msg("read seed file failed")
	}
	var drafts []domain.HotelDraft
	if err := json.Unmarshal(raw, &drafts); err != nil {
		log.Fatal().Err(err).Msg("parse seed file failed")
	}

	log.Info().Int("hotels", len(drafts)).Int("workers", cfg.Workers).Msg("seeder starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}

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

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := index.EnsureCollection(initCtx, openaiad.VectorSize); err != nil {
		log.Fatal().Err(err).Msg("qdrant collection init failed")
	}
	cancel()

	pricing, err := stripead.New(cfg.StripeBase, cfg.StripeKey, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("stripe client init failed")
	}

	hotels := app.NewHotelService(repo, embedder, index,
		app.NewPricingService(pricing, repo), cache, cfg.CacheTTL)

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for _, d := range drafts {
		d := d

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(draft domain.HotelDraft) {
			defer wg.Done()
			defer sem.Release(1)

			created, err := hotels.CreateHotel(ctx, draft)
			if err != nil {
				log.Warn().Str("name", draft.Name).Err(err).Msg("seed failed")
				return
			}
			log.Info().Str("id", created.ID).Str("name", created.Name).Msg("seed ok")
		}(d)
	}

	wg.Wait()
	log.Info().Msg("seeding completed")
}
