package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	OpenAIKey   string
	EmbedModel  string
	QdrantHost  string
	QdrantPort  int
	Collection  string
	StripeBase  string
	StripeKey   string
	IdentityURL string

	SearchLimit    int // semantic search result cap
	CandidateRatio int // candidate pool = ratio * SearchLimit
	Workers        int // seeder concurrency
	CacheTTL       time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    env("METRICS_ADDR", ":9100"),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/staylist?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:      env("REDIS_ADDR", "localhost:6379"),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisDB:        atoi("REDIS_DB", 0),
		OpenAIKey:      env("OPENAI_API_KEY", ""),
		EmbedModel:     env("OPENAI_EMBED_MODEL", ""),
		QdrantHost:     env("QDRANT_HOST", "localhost"),
		QdrantPort:     atoi("QDRANT_PORT", 6334),
		Collection:     env("QDRANT_COLLECTION", "hotels"),
		StripeBase:     env("STRIPE_BASE_URL", "https://api.stripe.com"),
		StripeKey:      env("STRIPE_API_KEY", ""),
		IdentityURL:    env("IDENTITY_VERIFY_URL", ""),
		SearchLimit:    atoi("SEARCH_LIMIT", 4),
		CandidateRatio: atoi("SEARCH_CANDIDATE_RATIO", 6),
		Workers:        atoi("SEED_WORKERS", 8),
		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
	}
	if c.OpenAIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is empty")
	}
	if c.StripeKey == "" {
		log.Warn().Msg("STRIPE_API_KEY is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
