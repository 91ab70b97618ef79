package domain

import "context"

type HotelRepository interface {
	// Write paths
	InsertHotel(ctx context.Context, h Hotel) error
	UpdateHotel(ctx context.Context, id string, d HotelDraft) error
	UpdateHotelPrice(ctx context.Context, id string, price float64) error
	SetStripePriceID(ctx context.Context, id, priceID string) error
	DeleteHotel(ctx context.Context, id string) error
	InsertReview(ctx context.Context, r Review) (int64, error)
	RefreshHotelRating(ctx context.Context, hotelID string) error

	// Read paths
	GetHotel(ctx context.Context, id string) (Hotel, error)
	ListHotels(ctx context.Context, q HotelsQuery) ([]HotelSummary, error)
	CountHotels(ctx context.Context, q HotelsQuery) (int, error)
	GetSummaries(ctx context.Context, ids []string) ([]HotelSummary, error)
	ListLocations(ctx context.Context) ([]string, error)
	ListReviews(ctx context.Context, hotelID string) ([]Review, error)
}

// Embedder turns free text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex is the nearest-neighbor side of the record store.
type VectorIndex interface {
	Upsert(ctx context.Context, id string, vector []float32) error
	// Search returns up to limit matches by descending similarity, drawn
	// from a candidate pool of roughly pool entries.
	Search(ctx context.Context, vector []float32, limit, pool int) ([]VectorMatch, error)
	Delete(ctx context.Context, id string) error
}

type VectorMatch struct {
	ID    string
	Score float32
}

// PricingProvider mints immutable external price records.
type PricingProvider interface {
	CreatePriceRecord(ctx context.Context, name, description string, unitAmountMinor int64, currency string) (string, error)
}

type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
