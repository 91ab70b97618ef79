package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"staylist/internal/domain"
)

// HotelService orchestrates hotel lifecycle: validation, synchronous
// embedding, price-record reconciliation, storage, and vector indexing.
type HotelService struct {
	repo     domain.HotelRepository
	embedder domain.Embedder
	index    domain.VectorIndex
	pricing  *PricingService
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewHotelService(r domain.HotelRepository, e domain.Embedder, ix domain.VectorIndex, p *PricingService, c domain.Cache, ttl time.Duration) *HotelService {
	return &HotelService{repo: r, embedder: e, index: ix, pricing: p, cache: c, cacheTTL: ttl}
}

func validateDraft(d domain.HotelDraft) error {
	switch {
	case strings.TrimSpace(d.Name) == "":
		return domain.Validationf("name is required")
	case strings.TrimSpace(d.Location) == "":
		return domain.Validationf("location is required")
	case strings.TrimSpace(d.Image) == "":
		return domain.Validationf("image is required")
	case strings.TrimSpace(d.Description) == "":
		return domain.Validationf("description is required")
	case d.Price <= 0:
		return domain.Validationf("price must be positive")
	}
	return nil
}

// embedText is the canonical input to the embedding provider for a hotel.
func embedText(d domain.HotelDraft) string {
	return fmt.Sprintf("%s %s %s %v", d.Name, d.Description, d.Location, d.Price)
}

// CreateHotel runs both external calls before touching the store, so a
// failed embedding or price record leaves nothing behind.
func (s *HotelService) CreateHotel(ctx context.Context, d domain.HotelDraft) (domain.Hotel, error) {
	if err := validateDraft(d); err != nil {
		return domain.Hotel{}, err
	}

	vec, err := s.embedder.Embed(ctx, embedText(d))
	if err != nil {
		return domain.Hotel{}, domain.Dependency("embeddings", err)
	}

	priceID, err := s.pricing.ReconcileOnCreate(ctx, d)
	if err != nil {
		return domain.Hotel{}, err
	}

	h := domain.Hotel{
		ID:            uuid.New().String(),
		Name:          d.Name,
		Location:      d.Location,
		Image:         d.Image,
		Description:   d.Description,
		Price:         d.Price,
		StripePriceID: &priceID,
	}
	if err := s.repo.InsertHotel(ctx, h); err != nil {
		return domain.Hotel{}, domain.Dependency("store", err)
	}

	if err := s.index.Upsert(ctx, h.ID, vec); err != nil {
		// Row is committed; the two stores share no transaction. Surface
		// the failure so the operator re-indexes rather than losing the
		// hotel from search silently.
		return domain.Hotel{}, domain.Dependency("vector-index", err)
	}

	s.invalidate(ctx, h.ID)
	return h, nil
}

func (s *HotelService) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	key := "hotel:" + id
	var cached domain.Hotel
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		return cached, nil
	}
	h, err := s.repo.GetHotel(ctx, id)
	if err != nil {
		return domain.Hotel{}, domain.Dependency("store", err)
	}
	_ = s.cache.Set(ctx, key, h, int(s.cacheTTL.Seconds()))
	return h, nil
}

// UpdateHotel replaces all client-supplied fields. It neither re-embeds nor
// re-prices; a price change leaves the external record stale until an
// explicit reconcile.
func (s *HotelService) UpdateHotel(ctx context.Context, id string, d domain.HotelDraft) (domain.Hotel, error) {
	if err := validateDraft(d); err != nil {
		return domain.Hotel{}, err
	}
	if _, err := s.repo.GetHotel(ctx, id); err != nil {
		return domain.Hotel{}, domain.Dependency("store", err)
	}
	if err := s.repo.UpdateHotel(ctx, id, d); err != nil {
		return domain.Hotel{}, domain.Dependency("store", err)
	}
	s.invalidate(ctx, id)
	h, err := s.repo.GetHotel(ctx, id)
	if err != nil {
		return domain.Hotel{}, domain.Dependency("store", err)
	}
	return h, nil
}

// PatchHotelPrice updates only the nightly rate.
func (s *HotelService) PatchHotelPrice(ctx context.Context, id string, price float64) error {
	if price <= 0 {
		return domain.Validationf("price is required")
	}
	if _, err := s.repo.GetHotel(ctx, id); err != nil {
		return domain.Dependency("store", err)
	}
	if err := s.repo.UpdateHotelPrice(ctx, id, price); err != nil {
		return domain.Dependency("store", err)
	}
	s.invalidate(ctx, id)
	return nil
}

// DeleteHotel removes the row; the vector point is deleted best-effort and
// the external price record is left behind (the provider owns it).
func (s *HotelService) DeleteHotel(ctx context.Context, id string) error {
	if _, err := s.repo.GetHotel(ctx, id); err != nil {
		return domain.Dependency("store", err)
	}
	if err := s.repo.DeleteHotel(ctx, id); err != nil {
		return domain.Dependency("store", err)
	}
	if err := s.index.Delete(ctx, id); err != nil {
		log.Warn().Str("id", id).Err(err).Msg("vector point delete failed")
	}
	s.invalidate(ctx, id)
	return nil
}

// ReconcilePrice re-issues the external price record for the current stored
// price and returns the updated hotel.
func (s *HotelService) ReconcilePrice(ctx context.Context, id string) (domain.Hotel, error) {
	h, err := s.pricing.ReconcileOnDemand(ctx, id)
	if err != nil {
		return domain.Hotel{}, err
	}
	s.invalidate(ctx, id)
	return h, nil
}

func (s *HotelService) invalidate(ctx context.Context, id string) {
	_ = s.cache.Del(ctx, "hotel:"+id)
	_ = s.cache.Del(ctx, "reviews:"+id)
	_ = s.cache.Del(ctx, "locations")
}
