package app

import (
	"context"
	"math"

	"golang.org/x/sync/singleflight"

	"staylist/internal/domain"
)

// priceCurrency is the fixed currency of external price records.
const priceCurrency = "usd"

// PricingService owns the link between a hotel's stored nightly rate and its
// external price record. Records are immutable on the provider side, so every
// reconciliation mints a new one and repoints the hotel at it.
type PricingService struct {
	provider domain.PricingProvider
	repo     domain.HotelRepository
	group    singleflight.Group
}

func NewPricingService(p domain.PricingProvider, r domain.HotelRepository) *PricingService {
	return &PricingService{provider: p, repo: r}
}

func minorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

// ReconcileOnCreate mints the price record for a hotel that is about to be
// created. The caller commits the returned ID together with the hotel; if
// this fails, the creation as a whole fails.
func (s *PricingService) ReconcileOnCreate(ctx context.Context, d domain.HotelDraft) (string, error) {
	id, err := s.provider.CreatePriceRecord(ctx, d.Name, d.Description, minorUnits(d.Price), priceCurrency)
	if err != nil {
		return "", domain.Dependency("pricing", err)
	}
	return id, nil
}

// ReconcileOnDemand re-issues the price record for the hotel's current stored
// price and persists the new record ID. Concurrent calls for the same hotel
// collapse onto one provider round trip via singleflight, so a racing pair
// cannot mint two records for one price.
func (s *PricingService) ReconcileOnDemand(ctx context.Context, hotelID string) (domain.Hotel, error) {
	v, err, _ := s.group.Do(hotelID, func() (any, error) {
		// The flight is shared by every collapsed caller; detach it from
		// the leader's cancellation so one aborted request cannot fail
		// the rest mid-reconcile.
		return s.reconcile(context.WithoutCancel(ctx), hotelID)
	})
	if err != nil {
		return domain.Hotel{}, err
	}
	return v.(domain.Hotel), nil
}

func (s *PricingService) reconcile(ctx context.Context, hotelID string) (domain.Hotel, error) {
	h, err := s.repo.GetHotel(ctx, hotelID)
	if err != nil {
		return domain.Hotel{}, domain.Dependency("store", err)
	}

	priceID, err := s.provider.CreatePriceRecord(ctx, h.Name, h.Description, minorUnits(h.Price), priceCurrency)
	if err != nil {
		return domain.Hotel{}, domain.Dependency("pricing", err)
	}

	if err := s.repo.SetStripePriceID(ctx, hotelID, priceID); err != nil {
		return domain.Hotel{}, domain.Dependency("store", err)
	}
	h.StripePriceID = &priceID
	return h, nil
}
