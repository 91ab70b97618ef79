package app

import (
	"context"
	"strings"
	"time"

	"staylist/internal/domain"
)

// ReviewRequest is the typed body of a review submission.
type ReviewRequest struct {
	HotelID string  `json:"hotelId"`
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
}

// ReviewService is thin glue around the review subsystem: it validates,
// attributes the review to the verified identity, and keeps the hotel's
// aggregate rating current.
type ReviewService struct {
	repo     domain.HotelRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewReviewService(r domain.HotelRepository, c domain.Cache, ttl time.Duration) *ReviewService {
	return &ReviewService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *ReviewService) CreateReview(ctx context.Context, who domain.Identity, req ReviewRequest) (domain.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return domain.Review{}, domain.Validationf("rating must be between 1 and 5")
	}
	if strings.TrimSpace(req.Comment) == "" {
		return domain.Review{}, domain.Validationf("comment is required")
	}
	if req.HotelID == "" {
		return domain.Review{}, domain.Validationf("hotelId is required")
	}
	if _, err := s.repo.GetHotel(ctx, req.HotelID); err != nil {
		return domain.Review{}, domain.Dependency("store", err)
	}

	rv := domain.Review{
		HotelID: req.HotelID,
		Rating:  req.Rating,
		Comment: req.Comment,
		UserID:  who.UserID,
	}
	if who.FullName != "" {
		name := who.FullName
		rv.FullName = &name
	}
	id, err := s.repo.InsertReview(ctx, rv)
	if err != nil {
		return domain.Review{}, domain.Dependency("store", err)
	}
	rv.ID = id

	if err := s.repo.RefreshHotelRating(ctx, req.HotelID); err != nil {
		return domain.Review{}, domain.Dependency("store", err)
	}

	_ = s.cache.Del(ctx, "reviews:"+req.HotelID)
	_ = s.cache.Del(ctx, "hotel:"+req.HotelID)
	return rv, nil
}

func (s *ReviewService) ListHotelReviews(ctx context.Context, hotelID string) ([]domain.Review, error) {
	key := "reviews:" + hotelID
	var cached []domain.Review
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		return cached, nil
	}

	if _, err := s.repo.GetHotel(ctx, hotelID); err != nil {
		return nil, domain.Dependency("store", err)
	}
	rs, err := s.repo.ListReviews(ctx, hotelID)
	if err != nil {
		return nil, domain.Dependency("store", err)
	}
	if rs == nil {
		rs = []domain.Review{}
	}
	_ = s.cache.Set(ctx, key, rs, int(s.cacheTTL.Seconds()))
	return rs, nil
}
