package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"staylist/internal/domain"
)

const (
	defaultPageSize = 12
	maxPageSize     = 48
)

// ListingRequest is the typed shape of the browse query parameters. The HTTP
// layer parses leniently into it; zero values mean "absent".
type ListingRequest struct {
	Locations []string
	MinPrice  *float64
	MaxPrice  *float64
	SortBy    string
	Page      int
	PageSize  int
}

// ListingService turns a ListingRequest into a bounded fetch plan and
// executes it against the record store.
type ListingService struct {
	repo     domain.HotelRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewListingService(r domain.HotelRepository, c domain.Cache, ttl time.Duration) *ListingService {
	return &ListingService{repo: r, cache: c, cacheTTL: ttl}
}

// sortPlans maps client sort keys onto (field, direction). Unrecognized keys
// fall back to alphabetical-by-name; the browse surface never errors on
// presentation controls.
var sortPlans = map[string]struct {
	field string
	desc  bool
}{
	"price_asc":   {"price", false},
	"price_desc":  {"price", true},
	"rating_desc": {"rating", true},
	"alpha_asc":   {"name", false},
	"featured":    {"rating", true},
}

// plan normalizes a request into the query the repository executes.
func plan(req ListingRequest) (domain.HotelsQuery, int, int) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	size := req.PageSize
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	sp, ok := sortPlans[req.SortBy]
	if !ok {
		sp.field, sp.desc = "name", false
	}

	return domain.HotelsQuery{
		Locations: req.Locations,
		MinPrice:  req.MinPrice,
		MaxPrice:  req.MaxPrice,
		SortField: sp.field,
		SortDesc:  sp.desc,
		Offset:    (page - 1) * size,
		Limit:     size,
	}, page, size
}

func (s *ListingService) ListHotels(ctx context.Context, req ListingRequest) (domain.HotelsPage, error) {
	q, page, size := plan(req)

	key := listCacheKey(q)
	var cached domain.HotelsPage
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		return cached, nil
	}

	// Page rows and full predicate count are independent; fetch them in
	// parallel.
	var (
		items []domain.HotelSummary
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.repo.ListHotels(gctx, q)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.CountHotels(gctx, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.HotelsPage{}, domain.Dependency("store", err)
	}

	if items == nil {
		items = []domain.HotelSummary{}
	}
	out := domain.HotelsPage{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   size,
		TotalPages: (total + size - 1) / size,
	}
	_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

// ListAllHotels returns every projection unpaginated, name-ascending.
func (s *ListingService) ListAllHotels(ctx context.Context) ([]domain.HotelSummary, error) {
	items, err := s.repo.ListHotels(ctx, domain.HotelsQuery{SortField: "name"})
	if err != nil {
		return nil, domain.Dependency("store", err)
	}
	if items == nil {
		items = []domain.HotelSummary{}
	}
	return items, nil
}

// ListLocationNames returns the distinct location facet values.
func (s *ListingService) ListLocationNames(ctx context.Context) ([]string, error) {
	var cached []string
	if ok, _ := s.cache.Get(ctx, "locations", &cached); ok {
		return cached, nil
	}
	names, err := s.repo.ListLocations(ctx)
	if err != nil {
		return nil, domain.Dependency("store", err)
	}
	if names == nil {
		names = []string{}
	}
	_ = s.cache.Set(ctx, "locations", names, int(s.cacheTTL.Seconds()))
	return names, nil
}

// listCacheKey hashes the normalized plan so equal requests share one entry.
// Listing entries expire by TTL only; writes tolerate a short staleness
// window instead of chasing every page key.
func listCacheKey(q domain.HotelsQuery) string {
	b, _ := json.Marshal(q)
	sum := sha1.Sum(b)
	return fmt.Sprintf("hotels:list:%s", hex.EncodeToString(sum[:8]))
}
