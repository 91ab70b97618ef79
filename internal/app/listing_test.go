package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"staylist/internal/app"
	"staylist/internal/domain"
)

// ---- fakes (shared across the app tests) ----

type fakeRepo struct {
	mu sync.Mutex

	hotels    map[string]domain.Hotel
	summaries []domain.HotelSummary
	total     int

	lastQuery   domain.HotelsQuery
	inserted    []domain.Hotel
	updatedID   string
	priceByID   map[string]float64
	stripeByID  map[string]string
	deleted     []string
	reviews     []domain.Review
	refreshedID string

	listErr  error
	countErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		hotels:     map[string]domain.Hotel{},
		priceByID:  map[string]float64{},
		stripeByID: map[string]string{},
	}
}

func (f *fakeRepo) InsertHotel(ctx context.Context, h domain.Hotel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, h)
	f.hotels[h.ID] = h
	return nil
}

func (f *fakeRepo) UpdateHotel(ctx context.Context, id string, d domain.HotelDraft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updatedID = id
	h := f.hotels[id]
	h.Name, h.Location, h.Image, h.Description, h.Price = d.Name, d.Location, d.Image, d.Description, d.Price
	f.hotels[id] = h
	return nil
}

func (f *fakeRepo) UpdateHotelPrice(ctx context.Context, id string, price float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.priceByID[id] = price
	h := f.hotels[id]
	h.Price = price
	f.hotels[id] = h
	return nil
}

func (f *fakeRepo) SetStripePriceID(ctx context.Context, id, priceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stripeByID[id] = priceID
	h := f.hotels[id]
	h.StripePriceID = &priceID
	f.hotels[id] = h
	return nil
}

func (f *fakeRepo) DeleteHotel(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	delete(f.hotels, id)
	return nil
}

func (f *fakeRepo) InsertReview(ctx context.Context, r domain.Review) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = int64(len(f.reviews) + 1)
	f.reviews = append(f.reviews, r)
	return r.ID, nil
}

func (f *fakeRepo) RefreshHotelRating(ctx context.Context, hotelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshedID = hotelID
	return nil
}

func (f *fakeRepo) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.hotels[id]
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return h, nil
}

func (f *fakeRepo) ListHotels(ctx context.Context, q domain.HotelsQuery) ([]domain.HotelSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = q
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.summaries, nil
}

func (f *fakeRepo) CountHotels(ctx context.Context, q domain.HotelsQuery) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.total, nil
}

func (f *fakeRepo) GetSummaries(ctx context.Context, ids []string) ([]domain.HotelSummary, error) {
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []domain.HotelSummary
	for _, s := range f.summaries {
		if want[s.ID] {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListLocations(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, s := range f.summaries {
		if !seen[s.Location] {
			seen[s.Location] = true
			out = append(out, s.Location)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListReviews(ctx context.Context, hotelID string) ([]domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Review
	for _, r := range f.reviews {
		if r.HotelID == hotelID {
			out = append(out, r)
		}
	}
	return out, nil
}

// fakeCache round-trips values through JSON so any cached shape works.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(b, dst); err != nil {
		delete(c.store, key)
		return false, nil
	}
	return true, nil
}

// corruptAll replaces every stored value with undecodable bytes.
func (c *fakeCache) corruptAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.store {
		c.store[k] = []byte(`{"items": 42`)
	}
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, _ := json.Marshal(v)
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

func ptr[T any](v T) *T { return &v }

func summary(id, name, loc string, price float64) domain.HotelSummary {
	return domain.HotelSummary{ID: id, Name: name, Location: loc, Price: price, ReviewIDs: []int64{}}
}

// ---- tests ----

func TestListHotels_Defaults(t *testing.T) {
	repo := newFakeRepo()
	repo.summaries = []domain.HotelSummary{summary("h1", "Alfa", "Goa", 80)}
	repo.total = 30
	svc := app.NewListingService(repo, &fakeCache{}, 10*time.Minute)

	page, err := svc.ListHotels(context.Background(), app.ListingRequest{})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if page.Page != 1 || page.PageSize != 12 || page.Total != 30 || page.TotalPages != 3 {
		t.Fatalf("unexpected envelope: %+v", page)
	}
	q := repo.lastQuery
	if q.Offset != 0 || q.Limit != 12 || q.SortField != "name" || q.SortDesc {
		t.Fatalf("unexpected plan: %+v", q)
	}
}

func TestListHotels_PagingNormalization(t *testing.T) {
	cases := []struct {
		name             string
		page, size       int
		wantPage         int
		wantSize         int
		wantOffset       int
		total, wantPages int
	}{
		{"negative page", -5, 0, 1, 12, 0, 25, 3},
		{"zero page", 0, 12, 1, 12, 0, 25, 3},
		{"oversized pageSize", 1, 500, 1, 48, 0, 100, 3},
		{"zero pageSize", 2, 0, 2, 12, 12, 25, 3},
		{"window arithmetic", 3, 10, 3, 10, 20, 21, 3},
		{"size floor", 1, -7, 1, 12, 0, 5, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeRepo()
			repo.total = tc.total
			svc := app.NewListingService(repo, &fakeCache{}, time.Minute)

			page, err := svc.ListHotels(context.Background(), app.ListingRequest{Page: tc.page, PageSize: tc.size})
			if err != nil {
				t.Fatalf("err: %v", err)
			}
			if page.Page != tc.wantPage || page.PageSize != tc.wantSize || page.TotalPages != tc.wantPages {
				t.Fatalf("envelope: %+v", page)
			}
			if repo.lastQuery.Offset != tc.wantOffset || repo.lastQuery.Limit != tc.wantSize {
				t.Fatalf("plan: %+v", repo.lastQuery)
			}
			if len(page.Items) > page.PageSize {
				t.Fatalf("items exceed pageSize: %d > %d", len(page.Items), page.PageSize)
			}
		})
	}
}

func TestListHotels_SortResolution(t *testing.T) {
	cases := []struct {
		sortBy    string
		wantField string
		wantDesc  bool
	}{
		{"price_asc", "price", false},
		{"price_desc", "price", true},
		{"rating_desc", "rating", true},
		{"alpha_asc", "name", false},
		{"featured", "rating", true},
		{"", "name", false},
		{"banana", "name", false}, // unrecognized keys never error
	}
	for _, tc := range cases {
		t.Run("sortBy="+tc.sortBy, func(t *testing.T) {
			repo := newFakeRepo()
			svc := app.NewListingService(repo, &fakeCache{}, time.Minute)
			if _, err := svc.ListHotels(context.Background(), app.ListingRequest{SortBy: tc.sortBy}); err != nil {
				t.Fatalf("err: %v", err)
			}
			if repo.lastQuery.SortField != tc.wantField || repo.lastQuery.SortDesc != tc.wantDesc {
				t.Fatalf("got (%s, desc=%v), want (%s, desc=%v)",
					repo.lastQuery.SortField, repo.lastQuery.SortDesc, tc.wantField, tc.wantDesc)
			}
		})
	}
}

func TestListHotels_PredicatePassthrough(t *testing.T) {
	repo := newFakeRepo()
	svc := app.NewListingService(repo, &fakeCache{}, time.Minute)

	req := app.ListingRequest{
		Locations: []string{"Goa", "Bali"},
		MinPrice:  ptr(100.0),
		MaxPrice:  ptr(200.0),
	}
	if _, err := svc.ListHotels(context.Background(), req); err != nil {
		t.Fatalf("err: %v", err)
	}
	q := repo.lastQuery
	if len(q.Locations) != 2 || q.Locations[0] != "Goa" || q.Locations[1] != "Bali" {
		t.Fatalf("locations: %+v", q.Locations)
	}
	if q.MinPrice == nil || *q.MinPrice != 100 || q.MaxPrice == nil || *q.MaxPrice != 200 {
		t.Fatalf("price bounds: %+v", q)
	}
}

func TestListHotels_CacheHit(t *testing.T) {
	repo := newFakeRepo()
	repo.summaries = []domain.HotelSummary{summary("h1", "Alfa", "Goa", 80)}
	repo.total = 1
	cache := &fakeCache{}
	svc := app.NewListingService(repo, cache, 10*time.Minute)

	first, err := svc.ListHotels(context.Background(), app.ListingRequest{})
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	// Mutate repo; second call must come from cache.
	repo.summaries[0].Name = "SHOULD NOT SEE THIS"
	second, err := svc.ListHotels(context.Background(), app.ListingRequest{})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if second.Items[0].Name != first.Items[0].Name {
		t.Fatalf("expected cached page, got %+v", second.Items[0])
	}
}

func TestListHotels_CorruptCacheEntryFallsThrough(t *testing.T) {
	repo := newFakeRepo()
	repo.summaries = []domain.HotelSummary{summary("h1", "Alfa", "Goa", 80)}
	repo.total = 1
	cache := &fakeCache{}
	svc := app.NewListingService(repo, cache, 10*time.Minute)

	if _, err := svc.ListHotels(context.Background(), app.ListingRequest{}); err != nil {
		t.Fatalf("err: %v", err)
	}
	cache.corruptAll()

	page, err := svc.ListHotels(context.Background(), app.ListingRequest{})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if page.Page != 1 || page.PageSize != 12 || page.Total != 1 || len(page.Items) != 1 {
		t.Fatalf("corrupt cache entry served as a result: %+v", page)
	}
}

func TestListHotels_StoreFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.listErr = errors.New("connection refused")
	svc := app.NewListingService(repo, &fakeCache{}, time.Minute)

	_, err := svc.ListHotels(context.Background(), app.ListingRequest{})
	var de *domain.DependencyError
	if !errors.As(err, &de) || de.System != "store" {
		t.Fatalf("expected store dependency error, got %v", err)
	}
}

func TestListAllHotels(t *testing.T) {
	repo := newFakeRepo()
	repo.summaries = []domain.HotelSummary{
		summary("h1", "Alfa", "Goa", 80),
		summary("h2", "Bravo", "Bali", 120),
	}
	svc := app.NewListingService(repo, &fakeCache{}, time.Minute)

	items, err := svc.ListAllHotels(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items: %+v", items)
	}
	if repo.lastQuery.Limit != 0 {
		t.Fatalf("expected unbounded plan, got limit %d", repo.lastQuery.Limit)
	}
}

func TestListLocationNames_Cached(t *testing.T) {
	repo := newFakeRepo()
	repo.summaries = []domain.HotelSummary{
		summary("h1", "Alfa", "Goa", 80),
		summary("h2", "Bravo", "Goa", 90),
		summary("h3", "Charlie", "Bali", 70),
	}
	cache := &fakeCache{}
	svc := app.NewListingService(repo, cache, 10*time.Minute)

	names, err := svc.ListLocationNames(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("names: %+v", names)
	}
	if _, ok := cache.store["locations"]; !ok {
		t.Fatalf("expected locations cached")
	}
}
