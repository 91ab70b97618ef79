package app

import (
	"context"
	"strings"

	"staylist/internal/domain"
)

// SearchService ranks hotels by semantic similarity to a free-text query.
// It applies no facet filtering; results are purely similarity-ordered.
type SearchService struct {
	embedder domain.Embedder
	index    domain.VectorIndex
	repo     domain.HotelRepository
	limit    int // result cap
	ratio    int // candidate pool = ratio * limit
}

func NewSearchService(e domain.Embedder, ix domain.VectorIndex, r domain.HotelRepository, limit, ratio int) *SearchService {
	if limit <= 0 {
		limit = 4
	}
	if ratio <= 0 {
		ratio = 6
	}
	return &SearchService{embedder: e, index: ix, repo: r, limit: limit, ratio: ratio}
}

func (s *SearchService) SemanticSearch(ctx context.Context, query string) ([]domain.ScoredHotel, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.Validationf("query must not be empty")
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, domain.Dependency("embeddings", err)
	}

	// Oversized candidate pool compensates for approximate-index recall
	// loss; the index truncates to the final cap.
	matches, err := s.index.Search(ctx, vec, s.limit, s.limit*s.ratio)
	if err != nil {
		return nil, domain.Dependency("vector-index", err)
	}
	if len(matches) == 0 {
		return []domain.ScoredHotel{}, nil
	}

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}
	summaries, err := s.repo.GetSummaries(ctx, ids)
	if err != nil {
		return nil, domain.Dependency("store", err)
	}
	byID := make(map[string]domain.HotelSummary, len(summaries))
	for _, h := range summaries {
		byID[h.ID] = h
	}

	// Preserve index order: descending score, ties in pool iteration order.
	out := make([]domain.ScoredHotel, 0, len(matches))
	for _, m := range matches {
		h, ok := byID[m.ID]
		if !ok {
			// Point with no backing row (deleted mid-flight); skip.
			continue
		}
		out = append(out, domain.ScoredHotel{HotelSummary: h, Score: m.Score})
	}
	return out, nil
}
