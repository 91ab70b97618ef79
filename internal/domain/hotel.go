package domain

type Hotel struct {
	ID            string
	Name          string
	Location      string
	Image         string
	Description   string
	Price         float64 // nightly rate
	Rating        *float64
	StripePriceID *string // absent until first reconciliation
	ReviewIDs     []int64
}

// HotelDraft carries the client-supplied fields of a new or fully
// updated hotel.
type HotelDraft struct {
	Name        string  `json:"name"`
	Location    string  `json:"location"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// HotelSummary is the client-facing projection. The embedding vector is
// internal and never part of it.
type HotelSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Location    string   `json:"location"`
	Image       string   `json:"image"`
	Price       float64  `json:"price"`
	Rating      *float64 `json:"rating,omitempty"`
	ReviewIDs   []int64  `json:"reviews"`
	ReviewCount int      `json:"reviewCount"`
}

type ScoredHotel struct {
	HotelSummary
	Score float32 `json:"score"`
}

type HotelsPage struct {
	Items      []HotelSummary `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

// HotelsQuery is the normalized fetch plan the listing planner hands to
// the repository: predicate + ordering + window.
type HotelsQuery struct {
	Locations []string // membership filter; empty = unconstrained
	MinPrice  *float64 // inclusive
	MaxPrice  *float64 // inclusive
	SortField string   // name | price | rating
	SortDesc  bool
	Offset    int
	Limit     int // <=0 disables the window (full scan)
}
