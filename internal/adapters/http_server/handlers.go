package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"staylist/internal/app"
	"staylist/internal/domain"
)

type Handlers struct {
	Listing  *app.ListingService
	Search   *app.SearchService
	Hotels   *app.HotelService
	Reviews  *app.ReviewService
	Verifier domain.IdentityVerifier
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	auth := RequireAuth(h.Verifier)

	s.mux.Route("/api/hotels", func(r chi.Router) {
		r.Get("/", h.listHotels)
		r.With(auth, RequireAdmin).Post("/", h.createHotel)
		r.Get("/all", h.listAllHotels)
		r.Get("/search", h.searchHotels)
		r.With(auth).Get("/{id}", h.getHotel)
		r.Put("/{id}", h.updateHotel)
		r.Patch("/{id}", h.patchHotel)
		r.Delete("/{id}", h.deleteHotel)
		r.With(auth, RequireAdmin).Post("/{id}/price-sync", h.syncHotelPrice)
		r.Get("/{id}/reviews", h.listHotelReviews)
	})
	s.mux.With(auth).Post("/api/reviews", h.createReview)
	s.mux.Get("/api/locations", h.listLocations)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps the error taxonomy onto status codes exactly once:
// client faults (validation, not-found) versus upstream dependency faults.
func writeError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	var de *domain.DependencyError
	switch {
	case errors.As(err, &ve):
		writeProblem(w, http.StatusBadRequest, "Bad Request", ve.Reason)
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "hotel not found")
	case errors.As(err, &de):
		log.Error().Str("system", de.System).Err(de.Err).Msg("dependency failure")
		writeProblem(w, http.StatusBadGateway, "Bad Gateway", de.System+" unavailable")
	default:
		log.Error().Err(err).Msg("unhandled error")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON body failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeCacheable(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

// parseListingRequest is deliberately lenient: malformed presentation
// controls (page, pageSize, sort, price bounds) normalize to their defaults
// instead of erroring.
func parseListingRequest(r *http.Request) app.ListingRequest {
	q := r.URL.Query()
	var req app.ListingRequest

	if raw := q.Get("locations"); raw != "" {
		for _, part := range strings.Split(raw, "|") {
			if s := strings.TrimSpace(part); s != "" {
				req.Locations = append(req.Locations, s)
			}
		}
	}
	if v, err := strconv.ParseFloat(q.Get("minPrice"), 64); err == nil {
		req.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(q.Get("maxPrice"), 64); err == nil {
		req.MaxPrice = &v
	}
	req.SortBy = q.Get("sortBy")
	if n, err := strconv.Atoi(q.Get("page")); err == nil {
		req.Page = n
	}
	if n, err := strconv.Atoi(q.Get("pageSize")); err == nil {
		req.PageSize = n
	}
	return req
}

// ---- discovery ----

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	page, err := h.Listing.ListHotels(r.Context(), parseListingRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeCacheable(w, r, page)
}

func (h *Handlers) listAllHotels(w http.ResponseWriter, r *http.Request) {
	items, err := h.Listing.ListAllHotels(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeCacheable(w, r, items)
}

func (h *Handlers) searchHotels(w http.ResponseWriter, r *http.Request) {
	results, err := h.Search.SemanticSearch(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handlers) listLocations(w http.ResponseWriter, r *http.Request) {
	names, err := h.Listing.ListLocationNames(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeCacheable(w, r, names)
}

// ---- hotel lifecycle ----

type hotelResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Location      string   `json:"location"`
	Image         string   `json:"image"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	Rating        *float64 `json:"rating,omitempty"`
	StripePriceID *string  `json:"stripePriceId,omitempty"`
	ReviewIDs     []int64  `json:"reviews"`
}

func toHotelResponse(h domain.Hotel) hotelResponse {
	ids := h.ReviewIDs
	if ids == nil {
		ids = []int64{}
	}
	return hotelResponse{
		ID: h.ID, Name: h.Name, Location: h.Location, Image: h.Image,
		Description: h.Description, Price: h.Price, Rating: h.Rating,
		StripePriceID: h.StripePriceID, ReviewIDs: ids,
	}
}

func (h *Handlers) createHotel(w http.ResponseWriter, r *http.Request) {
	var draft domain.HotelDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	created, err := h.Hotels.CreateHotel(r.Context(), draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toHotelResponse(created))
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	hotel, err := h.Hotels.GetHotel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeCacheable(w, r, toHotelResponse(hotel))
}

func (h *Handlers) updateHotel(w http.ResponseWriter, r *http.Request) {
	var draft domain.HotelDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	updated, err := h.Hotels.UpdateHotel(r.Context(), chi.URLParam(r, "id"), draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHotelResponse(updated))
}

func (h *Handlers) patchHotel(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Price float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.Hotels.PatchHotelPrice(r.Context(), chi.URLParam(r, "id"), body.Price); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) deleteHotel(w http.ResponseWriter, r *http.Request) {
	if err := h.Hotels.DeleteHotel(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) syncHotelPrice(w http.ResponseWriter, r *http.Request) {
	updated, err := h.Hotels.ReconcilePrice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHotelResponse(updated))
}

// ---- reviews ----

func (h *Handlers) createReview(w http.ResponseWriter, r *http.Request) {
	who, ok := IdentityFrom(r.Context())
	if !ok {
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	var req app.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	created, err := h.Reviews.CreateReview(r.Context(), who, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handlers) listHotelReviews(w http.ResponseWriter, r *http.Request) {
	rs, err := h.Reviews.ListHotelReviews(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeCacheable(w, r, rs)
}
