package mysql

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"staylist/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

// parseIDList splits a GROUP_CONCAT id column ("3,7,12") into int64s.
// Insertion order of reviews is id order, which keeps the reference list
// chronological.
func parseIDList(s sql.NullString) []int64 {
	if !s.Valid || s.String == "" {
		return nil
	}
	parts := strings.Split(s.String, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		if n, err := strconv.ParseInt(p, 10, 64); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// ---- write paths ----

func (r *Repo) InsertHotel(ctx context.Context, h domain.Hotel) error {
	_, err := r.db.ExecContext(ctx, insertHotelSQL,
		h.ID, h.Name, h.Location, h.Image, h.Description, h.Price,
		valF64(h.Rating), valStr(h.StripePriceID),
	)
	return err
}

// Existence is checked by callers via GetHotel; a matched-nothing write here
// is not distinguishable from a no-op update on this driver, so writes do
// not second-guess it.

func (r *Repo) UpdateHotel(ctx context.Context, id string, d domain.HotelDraft) error {
	_, err := r.db.ExecContext(ctx, updateHotelSQL,
		d.Name, d.Location, d.Image, d.Description, d.Price, id)
	return err
}

func (r *Repo) UpdateHotelPrice(ctx context.Context, id string, price float64) error {
	_, err := r.db.ExecContext(ctx, updateHotelPriceSQL, price, id)
	return err
}

func (r *Repo) SetStripePriceID(ctx context.Context, id, priceID string) error {
	_, err := r.db.ExecContext(ctx, setStripePriceIDSQL, priceID, id)
	return err
}

func (r *Repo) DeleteHotel(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, deleteHotelSQL, id)
	return err
}

func (r *Repo) InsertReview(ctx context.Context, rv domain.Review) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertReviewSQL,
		rv.HotelID, rv.Rating, rv.Comment, rv.UserID, valStr(rv.FullName))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) RefreshHotelRating(ctx context.Context, hotelID string) error {
	_, err := r.db.ExecContext(ctx, refreshRatingSQL, hotelID, hotelID)
	return err
}

// ---- read paths ----

func (r *Repo) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	row := r.db.QueryRowContext(ctx, getHotelSQL, id)

	var h domain.Hotel
	var rating sql.NullFloat64
	var stripeID sql.NullString
	var reviewIDs sql.NullString
	err := row.Scan(&h.ID, &h.Name, &h.Location, &h.Image, &h.Description,
		&h.Price, &rating, &stripeID, &reviewIDs)
	if err == sql.ErrNoRows {
		return domain.Hotel{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Hotel{}, err
	}
	if rating.Valid {
		v := rating.Float64
		h.Rating = &v
	}
	if stripeID.Valid {
		s := stripeID.String
		h.StripePriceID = &s
	}
	h.ReviewIDs = parseIDList(reviewIDs)
	return h, nil
}

// whereClause renders the listing predicate. Location is a set-membership
// match, price bounds are inclusive and independently optional.
func whereClause(q domain.HotelsQuery) (string, []any) {
	var conds []string
	var args []any
	if len(q.Locations) > 0 {
		ph := strings.TrimSuffix(strings.Repeat("?,", len(q.Locations)), ",")
		conds = append(conds, "h.location IN ("+ph+")")
		for _, l := range q.Locations {
			args = append(args, l)
		}
	}
	if q.MinPrice != nil {
		conds = append(conds, "h.price >= ?")
		args = append(args, *q.MinPrice)
	}
	if q.MaxPrice != nil {
		conds = append(conds, "h.price <= ?")
		args = append(args, *q.MaxPrice)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// orderClause whitelists sortable columns; anything else is name-ascending.
func orderClause(q domain.HotelsQuery) string {
	col := "h.name"
	switch q.SortField {
	case "price":
		col = "h.price"
	case "rating":
		col = "h.rating"
	case "name":
		col = "h.name"
	}
	dir := "ASC"
	if q.SortDesc {
		dir = "DESC"
	}
	// Secondary key keeps pages stable across equal primary values.
	return " ORDER BY " + col + " " + dir + ", h.id ASC"
}

func (r *Repo) ListHotels(ctx context.Context, q domain.HotelsQuery) ([]domain.HotelSummary, error) {
	where, args := whereClause(q)
	sqlStr := listHotelsSelect + where + " GROUP BY h.id" + orderClause(q)
	if q.Limit > 0 {
		sqlStr += " LIMIT ? OFFSET ?"
		args = append(args, q.Limit, q.Offset)
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.HotelSummary
	for rows.Next() {
		h, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *Repo) CountHotels(ctx context.Context, q domain.HotelsQuery) (int, error) {
	where, args := whereClause(q)
	var total int
	err := r.db.QueryRowContext(ctx, countHotelsSelect+where, args...).Scan(&total)
	return total, err
}

func (r *Repo) GetSummaries(ctx context.Context, ids []string) ([]domain.HotelSummary, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ph := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	sqlStr := listHotelsSelect + " WHERE h.id IN (" + ph + ") GROUP BY h.id"

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.HotelSummary
	for rows.Next() {
		h, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func scanSummary(rows *sql.Rows) (domain.HotelSummary, error) {
	var h domain.HotelSummary
	var rating sql.NullFloat64
	var reviewIDs sql.NullString
	if err := rows.Scan(&h.ID, &h.Name, &h.Location, &h.Image, &h.Price,
		&rating, &h.ReviewCount, &reviewIDs); err != nil {
		return domain.HotelSummary{}, err
	}
	if rating.Valid {
		v := rating.Float64
		h.Rating = &v
	}
	h.ReviewIDs = parseIDList(reviewIDs)
	if h.ReviewIDs == nil {
		h.ReviewIDs = []int64{}
	}
	return h, nil
}

func (r *Repo) ListLocations(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, listLocationsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return nil, err
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}

func (r *Repo) ListReviews(ctx context.Context, hotelID string) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, listReviewsSQL, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		var rv domain.Review
		var fullName sql.NullString
		if err := rows.Scan(&rv.ID, &rv.HotelID, &rv.Rating, &rv.Comment,
			&rv.UserID, &fullName, &rv.CreatedAt); err != nil {
			return nil, err
		}
		if fullName.Valid {
			s := fullName.String
			rv.FullName = &s
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}
