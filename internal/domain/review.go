package domain

import "time"

type Review struct {
	ID        int64     `json:"id"`
	HotelID   string    `json:"hotelId"`
	Rating    float64   `json:"rating"` // 1..5
	Comment   string    `json:"comment"`
	UserID    string    `json:"userId"`
	FullName  *string   `json:"fullName,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Identity is what the identity collaborator vouches for. The core treats
// it as opaque input.
type Identity struct {
	UserID   string
	FullName string
	Admin    bool
}
