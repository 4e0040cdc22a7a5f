package entity

import "time"

// Redemption is one append-only loyalty ledger entry. Rows are never
// updated or deleted; consumed points are derived from the row count.
type Redemption struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	BookingID int64     `json:"booking_id" db:"booking_id"`
	ServiceID int64     `json:"service_id" db:"service_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// LoyaltyUserSummary is the admin view of one user's loyalty standing.
type LoyaltyUserSummary struct {
	UserID          int64  `json:"user_id"`
	Name            string `json:"name"`
	VisitCount      int64  `json:"visit_count"`
	StampsCollected int64  `json:"stamps_collected"`
}
