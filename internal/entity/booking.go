package entity

import (
	"time"
)

type BookingStatus string

const (
	BookingStatusScheduled       BookingStatus = "SCHEDULED"
	BookingStatusRescheduled     BookingStatus = "RESCHEDULED"
	BookingStatusCanceled        BookingStatus = "CANCELED"
	BookingStatusCompleted       BookingStatus = "COMPLETED"
	BookingStatusRefundInitiated BookingStatus = "REFUND_INITIATED"
	BookingStatusRefundCompleted BookingStatus = "REFUND_COMPLETED"
)

// IsTerminal reports whether no further transition is permitted out of the
// status. Only SCHEDULED bookings may be cancelled, completed or rescheduled.
func (s BookingStatus) IsTerminal() bool {
	return s != BookingStatusScheduled
}

// BookingKind distinguishes the two booking tables. Doctor bookings are
// exclusive per (doctor, branch, date, slot); service bookings share a slot
// up to the branch's maximum_booking_per_slot.
type BookingKind string

const (
	BookingKindDoctor  BookingKind = "doctor"
	BookingKindService BookingKind = "service"
)

// Booking is one reservation row of either kind. SubjectID holds the
// doctor_id or service_id depending on Kind. VATPercentage is captured at
// booking time and never re-derived, including across reschedules.
type Booking struct {
	ID            int64         `json:"id" db:"id"`
	Kind          BookingKind   `json:"kind" db:"-"`
	SubjectID     int64         `json:"subject_id" db:"subject_id"`
	TimeSlotID    int64         `json:"time_slot_id" db:"time_slot_id"`
	BranchID      int64         `json:"branch_id" db:"branch_id"`
	UserID        int64         `json:"user_id" db:"user_id"`
	Date          string        `json:"date" db:"date"`
	VATPercentage float64       `json:"vat_percentage" db:"vat_percentage"`
	Status        BookingStatus `json:"status" db:"status"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// BookingMetrics is the admin aggregate view over one booking kind.
type BookingMetrics struct {
	TotalBookings    int64                   `json:"total_bookings"`
	BookingsByStatus map[BookingStatus]int64 `json:"bookings_by_status"`
	CompletedSpend   float64                 `json:"completed_spend"`
	DailyBookings    int64                   `json:"daily_bookings"`
	WeeklyBookings   int64                   `json:"weekly_bookings"`
	MonthlyBookings  int64                   `json:"monthly_bookings"`
}
