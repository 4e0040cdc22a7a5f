package entity

// TimeSlot is a recurring time-of-day interval owned by a doctor or a
// service. Slots are never deleted once referenced by a booking; retirement
// is IsActive=false so historical bookings can still resolve their times.
type TimeSlot struct {
	ID        int64     `json:"id" db:"id"`
	OwnerID   int64     `json:"owner_id" db:"owner_id"`
	StartTime ClockTime `json:"start_time" db:"start_time"`
	EndTime   ClockTime `json:"end_time" db:"end_time"`
	IsActive  bool      `json:"is_active" db:"is_active"`
}

// SlotAvailability pairs a slot definition with its booking state for one
// subject/branch/date.
type SlotAvailability struct {
	Slot        TimeSlot `json:"slot"`
	Available   bool     `json:"available"`
	BookedCount int      `json:"booked_count"`
}
