package entity

import "time"

type Doctor struct {
	ID          int64   `json:"id" db:"id"`
	NameEn      string  `json:"name_en" db:"name_en"`
	NameAr      string  `json:"name_ar" db:"name_ar"`
	SessionFees float64 `json:"session_fees" db:"session_fees"`
	PhotoURL    string  `json:"photo_url" db:"photo_url"`
	IsActive    bool    `json:"is_active" db:"is_active"`
}

// DoctorBranch assigns a doctor to a branch for a set of weekdays.
// DayBitmap is a 7-bit mask, bit 0 = Sunday.
type DoctorBranch struct {
	ID        int64 `json:"id" db:"id"`
	DoctorID  int64 `json:"doctor_id" db:"doctor_id"`
	BranchID  int64 `json:"branch_id" db:"branch_id"`
	DayBitmap int   `json:"day_bitmap" db:"day_bitmap"`
	IsActive  bool  `json:"is_active" db:"is_active"`
}

// ServesOn reports whether the assignment covers the given weekday.
func (db *DoctorBranch) ServesOn(day time.Weekday) bool {
	return db.DayBitmap&(1<<int(day)) != 0
}
