package entity

type Service struct {
	ID              int64   `json:"id" db:"id"`
	NameEn          string  `json:"name_en" db:"name_en"`
	NameAr          string  `json:"name_ar" db:"name_ar"`
	CategoryID      int64   `json:"category_id" db:"category_id"`
	ActualPrice     float64 `json:"actual_price" db:"actual_price"`
	DiscountedPrice float64 `json:"discounted_price" db:"discounted_price"`
	CanRedeem       bool    `json:"can_redeem" db:"can_redeem"`
	IsActive        bool    `json:"is_active" db:"is_active"`
}

// ServiceBranch links a service to a branch and carries the group capacity
// for every slot of that service at that branch.
type ServiceBranch struct {
	ID                    int64 `json:"id" db:"id"`
	ServiceID             int64 `json:"service_id" db:"service_id"`
	BranchID              int64 `json:"branch_id" db:"branch_id"`
	MaximumBookingPerSlot int   `json:"maximum_booking_per_slot" db:"maximum_booking_per_slot"`
	IsActive              bool  `json:"is_active" db:"is_active"`
}
