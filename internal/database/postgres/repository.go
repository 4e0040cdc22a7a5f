package repository

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/careplus/clinic-backend/internal/entity"
)

// dbError records the driver failure and surfaces the typed database error.
// The raw SQL message stays in the logs; clients only ever see the code.
func dbError(op string, err error) error {
	logrus.WithError(err).Errorf("repository: %s", op)
	return fmt.Errorf("%s: %w", op, entity.ErrDatabaseError)
}

// BookingRepository covers one booking table. Both kinds share the same
// lifecycle; they differ only in how Create resolves contention (exclusive
// slot vs. capacity-limited slot).
type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	GetByID(ctx context.Context, id int64) (*entity.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]*entity.Booking, error)

	// UpdateStatus moves a SCHEDULED booking into a terminal status.
	// userID > 0 restricts the update to that owner; a foreign booking
	// reads as not found.
	UpdateStatus(ctx context.Context, id, userID int64, to entity.BookingStatus) error

	// Reschedule closes the old row and opens a new SCHEDULED one carrying
	// the original vat_percentage.
	Reschedule(ctx context.Context, id, userID, newSlotID int64, newDate string) (*entity.Booking, error)

	// ScheduledCounts returns SCHEDULED bookings per time slot for one
	// subject/branch/date.
	ScheduledCounts(ctx context.Context, subjectID, branchID int64, date string) (map[int64]int, error)

	ListScheduledByDate(ctx context.Context, date string, limit int) ([]*entity.Booking, error)
	Metrics(ctx context.Context) (*entity.BookingMetrics, error)
}

type DoctorRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Doctor, error)
	GetBranchAssignment(ctx context.Context, doctorID, branchID int64) (*entity.DoctorBranch, error)
	ListTimeSlots(ctx context.Context, doctorID int64) ([]*entity.TimeSlot, error)
	GetTimeSlot(ctx context.Context, slotID int64) (*entity.TimeSlot, error)
}

type ServiceRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Service, error)
	GetBranchLink(ctx context.Context, serviceID, branchID int64) (*entity.ServiceBranch, error)
	ListTimeSlots(ctx context.Context, serviceID int64) ([]*entity.TimeSlot, error)
	GetTimeSlot(ctx context.Context, slotID int64) (*entity.TimeSlot, error)
}

type BranchRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Branch, error)
	GetAll(ctx context.Context) ([]*entity.Branch, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetAll(ctx context.Context) ([]*entity.User, error)
}

// RedeemRepository owns the append-only redemption ledger. Loyalty tariffs
// are passed in by the caller so the tariff lives in configuration, not SQL.
type RedeemRepository interface {
	QPoints(ctx context.Context, userID int64, spendPerPoint float64, pointsPerRedemption int64) (int64, error)
	Redeem(ctx context.Context, userID, bookingID, serviceID int64, spendPerPoint float64, pointsPerRedemption int64) (*entity.Redemption, error)
	ListByUser(ctx context.Context, userID int64) ([]*entity.Redemption, error)
	ListUsers(ctx context.Context, spendPerPoint float64, pointsPerRedemption int64) ([]*entity.LoyaltyUserSummary, error)
}

type SettingRepository interface {
	GetVATPercentage(ctx context.Context) (float64, error)
}
