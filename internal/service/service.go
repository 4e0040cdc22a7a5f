package service

import (
	"context"

	"github.com/careplus/clinic-backend/internal/entity"
	"github.com/careplus/clinic-backend/pkg/queue"
)

// TaskPublisher is the queue surface the services need. *queue.RedisQueue
// satisfies it; tests substitute a recorder.
type TaskPublisher interface {
	Publish(ctx context.Context, task *queue.Task) error
}

// BookDoctorRequest books an exclusive consultation slot.
type BookDoctorRequest struct {
	DoctorID   int64  `json:"doctor_id" binding:"required"`
	BranchID   int64  `json:"branch_id" binding:"required"`
	TimeSlotID int64  `json:"time_slot_id" binding:"required"`
	Date       string `json:"date" binding:"required"`
}

// BookServiceRequest books one seat in a capacity-limited service slot.
type BookServiceRequest struct {
	ServiceID  int64  `json:"service_id" binding:"required"`
	BranchID   int64  `json:"branch_id" binding:"required"`
	TimeSlotID int64  `json:"time_slot_id" binding:"required"`
	Date       string `json:"date" binding:"required"`
}

// RescheduleRequest moves a SCHEDULED booking to a new slot and date.
type RescheduleRequest struct {
	TimeSlotID int64  `json:"time_slot_id" binding:"required"`
	Date       string `json:"date" binding:"required"`
}

// RedeemRequest spends qpoints against a completed service booking.
type RedeemRequest struct {
	BookingID int64 `json:"booking_id" binding:"required"`
	ServiceID int64 `json:"service_id" binding:"required"`
}

type BookingService interface {
	BookDoctor(ctx context.Context, userID int64, req *BookDoctorRequest) (*entity.Booking, error)
	BookService(ctx context.Context, userID int64, req *BookServiceRequest) (*entity.Booking, error)

	// Cancel and Reschedule act on behalf of an owner; userID 0 means an
	// admin acting without an ownership restriction.
	Cancel(ctx context.Context, kind entity.BookingKind, bookingID, userID int64) error
	Complete(ctx context.Context, kind entity.BookingKind, bookingID int64) error
	Reschedule(ctx context.Context, kind entity.BookingKind, bookingID, userID int64, req *RescheduleRequest) (*entity.Booking, error)

	UserBookings(ctx context.Context, kind entity.BookingKind, userID int64) ([]*entity.Booking, error)
	Metrics(ctx context.Context, kind entity.BookingKind) (*entity.BookingMetrics, error)
}

type AvailabilityService interface {
	Branches(ctx context.Context) ([]*entity.Branch, error)
	DoctorAvailability(ctx context.Context, doctorID, branchID int64, date string) ([]*entity.SlotAvailability, error)
	ServiceAvailability(ctx context.Context, serviceID, branchID int64, date string) ([]*entity.SlotAvailability, error)
}

type RedeemService interface {
	QPoints(ctx context.Context, userID int64) (int64, error)
	Redeem(ctx context.Context, userID int64, req *RedeemRequest) (*entity.Redemption, error)
	History(ctx context.Context, userID int64) ([]*entity.Redemption, error)
	Users(ctx context.Context) ([]*entity.LoyaltyUserSummary, error)
}

type UserService interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetAll(ctx context.Context) ([]*entity.User, error)
}
