package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	repository "github.com/careplus/clinic-backend/internal/database/postgres"
	"github.com/careplus/clinic-backend/internal/entity"
	"github.com/careplus/clinic-backend/pkg/queue"
)

type bookingService struct {
	doctorBookings  repository.BookingRepository
	serviceBookings repository.BookingRepository
	doctorRepo      repository.DoctorRepository
	serviceRepo     repository.ServiceRepository
	settingRepo     repository.SettingRepository
	queue           TaskPublisher
}

func NewBookingService(
	doctorBookings repository.BookingRepository,
	serviceBookings repository.BookingRepository,
	doctorRepo repository.DoctorRepository,
	serviceRepo repository.ServiceRepository,
	settingRepo repository.SettingRepository,
	taskQueue TaskPublisher,
) BookingService {
	return &bookingService{
		doctorBookings:  doctorBookings,
		serviceBookings: serviceBookings,
		doctorRepo:      doctorRepo,
		serviceRepo:     serviceRepo,
		settingRepo:     settingRepo,
		queue:           taskQueue,
	}
}

func (s *bookingService) repoFor(kind entity.BookingKind) (repository.BookingRepository, error) {
	switch kind {
	case entity.BookingKindDoctor:
		return s.doctorBookings, nil
	case entity.BookingKindService:
		return s.serviceBookings, nil
	default:
		return nil, entity.ErrInternalServer
	}
}

// validateBookingDate parses the ISO date and rejects dates in the past.
// Today is allowed.
func validateBookingDate(date string) (time.Time, error) {
	parsed, err := entity.ParseBookingDate(date)
	if err != nil {
		return time.Time{}, entity.ErrInvalidBookingDate
	}
	if date < time.Now().Format("2006-01-02") {
		return time.Time{}, entity.ErrInvalidBookingDate
	}
	return parsed, nil
}

// BookDoctor books an exclusive consultation slot. The partial unique index
// behind the repository decides the winner when two clients race for the
// same slot.
func (s *bookingService) BookDoctor(ctx context.Context, userID int64, req *BookDoctorRequest) (*entity.Booking, error) {
	day, err := validateBookingDate(req.Date)
	if err != nil {
		return nil, err
	}

	if _, err := s.doctorRepo.GetByID(ctx, req.DoctorID); err != nil {
		return nil, err
	}

	assignment, err := s.doctorRepo.GetBranchAssignment(ctx, req.DoctorID, req.BranchID)
	if err != nil {
		return nil, err
	}
	if !assignment.ServesOn(day.Weekday()) {
		return nil, entity.ErrDoctorNotAssigned
	}

	slot, err := s.doctorRepo.GetTimeSlot(ctx, req.TimeSlotID)
	if err != nil {
		return nil, err
	}
	if slot.OwnerID != req.DoctorID {
		return nil, entity.ErrTimeSlotNotFound
	}

	vat, err := s.settingRepo.GetVATPercentage(ctx)
	if err != nil {
		return nil, err
	}

	booking := &entity.Booking{
		Kind:          entity.BookingKindDoctor,
		SubjectID:     req.DoctorID,
		TimeSlotID:    req.TimeSlotID,
		BranchID:      req.BranchID,
		UserID:        userID,
		Date:          req.Date,
		VATPercentage: vat,
	}
	if err := s.doctorBookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	logrus.Infof("Doctor booking created: id=%d doctor=%d branch=%d date=%s slot=%d user=%d",
		booking.ID, booking.SubjectID, booking.BranchID, booking.Date, booking.TimeSlotID, booking.UserID)

	s.publishBookingTask(ctx, queue.TaskTypeBookingConfirmation, booking)
	return booking, nil
}

// BookService books one seat in a shared service slot. Capacity is enforced
// inside the repository transaction under the service_branch row lock.
func (s *bookingService) BookService(ctx context.Context, userID int64, req *BookServiceRequest) (*entity.Booking, error) {
	if _, err := validateBookingDate(req.Date); err != nil {
		return nil, err
	}

	if _, err := s.serviceRepo.GetByID(ctx, req.ServiceID); err != nil {
		return nil, err
	}
	if _, err := s.serviceRepo.GetBranchLink(ctx, req.ServiceID, req.BranchID); err != nil {
		return nil, err
	}

	slot, err := s.serviceRepo.GetTimeSlot(ctx, req.TimeSlotID)
	if err != nil {
		return nil, err
	}
	if slot.OwnerID != req.ServiceID {
		return nil, entity.ErrTimeSlotNotFound
	}

	vat, err := s.settingRepo.GetVATPercentage(ctx)
	if err != nil {
		return nil, err
	}

	booking := &entity.Booking{
		Kind:          entity.BookingKindService,
		SubjectID:     req.ServiceID,
		TimeSlotID:    req.TimeSlotID,
		BranchID:      req.BranchID,
		UserID:        userID,
		Date:          req.Date,
		VATPercentage: vat,
	}
	if err := s.serviceBookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	logrus.Infof("Service booking created: id=%d service=%d branch=%d date=%s slot=%d user=%d",
		booking.ID, booking.SubjectID, booking.BranchID, booking.Date, booking.TimeSlotID, booking.UserID)

	s.publishBookingTask(ctx, queue.TaskTypeBookingConfirmation, booking)
	return booking, nil
}

func (s *bookingService) Cancel(ctx context.Context, kind entity.BookingKind, bookingID, userID int64) error {
	repo, err := s.repoFor(kind)
	if err != nil {
		return err
	}

	if err := repo.UpdateStatus(ctx, bookingID, userID, entity.BookingStatusCanceled); err != nil {
		return err
	}

	logrus.Infof("Booking canceled: kind=%s id=%d", kind, bookingID)

	if booking, err := repo.GetByID(ctx, bookingID); err == nil {
		s.publishBookingTask(ctx, queue.TaskTypeBookingCancelled, booking)
	}
	return nil
}

func (s *bookingService) Complete(ctx context.Context, kind entity.BookingKind, bookingID int64) error {
	repo, err := s.repoFor(kind)
	if err != nil {
		return err
	}

	if err := repo.UpdateStatus(ctx, bookingID, 0, entity.BookingStatusCompleted); err != nil {
		return err
	}

	logrus.Infof("Booking completed: kind=%s id=%d", kind, bookingID)

	if booking, err := repo.GetByID(ctx, bookingID); err == nil {
		s.publishBookingTask(ctx, queue.TaskTypeBookingCompleted, booking)
	}
	return nil
}

// Reschedule validates the new slot the same way a fresh booking would and
// then moves the row pair atomically through the repository.
func (s *bookingService) Reschedule(ctx context.Context, kind entity.BookingKind, bookingID, userID int64, req *RescheduleRequest) (*entity.Booking, error) {
	repo, err := s.repoFor(kind)
	if err != nil {
		return nil, err
	}

	day, err := validateBookingDate(req.Date)
	if err != nil {
		return nil, err
	}

	old, err := repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if userID > 0 && old.UserID != userID {
		return nil, entity.ErrBookingNotFound
	}

	switch kind {
	case entity.BookingKindDoctor:
		assignment, err := s.doctorRepo.GetBranchAssignment(ctx, old.SubjectID, old.BranchID)
		if err != nil {
			return nil, err
		}
		if !assignment.ServesOn(day.Weekday()) {
			return nil, entity.ErrDoctorNotAssigned
		}
		slot, err := s.doctorRepo.GetTimeSlot(ctx, req.TimeSlotID)
		if err != nil {
			return nil, err
		}
		if slot.OwnerID != old.SubjectID {
			return nil, entity.ErrTimeSlotNotFound
		}
	case entity.BookingKindService:
		slot, err := s.serviceRepo.GetTimeSlot(ctx, req.TimeSlotID)
		if err != nil {
			return nil, err
		}
		if slot.OwnerID != old.SubjectID {
			return nil, entity.ErrTimeSlotNotFound
		}
	}

	next, err := repo.Reschedule(ctx, bookingID, userID, req.TimeSlotID, req.Date)
	if err != nil {
		return nil, err
	}

	logrus.Infof("Booking rescheduled: kind=%s old=%d new=%d date=%s slot=%d",
		kind, bookingID, next.ID, next.Date, next.TimeSlotID)

	s.publishBookingTask(ctx, queue.TaskTypeBookingRescheduled, next)
	return next, nil
}

func (s *bookingService) UserBookings(ctx context.Context, kind entity.BookingKind, userID int64) ([]*entity.Booking, error) {
	repo, err := s.repoFor(kind)
	if err != nil {
		return nil, err
	}
	return repo.ListByUser(ctx, userID)
}

func (s *bookingService) Metrics(ctx context.Context, kind entity.BookingKind) (*entity.BookingMetrics, error) {
	repo, err := s.repoFor(kind)
	if err != nil {
		return nil, err
	}
	return repo.Metrics(ctx)
}

// publishBookingTask hands the lifecycle event to the notification queue.
// Delivery failures are logged and swallowed: the booking itself already
// committed and must not be rolled back over a notification.
func (s *bookingService) publishBookingTask(ctx context.Context, taskType queue.TaskType, booking *entity.Booking) {
	if s.queue == nil {
		return
	}

	task := &queue.Task{
		ID:   uuid.NewString(),
		Type: taskType,
		Data: map[string]interface{}{
			"booking_id":   booking.ID,
			"kind":         string(booking.Kind),
			"user_id":      booking.UserID,
			"branch_id":    booking.BranchID,
			"date":         booking.Date,
			"time_slot_id": booking.TimeSlotID,
		},
		MaxRetries: 3,
	}

	if err := s.queue.Publish(ctx, task); err != nil {
		logrus.Warnf("Failed to publish %s task for booking %d: %v", taskType, booking.ID, err)
	}
}
