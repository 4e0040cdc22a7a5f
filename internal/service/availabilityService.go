package service

import (
	"context"

	repository "github.com/careplus/clinic-backend/internal/database/postgres"
	"github.com/careplus/clinic-backend/internal/entity"
)

type availabilityService struct {
	doctorBookings  repository.BookingRepository
	serviceBookings repository.BookingRepository
	doctorRepo      repository.DoctorRepository
	serviceRepo     repository.ServiceRepository
	branchRepo      repository.BranchRepository
}

func NewAvailabilityService(
	doctorBookings repository.BookingRepository,
	serviceBookings repository.BookingRepository,
	doctorRepo repository.DoctorRepository,
	serviceRepo repository.ServiceRepository,
	branchRepo repository.BranchRepository,
) AvailabilityService {
	return &availabilityService{
		doctorBookings:  doctorBookings,
		serviceBookings: serviceBookings,
		doctorRepo:      doctorRepo,
		serviceRepo:     serviceRepo,
		branchRepo:      branchRepo,
	}
}

func (s *availabilityService) Branches(ctx context.Context) ([]*entity.Branch, error) {
	return s.branchRepo.GetAll(ctx)
}

// DoctorAvailability lists the doctor's slots for one branch and date. A
// slot is available while no SCHEDULED booking holds it. On a weekday the
// doctor does not serve at that branch the list is empty.
func (s *availabilityService) DoctorAvailability(ctx context.Context, doctorID, branchID int64, date string) ([]*entity.SlotAvailability, error) {
	day, err := validateBookingDate(date)
	if err != nil {
		return nil, err
	}

	if _, err := s.doctorRepo.GetByID(ctx, doctorID); err != nil {
		return nil, err
	}

	assignment, err := s.doctorRepo.GetBranchAssignment(ctx, doctorID, branchID)
	if err != nil {
		return nil, err
	}
	if !assignment.ServesOn(day.Weekday()) {
		return []*entity.SlotAvailability{}, nil
	}

	slots, err := s.doctorRepo.ListTimeSlots(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	counts, err := s.doctorBookings.ScheduledCounts(ctx, doctorID, branchID, date)
	if err != nil {
		return nil, err
	}

	availability := make([]*entity.SlotAvailability, 0, len(slots))
	for _, slot := range slots {
		booked := counts[slot.ID]
		availability = append(availability, &entity.SlotAvailability{
			Slot:        *slot,
			Available:   booked == 0,
			BookedCount: booked,
		})
	}
	return availability, nil
}

// ServiceAvailability lists the service's slots for one branch and date. A
// slot stays available until its SCHEDULED count reaches the branch's
// maximum_booking_per_slot.
func (s *availabilityService) ServiceAvailability(ctx context.Context, serviceID, branchID int64, date string) ([]*entity.SlotAvailability, error) {
	if _, err := validateBookingDate(date); err != nil {
		return nil, err
	}

	if _, err := s.serviceRepo.GetByID(ctx, serviceID); err != nil {
		return nil, err
	}

	link, err := s.serviceRepo.GetBranchLink(ctx, serviceID, branchID)
	if err != nil {
		return nil, err
	}

	slots, err := s.serviceRepo.ListTimeSlots(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	counts, err := s.serviceBookings.ScheduledCounts(ctx, serviceID, branchID, date)
	if err != nil {
		return nil, err
	}

	availability := make([]*entity.SlotAvailability, 0, len(slots))
	for _, slot := range slots {
		booked := counts[slot.ID]
		availability = append(availability, &entity.SlotAvailability{
			Slot:        *slot,
			Available:   booked < link.MaximumBookingPerSlot,
			BookedCount: booked,
		})
	}
	return availability, nil
}
