package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careplus/clinic-backend/internal/entity"
)

func availabilityFor(slots []*entity.SlotAvailability, slotID int64) *entity.SlotAvailability {
	for _, s := range slots {
		if s.Slot.ID == slotID {
			return s
		}
	}
	return nil
}

func TestDoctorAvailability(t *testing.T) {
	ctx := context.Background()

	t.Run("booked slot becomes unavailable", func(t *testing.T) {
		f := newBookingFixture()
		avail := NewAvailabilityService(
			f.doctorBookings, f.serviceBookings, f.doctorRepo, f.serviceRepo, &fakeBranchRepo{})
		date := futureDate(3)

		slots, err := avail.DoctorAvailability(ctx, 1, 1, date)
		require.NoError(t, err)
		require.Len(t, slots, 2)
		assert.True(t, availabilityFor(slots, 10).Available)

		_, err = f.svc.BookDoctor(ctx, 7, &BookDoctorRequest{
			DoctorID: 1, BranchID: 1, TimeSlotID: 10, Date: date,
		})
		require.NoError(t, err)

		slots, err = avail.DoctorAvailability(ctx, 1, 1, date)
		require.NoError(t, err)
		assert.False(t, availabilityFor(slots, 10).Available)
		assert.Equal(t, 1, availabilityFor(slots, 10).BookedCount)
		assert.True(t, availabilityFor(slots, 11).Available)
	})

	t.Run("empty on a day the doctor does not serve", func(t *testing.T) {
		f := newBookingFixture()
		f.doctorRepo.assignments[assignmentKey(1, 1)].DayBitmap = 0
		avail := NewAvailabilityService(
			f.doctorBookings, f.serviceBookings, f.doctorRepo, f.serviceRepo, &fakeBranchRepo{})

		slots, err := avail.DoctorAvailability(ctx, 1, 1, futureDate(3))
		require.NoError(t, err)
		assert.Empty(t, slots)
	})

	t.Run("unassigned branch is an error", func(t *testing.T) {
		f := newBookingFixture()
		avail := NewAvailabilityService(
			f.doctorBookings, f.serviceBookings, f.doctorRepo, f.serviceRepo, &fakeBranchRepo{})

		_, err := avail.DoctorAvailability(ctx, 1, 2, futureDate(3))
		assert.ErrorIs(t, err, entity.ErrDoctorNotAssigned)
	})
}

func TestServiceAvailability(t *testing.T) {
	ctx := context.Background()

	t.Run("slot stays available until capacity is reached", func(t *testing.T) {
		f := newBookingFixture()
		avail := NewAvailabilityService(
			f.doctorBookings, f.serviceBookings, f.doctorRepo, f.serviceRepo, &fakeBranchRepo{})
		date := futureDate(3)
		req := &BookServiceRequest{ServiceID: 1, BranchID: 1, TimeSlotID: 30, Date: date}

		_, err := f.svc.BookService(ctx, 7, req)
		require.NoError(t, err)

		slots, err := avail.ServiceAvailability(ctx, 1, 1, date)
		require.NoError(t, err)
		assert.True(t, availabilityFor(slots, 30).Available)
		assert.Equal(t, 1, availabilityFor(slots, 30).BookedCount)

		_, err = f.svc.BookService(ctx, 8, req)
		require.NoError(t, err)

		slots, err = avail.ServiceAvailability(ctx, 1, 1, date)
		require.NoError(t, err)
		assert.False(t, availabilityFor(slots, 30).Available)
		assert.Equal(t, 2, availabilityFor(slots, 30).BookedCount)
	})
}

func TestBranches(t *testing.T) {
	f := newBookingFixture()
	branchRepo := &fakeBranchRepo{branches: []*entity.Branch{
		{ID: 1, NameEn: "Olaya", City: "Riyadh"},
		{ID: 2, NameEn: "Corniche", City: "Jeddah"},
	}}
	avail := NewAvailabilityService(
		f.doctorBookings, f.serviceBookings, f.doctorRepo, f.serviceRepo, branchRepo)

	branches, err := avail.Branches(context.Background())
	require.NoError(t, err)
	assert.Len(t, branches, 2)
}
