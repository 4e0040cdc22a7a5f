package service

import (
	"context"
	"fmt"
	"time"

	"github.com/careplus/clinic-backend/internal/entity"
	"github.com/careplus/clinic-backend/pkg/queue"
)

// taskRecorder captures published tasks instead of touching Redis.
type taskRecorder struct {
	tasks []*queue.Task
}

func (r *taskRecorder) Publish(_ context.Context, task *queue.Task) error {
	r.tasks = append(r.tasks, task)
	return nil
}

func (r *taskRecorder) lastType() queue.TaskType {
	if len(r.tasks) == 0 {
		return ""
	}
	return r.tasks[len(r.tasks)-1].Type
}

// fakeBookingRepo is an in-memory stand-in honoring the repository
// contract: exclusive tables admit one SCHEDULED row per key, capacity
// tables admit maxPerSlot of them, terminal rows refuse transitions.
type fakeBookingRepo struct {
	kind       entity.BookingKind
	exclusive  bool
	maxPerSlot int
	nextID     int64
	bookings   map[int64]*entity.Booking
}

func newFakeBookingRepo(kind entity.BookingKind, exclusive bool, maxPerSlot int) *fakeBookingRepo {
	return &fakeBookingRepo{
		kind:       kind,
		exclusive:  exclusive,
		maxPerSlot: maxPerSlot,
		bookings:   make(map[int64]*entity.Booking),
	}
}

func (f *fakeBookingRepo) scheduledCount(subjectID, branchID int64, date string, slotID int64) int {
	count := 0
	for _, b := range f.bookings {
		if b.Status == entity.BookingStatusScheduled &&
			b.SubjectID == subjectID && b.BranchID == branchID &&
			b.Date == date && b.TimeSlotID == slotID {
			count++
		}
	}
	return count
}

func (f *fakeBookingRepo) Create(_ context.Context, booking *entity.Booking) error {
	taken := f.scheduledCount(booking.SubjectID, booking.BranchID, booking.Date, booking.TimeSlotID)
	if f.exclusive && taken > 0 {
		return entity.ErrSlotAlreadyBooked
	}
	if !f.exclusive && taken >= f.maxPerSlot {
		return entity.ErrServiceSlotFull
	}

	f.nextID++
	booking.ID = f.nextID
	booking.Kind = f.kind
	booking.Status = entity.BookingStatusScheduled
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt

	stored := *booking
	f.bookings[booking.ID] = &stored
	return nil
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (*entity.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, entity.ErrBookingNotFound
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookingRepo) ListByUser(_ context.Context, userID int64) ([]*entity.Booking, error) {
	var out []*entity.Booking
	for _, b := range f.bookings {
		if b.UserID == userID {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) UpdateStatus(_ context.Context, id, userID int64, to entity.BookingStatus) error {
	b, ok := f.bookings[id]
	if !ok {
		return entity.ErrBookingNotFound
	}
	if userID > 0 && b.UserID != userID {
		return entity.ErrBookingNotFound
	}
	if b.Status.IsTerminal() {
		return entity.ErrInvalidBookingState
	}
	b.Status = to
	b.UpdatedAt = time.Now()
	return nil
}

func (f *fakeBookingRepo) Reschedule(ctx context.Context, id, userID, newSlotID int64, newDate string) (*entity.Booking, error) {
	old, ok := f.bookings[id]
	if !ok {
		return nil, entity.ErrBookingNotFound
	}
	if userID > 0 && old.UserID != userID {
		return nil, entity.ErrBookingNotFound
	}
	if old.Status.IsTerminal() {
		return nil, entity.ErrInvalidBookingState
	}

	old.Status = entity.BookingStatusRescheduled

	next := &entity.Booking{
		SubjectID:     old.SubjectID,
		TimeSlotID:    newSlotID,
		BranchID:      old.BranchID,
		UserID:        old.UserID,
		Date:          newDate,
		VATPercentage: old.VATPercentage,
	}
	if err := f.Create(ctx, next); err != nil {
		old.Status = entity.BookingStatusScheduled
		return nil, err
	}
	return next, nil
}

func (f *fakeBookingRepo) ScheduledCounts(_ context.Context, subjectID, branchID int64, date string) (map[int64]int, error) {
	counts := make(map[int64]int)
	for _, b := range f.bookings {
		if b.Status == entity.BookingStatusScheduled &&
			b.SubjectID == subjectID && b.BranchID == branchID && b.Date == date {
			counts[b.TimeSlotID]++
		}
	}
	return counts, nil
}

func (f *fakeBookingRepo) ListScheduledByDate(_ context.Context, date string, limit int) ([]*entity.Booking, error) {
	var out []*entity.Booking
	for _, b := range f.bookings {
		if b.Status == entity.BookingStatusScheduled && b.Date == date {
			copied := *b
			out = append(out, &copied)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) Metrics(_ context.Context) (*entity.BookingMetrics, error) {
	metrics := &entity.BookingMetrics{
		BookingsByStatus: make(map[entity.BookingStatus]int64),
	}
	for _, b := range f.bookings {
		metrics.TotalBookings++
		metrics.BookingsByStatus[b.Status]++
	}
	return metrics, nil
}

type fakeDoctorRepo struct {
	doctors     map[int64]*entity.Doctor
	assignments map[string]*entity.DoctorBranch
	slots       map[int64]*entity.TimeSlot
}

func newFakeDoctorRepo() *fakeDoctorRepo {
	return &fakeDoctorRepo{
		doctors:     make(map[int64]*entity.Doctor),
		assignments: make(map[string]*entity.DoctorBranch),
		slots:       make(map[int64]*entity.TimeSlot),
	}
}

func assignmentKey(subjectID, branchID int64) string {
	return fmt.Sprintf("%d:%d", subjectID, branchID)
}

func (f *fakeDoctorRepo) GetByID(_ context.Context, id int64) (*entity.Doctor, error) {
	d, ok := f.doctors[id]
	if !ok {
		return nil, entity.ErrDoctorNotFound
	}
	return d, nil
}

func (f *fakeDoctorRepo) GetBranchAssignment(_ context.Context, doctorID, branchID int64) (*entity.DoctorBranch, error) {
	a, ok := f.assignments[assignmentKey(doctorID, branchID)]
	if !ok {
		return nil, entity.ErrDoctorNotAssigned
	}
	return a, nil
}

func (f *fakeDoctorRepo) ListTimeSlots(_ context.Context, doctorID int64) ([]*entity.TimeSlot, error) {
	var out []*entity.TimeSlot
	for _, s := range f.slots {
		if s.OwnerID == doctorID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeDoctorRepo) GetTimeSlot(_ context.Context, slotID int64) (*entity.TimeSlot, error) {
	s, ok := f.slots[slotID]
	if !ok {
		return nil, entity.ErrTimeSlotNotFound
	}
	return s, nil
}

type fakeServiceRepo struct {
	services map[int64]*entity.Service
	links    map[string]*entity.ServiceBranch
	slots    map[int64]*entity.TimeSlot
}

func newFakeServiceRepo() *fakeServiceRepo {
	return &fakeServiceRepo{
		services: make(map[int64]*entity.Service),
		links:    make(map[string]*entity.ServiceBranch),
		slots:    make(map[int64]*entity.TimeSlot),
	}
}

func (f *fakeServiceRepo) GetByID(_ context.Context, id int64) (*entity.Service, error) {
	s, ok := f.services[id]
	if !ok {
		return nil, entity.ErrServiceNotFound
	}
	return s, nil
}

func (f *fakeServiceRepo) GetBranchLink(_ context.Context, serviceID, branchID int64) (*entity.ServiceBranch, error) {
	l, ok := f.links[assignmentKey(serviceID, branchID)]
	if !ok {
		return nil, entity.ErrServiceNotOffered
	}
	return l, nil
}

func (f *fakeServiceRepo) ListTimeSlots(_ context.Context, serviceID int64) ([]*entity.TimeSlot, error) {
	var out []*entity.TimeSlot
	for _, s := range f.slots {
		if s.OwnerID == serviceID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeServiceRepo) GetTimeSlot(_ context.Context, slotID int64) (*entity.TimeSlot, error) {
	s, ok := f.slots[slotID]
	if !ok {
		return nil, entity.ErrTimeSlotNotFound
	}
	return s, nil
}

type fakeSettingRepo struct {
	vat float64
}

func (f *fakeSettingRepo) GetVATPercentage(_ context.Context) (float64, error) {
	return f.vat, nil
}

type fakeBranchRepo struct {
	branches []*entity.Branch
}

func (f *fakeBranchRepo) GetByID(_ context.Context, id int64) (*entity.Branch, error) {
	for _, b := range f.branches {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, entity.ErrBranchNotFound
}

func (f *fakeBranchRepo) GetAll(_ context.Context) ([]*entity.Branch, error) {
	return f.branches, nil
}

// fakeRedeemRepo mirrors the ledger math: points derive from injected
// completed spend minus recorded redemptions, clamped at zero.
type fakeRedeemRepo struct {
	spend       map[int64]float64
	redemptions map[int64][]*entity.Redemption
	nextID      int64
}

func newFakeRedeemRepo() *fakeRedeemRepo {
	return &fakeRedeemRepo{
		spend:       make(map[int64]float64),
		redemptions: make(map[int64][]*entity.Redemption),
	}
}

func (f *fakeRedeemRepo) points(userID int64, spendPerPoint float64, pointsPerRedemption int64) int64 {
	earned := int64(f.spend[userID] / spendPerPoint)
	available := earned - int64(len(f.redemptions[userID]))*pointsPerRedemption
	if available < 0 {
		return 0
	}
	return available
}

func (f *fakeRedeemRepo) QPoints(_ context.Context, userID int64, spendPerPoint float64, pointsPerRedemption int64) (int64, error) {
	return f.points(userID, spendPerPoint, pointsPerRedemption), nil
}

func (f *fakeRedeemRepo) Redeem(_ context.Context, userID, bookingID, serviceID int64, spendPerPoint float64, pointsPerRedemption int64) (*entity.Redemption, error) {
	if f.points(userID, spendPerPoint, pointsPerRedemption) < pointsPerRedemption {
		return nil, entity.ErrInsufficientQPoints
	}
	f.nextID++
	redemption := &entity.Redemption{
		ID:        f.nextID,
		UserID:    userID,
		BookingID: bookingID,
		ServiceID: serviceID,
		CreatedAt: time.Now(),
	}
	f.redemptions[userID] = append(f.redemptions[userID], redemption)
	return redemption, nil
}

func (f *fakeRedeemRepo) ListByUser(_ context.Context, userID int64) ([]*entity.Redemption, error) {
	return f.redemptions[userID], nil
}

func (f *fakeRedeemRepo) ListUsers(_ context.Context, spendPerPoint float64, pointsPerRedemption int64) ([]*entity.LoyaltyUserSummary, error) {
	var out []*entity.LoyaltyUserSummary
	for userID := range f.spend {
		out = append(out, &entity.LoyaltyUserSummary{
			UserID:          userID,
			StampsCollected: f.points(userID, spendPerPoint, pointsPerRedemption),
		})
	}
	return out, nil
}

func futureDate(daysAhead int) string {
	return time.Now().AddDate(0, 0, daysAhead).Format("2006-01-02")
}
