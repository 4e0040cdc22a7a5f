package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	repository "github.com/careplus/clinic-backend/internal/database/postgres"
	"github.com/careplus/clinic-backend/internal/entity"
	"github.com/careplus/clinic-backend/internal/service"
	"github.com/careplus/clinic-backend/pkg/queue"
)

// ReminderWorker periodically enqueues reminder notifications for every
// booking scheduled on the next day.
type ReminderWorker struct {
	doctorBookings  repository.BookingRepository
	serviceBookings repository.BookingRepository
	publisher       service.TaskPublisher
	interval        time.Duration
	batchSize       int

	sent     map[string]bool
	sentDate string
}

func NewReminderWorker(
	doctorBookings repository.BookingRepository,
	serviceBookings repository.BookingRepository,
	publisher service.TaskPublisher,
	interval time.Duration,
	batchSize int,
) *ReminderWorker {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &ReminderWorker{
		doctorBookings:  doctorBookings,
		serviceBookings: serviceBookings,
		publisher:       publisher,
		interval:        interval,
		batchSize:       batchSize,
		sent:            make(map[string]bool),
	}
}

func (w *ReminderWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.Info("Reminder worker started")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Reminder worker stopped")
			return
		case <-ticker.C:
			w.enqueueReminders(ctx)
		}
	}
}

func (w *ReminderWorker) enqueueReminders(ctx context.Context) {
	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")

	// A new target date invalidates the dedup set.
	if w.sentDate != tomorrow {
		w.sent = make(map[string]bool)
		w.sentDate = tomorrow
	}

	total := 0
	for _, repo := range []repository.BookingRepository{w.doctorBookings, w.serviceBookings} {
		bookings, err := repo.ListScheduledByDate(ctx, tomorrow, w.batchSize)
		if err != nil {
			logrus.Errorf("Failed to list scheduled bookings for %s: %v", tomorrow, err)
			continue
		}
		total += w.publishBatch(ctx, bookings)
	}

	if total > 0 {
		logrus.Infof("Enqueued %d booking reminders for %s", total, tomorrow)
	}
}

func (w *ReminderWorker) publishBatch(ctx context.Context, bookings []*entity.Booking) int {
	published := 0
	for _, booking := range bookings {
		key := fmt.Sprintf("%s:%d", booking.Kind, booking.ID)
		if w.sent[key] {
			continue
		}

		task := &queue.Task{
			ID:   uuid.NewString(),
			Type: queue.TaskTypeBookingReminder,
			Data: map[string]interface{}{
				"booking_id":   booking.ID,
				"kind":         string(booking.Kind),
				"user_id":      booking.UserID,
				"branch_id":    booking.BranchID,
				"date":         booking.Date,
				"time_slot_id": booking.TimeSlotID,
			},
			MaxRetries: 2,
		}

		if err := w.publisher.Publish(ctx, task); err != nil {
			logrus.Errorf("Failed to publish reminder for booking %s: %v", key, err)
			continue
		}

		w.sent[key] = true
		published++
	}
	return published
}
