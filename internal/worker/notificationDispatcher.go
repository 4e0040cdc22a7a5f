package worker

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/careplus/clinic-backend/pkg/queue"
)

// NotificationDispatcher consumes queue tasks and hands them to the
// outbound notification channel. The actual SMS/push delivery lives in a
// separate system; this dispatcher records what would be sent and to whom.
type NotificationDispatcher struct{}

func NewNotificationDispatcher() *NotificationDispatcher {
	return &NotificationDispatcher{}
}

// HandleTask implements the queue subscriber callback. An unknown task
// type is an error so it ends up in the DLQ instead of vanishing.
func (d *NotificationDispatcher) HandleTask(task *queue.Task) error {
	entry := logrus.WithFields(logrus.Fields{
		"task_id":   task.ID,
		"task_type": task.Type,
		"user_id":   task.GetInt64("user_id"),
	})

	switch task.Type {
	case queue.TaskTypeBookingConfirmation:
		entry.Infof("Notify user: booking %d confirmed for %s", task.GetInt64("booking_id"), task.GetString("date"))
	case queue.TaskTypeBookingCancelled:
		entry.Infof("Notify user: booking %d cancelled", task.GetInt64("booking_id"))
	case queue.TaskTypeBookingCompleted:
		entry.Infof("Notify user: booking %d completed", task.GetInt64("booking_id"))
	case queue.TaskTypeBookingRescheduled:
		entry.Infof("Notify user: booking %d rescheduled to %s", task.GetInt64("booking_id"), task.GetString("date"))
	case queue.TaskTypeBookingReminder:
		entry.Infof("Notify user: reminder for booking %d on %s", task.GetInt64("booking_id"), task.GetString("date"))
	case queue.TaskTypeRedeemRecorded:
		entry.Infof("Notify user: redemption %d recorded", task.GetInt64("redemption_id"))
	default:
		return fmt.Errorf("unknown task type: %s", task.Type)
	}

	return nil
}
