package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatusIsTerminal(t *testing.T) {
	tests := []struct {
		status   BookingStatus
		terminal bool
	}{
		{BookingStatusScheduled, false},
		{BookingStatusRescheduled, true},
		{BookingStatusCanceled, true},
		{BookingStatusCompleted, true},
		{BookingStatusRefundInitiated, true},
		{BookingStatusRefundCompleted, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
		})
	}
}
