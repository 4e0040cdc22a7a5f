package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvailablePoints(t *testing.T) {
	tests := []struct {
		name                string
		spend               float64
		redemptions         int64
		spendPerPoint       float64
		pointsPerRedemption int64
		expected            int64
	}{
		{name: "no spend", spend: 0, redemptions: 0, spendPerPoint: 500, pointsPerRedemption: 8, expected: 0},
		{name: "just under one point", spend: 499.99, redemptions: 0, spendPerPoint: 500, pointsPerRedemption: 8, expected: 0},
		{name: "exactly one point", spend: 500, redemptions: 0, spendPerPoint: 500, pointsPerRedemption: 8, expected: 1},
		{name: "floors fractional points", spend: 4799, redemptions: 0, spendPerPoint: 500, pointsPerRedemption: 8, expected: 9},
		{name: "redemption subtracts", spend: 5000, redemptions: 1, spendPerPoint: 500, pointsPerRedemption: 8, expected: 2},
		{name: "clamped at zero", spend: 1000, redemptions: 1, spendPerPoint: 500, pointsPerRedemption: 8, expected: 0},
		{name: "deep negative clamps", spend: 0, redemptions: 5, spendPerPoint: 500, pointsPerRedemption: 8, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := availablePoints(tt.spend, tt.redemptions, tt.spendPerPoint, tt.pointsPerRedemption)
			assert.Equal(t, tt.expected, got)
		})
	}
}
