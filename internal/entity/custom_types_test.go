package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockTimeJSON(t *testing.T) {
	var ct ClockTime
	require.NoError(t, ct.UnmarshalJSON([]byte(`"09:30"`)))
	assert.Equal(t, 9, ct.Hour())
	assert.Equal(t, 30, ct.Minute())

	out, err := json.Marshal(ct)
	require.NoError(t, err)
	assert.Equal(t, `"09:30"`, string(out))

	for _, raw := range []string{`1`, `null`, `true`, `"`, `"25:00"`} {
		var bad ClockTime
		assert.Error(t, bad.UnmarshalJSON([]byte(raw)), raw)
	}
}

func TestClockTimeScan(t *testing.T) {
	t.Run("time value", func(t *testing.T) {
		var ct ClockTime
		require.NoError(t, ct.Scan(time.Date(0, 1, 1, 14, 15, 0, 0, time.UTC)))
		assert.Equal(t, 14, ct.Hour())
	})

	t.Run("string with seconds", func(t *testing.T) {
		var ct ClockTime
		require.NoError(t, ct.Scan("14:15:00"))
		assert.Equal(t, 15, ct.Minute())
	})

	t.Run("bytes", func(t *testing.T) {
		var ct ClockTime
		require.NoError(t, ct.Scan([]byte("08:00:00")))
		assert.Equal(t, 8, ct.Hour())
	})

	t.Run("garbage", func(t *testing.T) {
		var ct ClockTime
		assert.Error(t, ct.Scan("not a time"))
	})
}

func TestParseBookingDate(t *testing.T) {
	parsed, err := ParseBookingDate("2026-09-03")
	require.NoError(t, err)
	assert.Equal(t, time.Thursday, parsed.Weekday())

	_, err = ParseBookingDate("03.09.2026")
	assert.Error(t, err)

	_, err = ParseBookingDate("2026-13-40")
	assert.Error(t, err)
}
