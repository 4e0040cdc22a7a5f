package entity

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// ClockTime is a timezone-naive wall-clock time of day, stored as a
// postgres TIME column and serialized as "15:04".
type ClockTime struct {
	time.Time
}

const clockTimeLayout = "15:04"

func (ct *ClockTime) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("clock time must be a %q string", clockTimeLayout)
	}
	t, err := time.Parse(clockTimeLayout, string(b[1:len(b)-1]))
	if err != nil {
		return err
	}
	ct.Time = t
	return nil
}

func (ct ClockTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + ct.Format(clockTimeLayout) + `"`), nil
}

func (ct ClockTime) Value() (driver.Value, error) {
	return ct.Format("15:04:05"), nil
}

func (ct *ClockTime) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	switch v := value.(type) {
	case time.Time:
		ct.Time = v
	case []byte:
		return ct.parse(string(v))
	case string:
		return ct.parse(v)
	default:
		return fmt.Errorf("cannot scan type %T into ClockTime", value)
	}
	return nil
}

func (ct *ClockTime) parse(s string) error {
	for _, layout := range []string{"15:04:05", clockTimeLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			ct.Time = t
			return nil
		}
	}
	return fmt.Errorf("cannot parse %q as clock time", s)
}

const bookingDateLayout = "2006-01-02"

// ParseBookingDate validates an ISO calendar date string.
func ParseBookingDate(s string) (time.Time, error) {
	return time.Parse(bookingDateLayout, s)
}
