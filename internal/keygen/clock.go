package keygen

import "time"

// DateLayout is the wire format of every expiry date.
const DateLayout = "2006-01-02"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// ExpiryFrom returns the calendar date (UTC midnight) that lies days after now.
func ExpiryFrom(now time.Time, days int) time.Time {
	return Date(now.UTC().AddDate(0, 0, days))
}

// Date truncates t to UTC midnight.
func Date(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
