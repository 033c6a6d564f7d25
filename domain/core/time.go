package core

import "time"

// Timestamp represents a point in time recorded by a benchmark run
type Timestamp time.Time

// NewTimestamp creates a new timestamp from time.Time
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t)
}

// FromUnixMilli builds a timestamp from epoch milliseconds as stored in the results log.
func FromUnixMilli(ms int64) Timestamp {
	return Timestamp(time.UnixMilli(ms))
}

// Time returns the underlying time.Time
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// UnixMilli returns the epoch milliseconds written to the results log.
func (t Timestamp) UnixMilli() int64 {
	return time.Time(t).UnixMilli()
}

// IsZero checks if the timestamp is zero
func (t Timestamp) IsZero() bool {
	return time.Time(t).IsZero()
}

// Before returns true if t is before u
func (t Timestamp) Before(u Timestamp) bool {
	return time.Time(t).Before(time.Time(u))
}

// String formats the timestamp as RFC3339 in UTC.
func (t Timestamp) String() string {
	return time.Time(t).UTC().Format(time.RFC3339Nano)
}
