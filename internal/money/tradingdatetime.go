package money

import (
	"fmt"
	"time"
)

// DateException is raised when a TradingDateTime constructor is given a
// non-weekday date, or when adding a duration would land on one.
type DateException struct {
	Message string
}

func (e *DateException) Error() string {
	return e.Message
}

func isWeekday(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

// TradingDateTime is an immutable (date, instant) pair. All constructors
// reject weekends: a strategy cycle only ever observes weekday market
// time.
type TradingDateTime struct {
	date    time.Time // truncated to the day, UTC
	instant time.Time
}

// FromUTC builds a TradingDateTime from a UTC-tagged instant. It fails if
// the instant isn't UTC or falls on a weekend.
func FromUTC(instant time.Time) (TradingDateTime, error) {
	if instant.Location() != time.UTC {
		return TradingDateTime{}, &DateException{Message: "timestamp must be UTC"}
	}
	if !isWeekday(instant) {
		return TradingDateTime{}, &DateException{Message: "timestamp must be a weekday"}
	}
	day := time.Date(instant.Year(), instant.Month(), instant.Day(), 0, 0, 0, 0, time.UTC)
	return TradingDateTime{date: day, instant: instant}, nil
}

// FromDailyClose builds a TradingDateTime for the last instant of the
// given trading day (23:59:59.999999 UTC).
func FromDailyClose(day time.Time) (TradingDateTime, error) {
	if !isWeekday(day) {
		return TradingDateTime{}, &DateException{Message: "trading date must be a weekday"}
	}
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	instant := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 999999000, time.UTC)
	return TradingDateTime{date: d, instant: instant}, nil
}

// Now builds a TradingDateTime from the current UTC instant. It fails if
// invoked on a weekend, mirroring the fact that the core never runs a
// cycle outside market days.
func Now() (TradingDateTime, error) {
	return FromUTC(time.Now().UTC())
}

// Date returns the trading date (midnight UTC).
func (t TradingDateTime) Date() time.Time {
	return t.date
}

// Instant returns the exact timestamp.
func (t TradingDateTime) Instant() time.Time {
	return t.instant
}

// Add returns a new TradingDateTime offset by delta. It fails if the
// resulting date is not a weekday.
func (t TradingDateTime) Add(delta time.Duration) (TradingDateTime, error) {
	next := t.instant.Add(delta)
	if !isWeekday(next) {
		return TradingDateTime{}, &DateException{Message: "resulting trading date is not a weekday"}
	}
	day := time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, time.UTC)
	return TradingDateTime{date: day, instant: next}, nil
}

// Sub returns the duration between two TradingDateTime instants.
func (t TradingDateTime) Sub(other TradingDateTime) time.Duration {
	return t.instant.Sub(other.instant)
}

// Before reports whether t is strictly before other.
func (t TradingDateTime) Before(other TradingDateTime) bool {
	return t.instant.Before(other.instant)
}

func (t TradingDateTime) String() string {
	return fmt.Sprintf("[%s %s UTC]", t.date.Format("2006-01-02"), t.instant.Format("15:04:05"))
}
