package domain

import (
	"fmt"
	"time"
)

// Window classifies events relative to now for listings.
type Window string

const (
	WindowPast    Window = "past"
	WindowPresent Window = "present"
	WindowFuture  Window = "future"
)

// WindowField names the event timestamp a window filters on.
type WindowField string

const (
	FieldStartTime WindowField = "start_time"
	FieldEndTime   WindowField = "end_time"
)

// ParseWindow maps a path segment to a Window.
func ParseWindow(raw string) (Window, error) {
	switch w := Window(raw); w {
	case WindowPast, WindowPresent, WindowFuture:
		return w, nil
	}
	return "", Invalid(fmt.Sprintf("unknown window %q", raw))
}

var (
	// DefaultWindowFloor bounds the past window from below.
	DefaultWindowFloor = time.Date(2011, time.January, 1, 0, 0, 0, 0, time.UTC)
	// DefaultWindowCeiling bounds the future window from above.
	DefaultWindowCeiling = time.Date(2050, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// WindowRange is an inclusive time range over one event field.
type WindowRange struct {
	Field WindowField
	From  time.Time
	To    time.Time
}

// Contains reports whether e falls in the range.
func (r WindowRange) Contains(e Event) bool {
	t := e.StartTime
	if r.Field == FieldEndTime {
		t = e.EndTime
	}
	return !t.Before(r.From) && !t.After(r.To)
}

// RangeFor computes the filter for w at now.
//
// Past and future keep a one day buffer from now and present starts at midnight, so an
// event that started yesterday and is still running, or starts later today, lands in none
// of the three lists.
func RangeFor(w Window, now, floor, ceiling time.Time) WindowRange {
	day := 24 * time.Hour
	switch w {
	case WindowPast:
		return WindowRange{Field: FieldEndTime, From: floor, To: now.Add(-day)}
	case WindowPresent:
		// Midnight in UTC, whatever the host zone.
		y, m, d := now.UTC().Date()
		return WindowRange{Field: FieldStartTime, From: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), To: now}
	default:
		return WindowRange{Field: FieldStartTime, From: now.Add(day), To: ceiling}
	}
}
