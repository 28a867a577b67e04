// Package deadline computes due times measured in business hours.
package deadline

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidWindow = errors.New("deadline: invalid business window")
	ErrNegativeHours = errors.New("deadline: negative business hours")
)

// Window is the daily working window [StartHour, EndHour) in Location.
// A nil Location means the location of the input time.
type Window struct {
	StartHour int
	EndHour   int
	Location  *time.Location
}

// Validate rejects windows that could never count an hour. The walk counts
// the hour it lands on and lands at StartHour+1 at the earliest, so a window
// narrower than two hours is as empty as a zero-width one.
func (w Window) Validate() error {
	if w.StartHour < 0 || w.EndHour > 24 || w.EndHour-w.StartHour < 2 {
		return fmt.Errorf("%w: [%d, %d)", ErrInvalidWindow, w.StartHour, w.EndHour)
	}
	return nil
}

// Contains reports whether the hour-of-day of t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	h := w.in(t).Hour()
	return h >= w.StartHour && h < w.EndHour
}

func (w Window) in(t time.Time) time.Time {
	if w.Location != nil {
		return t.In(w.Location)
	}
	return t
}

// Compute returns the instant businessHours working hours after from.
//
// The walk advances one clock hour at a time and inspects the hour-of-day it
// lands on. Landing inside the window counts one hour. Landing at or past
// EndHour jumps to StartHour on the next calendar day, landing before
// StartHour jumps to StartHour the same day; jumps keep the minutes and count
// nothing. A from earlier than StartHour is first moved to StartHour:00.
// Every result therefore satisfies StartHour <= hour < EndHour.
func Compute(from time.Time, businessHours int, w Window) (time.Time, error) {
	if err := w.Validate(); err != nil {
		return time.Time{}, err
	}
	if businessHours < 0 {
		return time.Time{}, fmt.Errorf("%w: %d", ErrNegativeHours, businessHours)
	}

	cur := w.in(from)
	if cur.Hour() < w.StartHour {
		cur = atHour(cur, 0, w.StartHour, 0, 0, 0)
	}

	if businessHours == 0 {
		if cur.Hour() >= w.EndHour {
			cur = atHour(cur, 1, w.StartHour, 0, 0, 0)
		}
		// StartHour:00 may not exist on a daylight-saving change day.
		for !w.Contains(cur) {
			cur = cur.Add(time.Hour)
		}
		return cur, nil
	}

	for counted := 0; counted < businessHours; {
		cur = cur.Add(time.Hour)
		switch h := cur.Hour(); {
		case h >= w.EndHour:
			cur = atHour(cur, 1, w.StartHour, cur.Minute(), cur.Second(), cur.Nanosecond())
		case h < w.StartHour:
			cur = atHour(cur, 0, w.StartHour, cur.Minute(), cur.Second(), cur.Nanosecond())
		default:
			counted++
		}
	}

	return cur, nil
}

// atHour moves t by dayOffset calendar days and sets its clock.
func atHour(t time.Time, dayOffset, hour, minute, sec, nsec int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+dayOffset, hour, minute, sec, nsec, t.Location())
}
