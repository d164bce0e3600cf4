// Package schedule expands a weekly meeting pattern into dated class sessions.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/uniattend/attendance-backend/internal/model"
)

var (
	ErrRangeInversion = errors.New("end date is before start date")
	ErrNoMeetingDays  = errors.New("at least one meeting weekday is required")
	ErrUnknownWeekday = errors.New("unknown weekday")
	ErrInvalidDate    = errors.New("date must be YYYY-MM-DD")
	ErrInvalidTime    = errors.New("time must be HH:MM:SS")
)

var weekdays = map[string]time.Weekday{
	"Sunday":    time.Sunday,
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
}

// IsWeekday reports whether name is an English weekday name ("Monday", …).
func IsWeekday(name string) bool {
	_, ok := weekdays[name]
	return ok
}

// ParseDate parses a "YYYY-MM-DD" calendar date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// Expand returns one session for every date in [start, end] whose weekday is a
// key of times, carrying that weekday's time. Sessions are ordered by date.
func Expand(code string, start, end time.Time, times map[string]string) ([]model.ClassSession, error) {
	start = truncateDay(start)
	end = truncateDay(end)

	if end.Before(start) {
		return nil, ErrRangeInversion
	}
	if len(times) == 0 {
		return nil, ErrNoMeetingDays
	}

	byWeekday := make(map[time.Weekday]string, len(times))
	for name, at := range times {
		wd, ok := weekdays[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownWeekday, name)
		}
		if _, err := time.Parse(model.TimeLayout, at); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTime, at)
		}
		byWeekday[wd] = at
	}

	var sessions []model.ClassSession
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		at, ok := byWeekday[day.Weekday()]
		if !ok {
			continue
		}
		sessions = append(sessions, model.ClassSession{
			ClassCode: code,
			Date:      day.Format(model.DateLayout),
			Time:      at,
		})
	}
	return sessions, nil
}

// truncateDay drops the clock part, keeping the calendar date as UTC midnight
// so that day stepping is not affected by DST transitions.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
