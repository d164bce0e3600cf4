package model

import (
	"fmt"
	"time"
)

// Layouts used for session dates and times.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// ClassSession is one dated meeting of a class. Identity is (ClassCode, Date).
type ClassSession struct {
	ID        int64  `json:"id"`
	ClassCode string `json:"code"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

// ScheduledAt returns the session's date and time in loc.
func (s ClassSession) ScheduledAt(loc *time.Location) (time.Time, error) {
	at, err := time.ParseInLocation(DateLayout+" "+TimeLayout, s.Date+" "+s.Time, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse session %d schedule: %w", s.ID, err)
	}
	return at, nil
}

// SessionEntry is a dated session as listed in schedules and attendance history.
type SessionEntry struct {
	Code string `json:"code,omitempty"`
	Date string `json:"date"`
	Time string `json:"time"`
}
