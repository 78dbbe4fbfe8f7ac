package model

import "time"

// TimeLayout is the wire format for every timestamp exchanged over HTTP.
const TimeLayout = "2006-01-02 15:04:05"

// FormatTime renders t in TimeLayout using the local zone.
func FormatTime(t time.Time) string {
	return t.In(time.Local).Format(TimeLayout)
}

// FormatTimePtr renders t, or returns nil when t is nil.
func FormatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatTime(*t)
	return &s
}

// ParseTime parses a TimeLayout string in the local zone.
func ParseTime(s string) (time.Time, error) {
	return time.ParseInLocation(TimeLayout, s, time.Local)
}
