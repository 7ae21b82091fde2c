package utils

import (
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// ParseTimestamp combines a calendar date and a clock time into a single
// time.Time. The clock part may carry seconds; they are ignored.
func ParseTimestamp(date, clock string) (time.Time, error) {
	if len(clock) > 5 {
		clock = clock[:5]
	}
	return time.Parse(DateLayout+" "+ClockLayout, fmt.Sprintf("%s %s", date, clock))
}

// ValidDate reports whether s is a well-formed calendar day.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// DaysAgo returns the calendar day n days before today.
func DaysAgo(n int) string {
	return time.Now().AddDate(0, 0, -n).Format(DateLayout)
}

// Today returns the current calendar day.
func Today() string {
	return time.Now().Format(DateLayout)
}
