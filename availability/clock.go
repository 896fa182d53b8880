package availability

import (
	"fmt"
	"time"
)

const (
	minutesPerDay = 24 * 60
	slotInterval  = 15
	dateLayout    = "2006-01-02"
)

// ParseClock converts a 24-hour "HH:MM" string into minutes after midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseDate parses a YYYY-MM-DD date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

func DateKey(t time.Time) string {
	return t.Format(dateLayout)
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
