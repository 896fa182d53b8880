// Package availability answers whether the store is open and which
// collection or delivery times can still be booked for a date. The
// calculations take "now" from the caller and hold no state of their own.
package availability

import (
	"sort"
	"time"

	"takeaway-backend/models"
)

const (
	ReasonOpen             = "Open"
	ReasonOutsideHours     = "Outside opening hours"
	ReasonNoHours          = "No opening hours set"
	ReasonHoliday          = "Closed for holiday"
	ReasonClosedOnDay      = "Closed on this day"
	ReasonPastDate         = "Date is in the past"
	ReasonNoSlots          = "No available times"
	ReasonInvalidDate      = "Invalid date"
	ReasonHoursUnavailable = "Unable to load opening hours"
)

type Status struct {
	IsOpen bool   `json:"is_open"`
	Reason string `json:"reason"`
}

// Slots lists bookable HH:MM times in ascending order. Reason is set only
// when Times is empty.
type Slots struct {
	Times  []string `json:"times"`
	Reason string   `json:"reason,omitempty"`
}

type window struct {
	start, end int
	reason     string
}

func (w window) contains(minute int) bool {
	return minute >= w.start && minute <= w.end
}

// holidayWindows returns the closed windows that apply on dateKey. An empty
// or unreadable bound extends the window to that end of the day.
func holidayWindows(holidays []models.Holiday, dateKey string) []window {
	var windows []window
	for _, h := range holidays {
		if h.Date != dateKey {
			continue
		}
		w := window{start: 0, end: minutesPerDay, reason: h.Reason}
		if m, err := ParseClock(h.StartTime); err == nil {
			w.start = m
		}
		if m, err := ParseClock(h.EndTime); err == nil {
			w.end = m
		}
		windows = append(windows, w)
	}
	return windows
}

func openRows(hours []models.OpeningHours, day time.Weekday) []models.OpeningHours {
	var rows []models.OpeningHours
	for _, h := range hours {
		if h.DayOfWeek == int(day) && !h.IsClosed {
			rows = append(rows, h)
		}
	}
	return rows
}

// IsOpenNow reports whether the store is trading at now. A holiday window
// covering now closes the store regardless of its normal hours. A session
// with equal open and close times runs all day.
func IsOpenNow(hours []models.OpeningHours, holidays []models.Holiday, now time.Time) Status {
	minute := minuteOfDay(now)

	for _, w := range holidayWindows(holidays, DateKey(now)) {
		if w.contains(minute) {
			reason := ReasonHoliday
			if w.reason != "" {
				reason = w.reason
			}
			return Status{IsOpen: false, Reason: reason}
		}
	}

	rows := openRows(hours, now.Weekday())
	if len(rows) == 0 {
		return Status{IsOpen: false, Reason: ReasonNoHours}
	}

	for _, row := range rows {
		open, err := ParseClock(row.OpenTime)
		if err != nil {
			continue
		}
		closeAt, err := ParseClock(row.CloseTime)
		if err != nil {
			continue
		}

		var inside bool
		switch {
		case closeAt == open:
			inside = true
		case closeAt < open:
			inside = minute >= open || minute <= closeAt
		default:
			inside = minute >= open && minute <= closeAt
		}
		if inside {
			return Status{IsOpen: true, Reason: ReasonOpen}
		}
	}
	return Status{IsOpen: false, Reason: ReasonOutsideHours}
}

// AvailableSlots enumerates the 15-minute boundaries on date that fall inside
// opening hours, at least leadMinutes after now and more than bufferMinutes
// before closing, skipping holiday windows.
func AvailableSlots(hours []models.OpeningHours, holidays []models.Holiday, date time.Time, leadMinutes, bufferMinutes int, now time.Time) Slots {
	dateKey, today := DateKey(date), DateKey(now)
	if dateKey < today {
		return Slots{Times: []string{}, Reason: ReasonPastDate}
	}

	rows := openRows(hours, date.Weekday())
	if len(rows) == 0 {
		return Slots{Times: []string{}, Reason: ReasonClosedOnDay}
	}

	earliest := -1
	if dateKey == today {
		earliest = minuteOfDay(now) + leadMinutes
		if now.Second() > 0 || now.Nanosecond() > 0 {
			earliest++
		}
	}

	closed := holidayWindows(holidays, dateKey)
	seen := make(map[int]bool)

	for _, row := range rows {
		open, err := ParseClock(row.OpenTime)
		if err != nil {
			continue
		}
		closeAt, err := ParseClock(row.CloseTime)
		if err != nil {
			continue
		}

		// Sessions closing at or after midnight end with the requested date.
		// Equal open and close times mean open all day.
		end := closeAt
		if closeAt <= open {
			end = minutesPerDay
		}
		if closeAt == open {
			open = 0
		}
		end -= bufferMinutes

		start := open
		if earliest > start {
			start = earliest
		}
		start = roundUp(start, slotInterval)

	slots:
		for t := start; t < end; t += slotInterval {
			for _, w := range closed {
				if w.contains(t) {
					continue slots
				}
			}
			seen[t] = true
		}
	}

	if len(seen) == 0 {
		return Slots{Times: []string{}, Reason: ReasonNoSlots}
	}

	minutes := make([]int, 0, len(seen))
	for t := range seen {
		minutes = append(minutes, t)
	}
	sort.Ints(minutes)

	times := make([]string, len(minutes))
	for i, m := range minutes {
		times[i] = FormatClock(m)
	}
	return Slots{Times: times}
}

func roundUp(minute, step int) int {
	if r := minute % step; r != 0 {
		return minute + step - r
	}
	return minute
}
