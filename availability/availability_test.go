package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"takeaway-backend/models"
)

// 5 January 2024 is a Friday.
func friday(hour, minute int) time.Time {
	return time.Date(2024, time.January, 5, hour, minute, 0, 0, time.UTC)
}

func hoursRow(day time.Weekday, open, close string) models.OpeningHours {
	return models.OpeningHours{DayOfWeek: int(day), OpenTime: open, CloseTime: close}
}

func TestParseAndFormatClock(t *testing.T) {
	m, err := ParseClock("09:05")
	require.NoError(t, err)
	assert.Equal(t, 545, m)
	assert.Equal(t, "09:05", FormatClock(m))
	assert.Equal(t, "00:00", FormatClock(0))

	for _, bad := range []string{"", "9", "25:00", "12:60", "noon"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestIsOpenNow(t *testing.T) {
	tests := []struct {
		name     string
		hours    []models.OpeningHours
		holidays []models.Holiday
		now      time.Time
		want     Status
	}{
		{
			name:  "overnight session before midnight",
			hours: []models.OpeningHours{hoursRow(time.Friday, "16:00", "00:00")},
			now:   friday(23, 30),
			want:  Status{IsOpen: true, Reason: ReasonOpen},
		},
		{
			name:  "before opening",
			hours: []models.OpeningHours{hoursRow(time.Friday, "16:00", "00:00")},
			now:   friday(15, 59),
			want:  Status{IsOpen: false, Reason: ReasonOutsideHours},
		},
		{
			name:  "after midnight on an overnight session",
			hours: []models.OpeningHours{hoursRow(time.Friday, "18:00", "02:00")},
			now:   friday(1, 30),
			want:  Status{IsOpen: true, Reason: ReasonOpen},
		},
		{
			name:  "closing minute is inclusive",
			hours: []models.OpeningHours{hoursRow(time.Friday, "11:00", "14:00")},
			now:   friday(14, 0),
			want:  Status{IsOpen: true, Reason: ReasonOpen},
		},
		{
			name:  "between split sessions",
			hours: []models.OpeningHours{hoursRow(time.Friday, "11:00", "14:00"), hoursRow(time.Friday, "17:00", "22:00")},
			now:   friday(15, 30),
			want:  Status{IsOpen: false, Reason: ReasonOutsideHours},
		},
		{
			name:  "second split session",
			hours: []models.OpeningHours{hoursRow(time.Friday, "11:00", "14:00"), hoursRow(time.Friday, "17:00", "22:00")},
			now:   friday(18, 0),
			want:  Status{IsOpen: true, Reason: ReasonOpen},
		},
		{
			name:  "no rows for the weekday",
			hours: []models.OpeningHours{hoursRow(time.Saturday, "11:00", "22:00")},
			now:   friday(12, 0),
			want:  Status{IsOpen: false, Reason: ReasonNoHours},
		},
		{
			name:  "all rows closed",
			hours: []models.OpeningHours{{DayOfWeek: int(time.Friday), OpenTime: "11:00", CloseTime: "22:00", IsClosed: true}},
			now:   friday(12, 0),
			want:  Status{IsOpen: false, Reason: ReasonNoHours},
		},
		{
			name:     "inside holiday window",
			hours:    []models.OpeningHours{hoursRow(time.Friday, "11:00", "22:00")},
			holidays: []models.Holiday{{Date: "2024-01-05", StartTime: "12:00", EndTime: "14:00"}},
			now:      friday(13, 0),
			want:     Status{IsOpen: false, Reason: ReasonHoliday},
		},
		{
			name:     "holiday reason is surfaced",
			hours:    []models.OpeningHours{hoursRow(time.Friday, "11:00", "22:00")},
			holidays: []models.Holiday{{Date: "2024-01-05", StartTime: "12:00", EndTime: "14:00", Reason: "Staff training"}},
			now:      friday(12, 0),
			want:     Status{IsOpen: false, Reason: "Staff training"},
		},
		{
			name:     "outside holiday window falls back to normal hours",
			hours:    []models.OpeningHours{hoursRow(time.Friday, "11:00", "22:00")},
			holidays: []models.Holiday{{Date: "2024-01-05", StartTime: "12:00", EndTime: "14:00"}},
			now:      friday(15, 0),
			want:     Status{IsOpen: true, Reason: ReasonOpen},
		},
		{
			name:  "any of several holidays closes",
			hours: []models.OpeningHours{hoursRow(time.Friday, "11:00", "22:00")},
			holidays: []models.Holiday{
				{Date: "2024-01-05", StartTime: "12:00", EndTime: "13:00"},
				{Date: "2024-01-05", StartTime: "18:00", EndTime: "19:00"},
			},
			now:  friday(18, 30),
			want: Status{IsOpen: false, Reason: ReasonHoliday},
		},
		{
			name:     "whole day holiday",
			hours:    []models.OpeningHours{hoursRow(time.Friday, "11:00", "22:00")},
			holidays: []models.Holiday{{Date: "2024-01-05"}},
			now:      friday(20, 0),
			want:     Status{IsOpen: false, Reason: ReasonHoliday},
		},
		{
			name:  "equal open and close runs all day",
			hours: []models.OpeningHours{hoursRow(time.Friday, "00:00", "00:00")},
			now:   friday(12, 0),
			want:  Status{IsOpen: true, Reason: ReasonOpen},
		},
		{
			name:  "equal non-midnight times also run all day",
			hours: []models.OpeningHours{hoursRow(time.Friday, "17:00", "17:00")},
			now:   friday(9, 0),
			want:  Status{IsOpen: true, Reason: ReasonOpen},
		},
		{
			name:     "holiday on another date is ignored",
			hours:    []models.OpeningHours{hoursRow(time.Friday, "11:00", "22:00")},
			holidays: []models.Holiday{{Date: "2024-01-06"}},
			now:      friday(20, 0),
			want:     Status{IsOpen: true, Reason: ReasonOpen},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOpenNow(tt.hours, tt.holidays, tt.now))
		})
	}
}

func TestAvailableSlotsWholeSession(t *testing.T) {
	hours := []models.OpeningHours{hoursRow(time.Friday, "12:00", "15:00")}

	slots := AvailableSlots(hours, nil, friday(0, 0), 0, 0, friday(9, 0))

	require.Len(t, slots.Times, 12)
	assert.Equal(t, "12:00", slots.Times[0])
	assert.Equal(t, "14:45", slots.Times[len(slots.Times)-1])
	assert.NotContains(t, slots.Times, "15:00")
	assert.Empty(t, slots.Reason)
}

func TestAvailableSlotsLeadTime(t *testing.T) {
	hours := []models.OpeningHours{hoursRow(time.Friday, "12:00", "15:00")}

	tests := []struct {
		name      string
		now       time.Time
		lead      int
		wantFirst string
	}{
		{name: "lead lands on a boundary", now: friday(12, 10), lead: 20, wantFirst: "12:30"},
		{name: "lead rounds up", now: friday(12, 10), lead: 25, wantFirst: "12:45"},
		{name: "partial minute rounds up", now: friday(12, 10).Add(30 * time.Second), lead: 20, wantFirst: "12:45"},
		{name: "lead before opening", now: friday(10, 0), lead: 30, wantFirst: "12:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := AvailableSlots(hours, nil, friday(0, 0), tt.lead, 0, tt.now)

			require.NotEmpty(t, slots.Times)
			assert.Equal(t, tt.wantFirst, slots.Times[0])
			assert.Equal(t, "14:45", slots.Times[len(slots.Times)-1])
		})
	}
}

func TestAvailableSlotsLeadTimeOnlyAppliesToday(t *testing.T) {
	hours := []models.OpeningHours{hoursRow(time.Saturday, "12:00", "15:00")}
	saturday := time.Date(2024, time.January, 6, 0, 0, 0, 0, time.UTC)

	slots := AvailableSlots(hours, nil, saturday, 600, 0, friday(23, 0))

	require.NotEmpty(t, slots.Times)
	assert.Equal(t, "12:00", slots.Times[0])
}

func TestAvailableSlotsBuffer(t *testing.T) {
	hours := []models.OpeningHours{hoursRow(time.Friday, "12:00", "15:00")}

	slots := AvailableSlots(hours, nil, friday(0, 0), 0, 30, friday(9, 0))

	require.NotEmpty(t, slots.Times)
	assert.Equal(t, "14:15", slots.Times[len(slots.Times)-1])
}

func TestAvailableSlotsOvernightSessionEndsAtMidnight(t *testing.T) {
	hours := []models.OpeningHours{hoursRow(time.Friday, "16:00", "00:00")}

	slots := AvailableSlots(hours, nil, friday(0, 0), 0, 30, friday(9, 0))

	require.NotEmpty(t, slots.Times)
	assert.Equal(t, "16:00", slots.Times[0])
	assert.Equal(t, "23:15", slots.Times[len(slots.Times)-1])
}

func TestAvailableSlotsAllDaySessionAgreesWithStatus(t *testing.T) {
	for _, clock := range []string{"00:00", "17:00"} {
		t.Run(clock, func(t *testing.T) {
			hours := []models.OpeningHours{hoursRow(time.Friday, clock, clock)}
			now := friday(12, 0)

			assert.True(t, IsOpenNow(hours, nil, now).IsOpen)

			slots := AvailableSlots(hours, nil, friday(0, 0), 0, 0, now)
			require.Len(t, slots.Times, 48)
			assert.Equal(t, "12:00", slots.Times[0])
			assert.Equal(t, "23:45", slots.Times[len(slots.Times)-1])

			future := AvailableSlots(hours, nil, friday(0, 0).AddDate(0, 0, 7), 0, 0, now)
			require.Len(t, future.Times, 96)
			assert.Equal(t, "00:00", future.Times[0])
		})
	}
}

func TestAvailableSlotsSplitAndOverlappingSessions(t *testing.T) {
	split := []models.OpeningHours{
		hoursRow(time.Friday, "17:00", "22:00"),
		hoursRow(time.Friday, "12:00", "14:00"),
	}
	slots := AvailableSlots(split, nil, friday(0, 0), 0, 0, friday(9, 0))

	assert.Contains(t, slots.Times, "13:45")
	assert.Contains(t, slots.Times, "17:00")
	assert.NotContains(t, slots.Times, "14:00")
	assert.NotContains(t, slots.Times, "16:45")
	assert.Equal(t, "12:00", slots.Times[0])
	assert.IsIncreasing(t, slots.Times)

	overlapping := []models.OpeningHours{
		hoursRow(time.Friday, "12:00", "14:00"),
		hoursRow(time.Friday, "13:00", "15:00"),
	}
	slots = AvailableSlots(overlapping, nil, friday(0, 0), 0, 0, friday(9, 0))

	assert.Len(t, slots.Times, 12)
	assert.IsIncreasing(t, slots.Times)
}

func TestAvailableSlotsHolidayWindow(t *testing.T) {
	hours := []models.OpeningHours{hoursRow(time.Friday, "07:00", "23:00")}
	holidays := []models.Holiday{{Date: "2024-01-05", StartTime: "08:00", EndTime: "22:00"}}

	slots := AvailableSlots(hours, holidays, friday(0, 0), 0, 0, friday(6, 0))

	assert.Equal(t, []string{"07:00", "07:15", "07:30", "07:45", "22:15", "22:30", "22:45"}, slots.Times)
}

func TestAvailableSlotsEmptyResults(t *testing.T) {
	hours := []models.OpeningHours{hoursRow(time.Friday, "12:00", "15:00")}

	t.Run("past date", func(t *testing.T) {
		slots := AvailableSlots(hours, nil, friday(0, 0).AddDate(0, 0, -7), 0, 0, friday(9, 0))
		assert.Empty(t, slots.Times)
		assert.Equal(t, ReasonPastDate, slots.Reason)
	})

	t.Run("closed day", func(t *testing.T) {
		slots := AvailableSlots(hours, nil, friday(0, 0).AddDate(0, 0, 1), 0, 0, friday(9, 0))
		assert.Empty(t, slots.Times)
		assert.Equal(t, ReasonClosedOnDay, slots.Reason)
	})

	t.Run("after last slot", func(t *testing.T) {
		slots := AvailableSlots(hours, nil, friday(0, 0), 0, 0, friday(14, 50))
		assert.NotNil(t, slots.Times)
		assert.Empty(t, slots.Times)
		assert.Equal(t, ReasonNoSlots, slots.Reason)
	})

	t.Run("whole day holiday", func(t *testing.T) {
		slots := AvailableSlots(hours, []models.Holiday{{Date: "2024-01-05"}}, friday(0, 0), 0, 0, friday(9, 0))
		assert.Empty(t, slots.Times)
		assert.Equal(t, ReasonNoSlots, slots.Reason)
	})
}

func TestAvailableSlotsIsRepeatable(t *testing.T) {
	hours := []models.OpeningHours{hoursRow(time.Friday, "12:00", "15:00")}

	first := AvailableSlots(hours, nil, friday(0, 0), 15, 15, friday(11, 0))
	second := AvailableSlots(hours, nil, friday(0, 0), 15, 15, friday(11, 0))

	assert.Equal(t, first, second)
}
