package calendar

import (
	"time"

	"zion/gateway/internal/models"
)

// DaysInMonth returns the number of days of month in year
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstWeekdayOffset is the Monday-based weekday index (Monday = 0) of the
// first day of the month
func FirstWeekdayOffset(year int, month time.Month) int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return (int(first.Weekday()) + 6) % 7
}

// BuildGrid lays out a month as weeks starting on Monday. A cell holds the
// day of the month, 0 marks padding. The length is always a multiple of 7.
func BuildGrid(year int, month time.Month) []int {
	offset := FirstWeekdayOffset(year, month)
	days := DaysInMonth(year, month)

	size := offset + days
	if rem := size % 7; rem != 0 {
		size += 7 - rem
	}

	cells := make([]int, size)
	for d := 1; d <= days; d++ {
		cells[offset+d-1] = d
	}
	return cells
}

// MonthStart clamps t to the first day of its month
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// Navigate moves the anchor by n months
func Navigate(anchor time.Time, n int) time.Time {
	return time.Date(anchor.Year(), anchor.Month()+time.Month(n), 1, 0, 0, 0, 0, anchor.Location())
}

// MonthView renders the grid of anchor's month using idx. Padding cells are nil.
func MonthView(anchor, today time.Time, idx *Index) []*models.CalendarDay {
	year, month := anchor.Year(), anchor.Month()
	todayKey := today.Format(DateLayout)

	grid := BuildGrid(year, month)
	view := make([]*models.CalendarDay, len(grid))
	for i, d := range grid {
		if d == 0 {
			continue
		}
		key := time.Date(year, month, d, 0, 0, 0, 0, anchor.Location()).Format(DateLayout)
		actions := idx.ActionsOn(key)
		if actions == nil {
			actions = []models.ScheduledAction{}
		}
		view[i] = &models.CalendarDay{
			Date:           key,
			Day:            d,
			Actions:        actions,
			IsToday:        key == todayKey,
			IsCurrentMonth: true,
		}
	}
	return view
}
