package calendar

import (
	"testing"
	"time"

	"zion/gateway/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGridProperties(t *testing.T) {
	for year := 2023; year <= 2028; year++ {
		for month := time.January; month <= time.December; month++ {
			grid := BuildGrid(year, month)
			offset := FirstWeekdayOffset(year, month)
			days := DaysInMonth(year, month)

			assert.Zero(t, len(grid)%7, "%d-%02d length", year, month)

			filled := 0
			for _, c := range grid {
				if c != 0 {
					filled++
				}
			}
			assert.Equal(t, days, filled, "%d-%02d days", year, month)

			leading := 0
			for _, c := range grid {
				if c != 0 {
					break
				}
				leading++
			}
			assert.Equal(t, offset, leading, "%d-%02d offset", year, month)
		}
	}
}

func TestBuildGridKnownMonths(t *testing.T) {
	// March 2025 starts on a Saturday
	grid := BuildGrid(2025, time.March)
	assert.Equal(t, 5, FirstWeekdayOffset(2025, time.March))
	assert.Len(t, grid, 42)
	assert.Equal(t, 1, grid[5])
	assert.Equal(t, 31, grid[35])

	// February 2027 starts on a Monday and fills exactly four weeks
	assert.Equal(t, 0, FirstWeekdayOffset(2027, time.February))
	assert.Len(t, BuildGrid(2027, time.February), 28)

	assert.Equal(t, 29, DaysInMonth(2024, time.February))
	assert.Equal(t, 28, DaysInMonth(2100, time.February))
}

func TestNavigate(t *testing.T) {
	anchor := time.Date(2025, time.January, 31, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), Navigate(anchor, 1))
	assert.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), Navigate(anchor, -1))
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), Navigate(anchor, 12))
}

func TestMonthView(t *testing.T) {
	idx := BuildIndex([]models.ScheduledAction{
		{ID: "a", ScheduledDate: "2025-03-15"},
	}, time.UTC)
	today := time.Date(2025, time.March, 15, 9, 30, 0, 0, time.UTC)

	view := MonthView(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), today, idx)
	require.Len(t, view, 42)
	assert.Nil(t, view[0])

	day := view[5+14]
	require.NotNil(t, day)
	assert.Equal(t, "2025-03-15", day.Date)
	assert.True(t, day.IsToday)
	assert.True(t, day.IsCurrentMonth)
	require.Len(t, day.Actions, 1)

	assert.Empty(t, view[5].Actions)
	assert.NotNil(t, view[5].Actions)
}
