package calendar

import (
	"slices"
	"sort"
	"strings"
	"time"

	"zion/gateway/internal/models"
)

// DateLayout is the key format of the date index
const DateLayout = "2006-01-02"

// DateKey normalises an upstream scheduled_date into a "YYYY-MM-DD" key in loc.
// Timestamps with a zone are converted to loc, bare dates are taken as is.
func DateKey(raw string, loc *time.Location) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.In(loc).Format(DateLayout), true
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", raw, loc); err == nil {
		return t.Format(DateLayout), true
	}
	if len(raw) >= len(DateLayout) {
		if t, err := time.ParseInLocation(DateLayout, raw[:len(DateLayout)], loc); err == nil {
			return t.Format(DateLayout), true
		}
	}
	return "", false
}

// SortDayActions orders actions by scheduled_time ascending. Untimed actions
// go last. Ties keep their input order.
func SortDayActions(actions []models.ScheduledAction) {
	slices.SortStableFunc(actions, func(a, b models.ScheduledAction) int {
		at, bt := timeOf(a), timeOf(b)
		switch {
		case at == "" && bt == "":
			return 0
		case at == "":
			return 1
		case bt == "":
			return -1
		}
		return strings.Compare(at, bt)
	})
}

func timeOf(a models.ScheduledAction) string {
	if a.ScheduledTime == nil {
		return ""
	}
	return strings.TrimSpace(*a.ScheduledTime)
}

// Index maps a calendar day to the actions scheduled on it. It is built once
// per fetch and read-only afterwards.
type Index struct {
	byDate  map[string][]models.ScheduledAction
	keys    []string
	undated int
}

// BuildIndex groups actions by DateKey and sorts each day
func BuildIndex(actions []models.ScheduledAction, loc *time.Location) *Index {
	idx := &Index{byDate: make(map[string][]models.ScheduledAction)}
	for _, a := range actions {
		key, ok := DateKey(a.ScheduledDate, loc)
		if !ok {
			idx.undated++
			continue
		}
		if _, seen := idx.byDate[key]; !seen {
			idx.keys = append(idx.keys, key)
		}
		idx.byDate[key] = append(idx.byDate[key], a)
	}
	for _, day := range idx.byDate {
		SortDayActions(day)
	}
	sort.Strings(idx.keys)
	return idx
}

// ActionsOn returns the actions of the "YYYY-MM-DD" day key
func (idx *Index) ActionsOn(key string) []models.ScheduledAction {
	if idx == nil {
		return nil
	}
	day := idx.byDate[key]
	if day == nil {
		return nil
	}
	out := make([]models.ScheduledAction, len(day))
	copy(out, day)
	return out
}

// ActionsForDate returns the actions on date's calendar day, read in date's own location
func (idx *Index) ActionsForDate(date time.Time) []models.ScheduledAction {
	return idx.ActionsOn(date.Format(DateLayout))
}

// Len is the number of indexed actions
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	n := 0
	for _, day := range idx.byDate {
		n += len(day)
	}
	return n
}

// Undated counts actions whose scheduled_date could not be parsed
func (idx *Index) Undated() int {
	if idx == nil {
		return 0
	}
	return idx.undated
}

// Upcoming lists up to limit actions from the day of from onward, ordered by
// date then time. Completed actions are skipped.
func (idx *Index) Upcoming(from time.Time, limit int) []models.ScheduledAction {
	out := []models.ScheduledAction{}
	if idx == nil || limit <= 0 {
		return out
	}
	fromKey := from.Format(DateLayout)
	start := sort.SearchStrings(idx.keys, fromKey)
	for _, key := range idx.keys[start:] {
		for _, a := range idx.byDate[key] {
			if a.IsCompleted {
				continue
			}
			out = append(out, a)
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}
