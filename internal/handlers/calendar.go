package handlers

import (
	"strings"
	"time"

	"zion/gateway/internal/calendar"
	"zion/gateway/internal/models"

	"github.com/gofiber/fiber/v2"
)

const defaultModule = "family"

// GetCalendar fetches scheduled actions of the module and renders one month
func (h *Handler) GetCalendar(c *fiber.Ctx) error {
	loc := h.cfg.CalendarLocation
	now := time.Now().In(loc)

	anchor := now
	if m := c.Query("month"); m != "" {
		t, err := time.ParseInLocation("2006-01", m, loc)
		if err != nil {
			return badRequest(c, "month must look like 2025-03")
		}
		anchor = t
	}

	snap, err := h.workspace(c).Calendar.Fetch(c.UserContext(), c.Query("module", defaultModule), anchor)
	if err != nil {
		return h.fail(c, err)
	}

	return ok(c, fiber.Map{
		"calendar":   snap,
		"month":      snap.Anchor.Format("2006-01"),
		"prev_month": calendar.Navigate(snap.Anchor, -1).Format("2006-01"),
		"next_month": calendar.Navigate(snap.Anchor, 1).Format("2006-01"),
		"days":       snap.MonthView(now),
	})
}

// latest returns the last snapshot of the requested module, fetching it when
// there is none or the last one belongs to another module
func (h *Handler) latest(c *fiber.Ctx, anchor time.Time) (*calendar.Snapshot, error) {
	cal := h.workspace(c).Calendar
	module := c.Query("module", defaultModule)
	if snap := cal.Latest(); snap != nil && strings.EqualFold(snap.Module, module) {
		return snap, nil
	}
	return cal.Fetch(c.UserContext(), module, anchor)
}

// GetCalendarDay lists the actions of one day
func (h *Handler) GetCalendarDay(c *fiber.Ctx) error {
	day, err := time.ParseInLocation(calendar.DateLayout, c.Params("date"), h.cfg.CalendarLocation)
	if err != nil {
		return badRequest(c, "date must look like 2025-03-15")
	}

	snap, err := h.latest(c, day)
	if err != nil {
		return h.fail(c, err)
	}
	actions := snap.ActionsForDate(day)
	if actions == nil {
		actions = []models.ScheduledAction{}
	}
	return ok(c, fiber.Map{
		"date":    day.Format(calendar.DateLayout),
		"actions": actions,
	})
}

// GetUpcoming lists the next scheduled actions from today
func (h *Handler) GetUpcoming(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 5)
	if limit < 1 || limit > 50 {
		return badRequest(c, "limit must be between 1 and 50")
	}

	now := time.Now().In(h.cfg.CalendarLocation)
	snap, err := h.latest(c, now)
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, snap.Upcoming(now, limit))
}
