package handlers

import (
	"strconv"

	"zion/gateway/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetWishList returns an event's wish list with claim button state
func (h *Handler) GetWishList(c *fiber.Ctx) error {
	view, err := h.workspace(c).Wishes.Load(c.UserContext(), c.Params("eventId"))
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, view)
}

// ToggleWishClaim claims an unclaimed wish or releases the caller's claim
func (h *Handler) ToggleWishClaim(c *fiber.Ctx) error {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil || index < 0 {
		return badRequest(c, "index must be a non-negative number")
	}

	eventID := c.Params("eventId")
	view, err := h.workspace(c).Wishes.ClaimOrUnclaim(c.UserContext(), eventID, index)
	if err != nil {
		return h.fail(c, err)
	}

	h.hub.NotifyWishList(eventID, index, middleware.GetUserID(c))
	return ok(c, view)
}
