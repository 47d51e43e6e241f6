package handlers

import (
	"zion/gateway/internal/discovery"

	"github.com/gofiber/fiber/v2"
)

// GetSuggestions returns categorised people suggestions, optionally filtered
func (h *Handler) GetSuggestions(c *fiber.Ctx) error {
	filter, err := discovery.ParseFilter(c.Query("filter"))
	if err != nil {
		return h.fail(c, err)
	}

	people := h.workspace(c).People
	if !people.Loaded() || c.QueryBool("refresh", false) {
		if err := people.Load(c.UserContext()); err != nil {
			return h.fail(c, err)
		}
	}
	return ok(c, people.View(filter))
}

// SearchPeople searches users by name
func (h *Handler) SearchPeople(c *fiber.Ctx) error {
	users, err := h.workspace(c).People.Search(c.UserContext(), c.Query("q"))
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, users)
}

// FollowPerson follows a user. Failures leave state unchanged and are not reported.
func (h *Handler) FollowPerson(c *fiber.Ctx) error {
	followed := h.workspace(c).People.Follow(c.UserContext(), c.Params("id"))
	return ok(c, fiber.Map{"followed": followed})
}

// SendFriendRequest sends one friend request per user
func (h *Handler) SendFriendRequest(c *fiber.Ctx) error {
	if err := h.workspace(c).People.SendFriendRequest(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"receiver_id": c.Params("id")},
	})
}

// DismissSuggestion hides a suggestion for the rest of the session
func (h *Handler) DismissSuggestion(c *fiber.Ctx) error {
	people := h.workspace(c).People
	people.Dismiss(c.Params("id"))
	return ok(c, people.View(discovery.FilterAll))
}
