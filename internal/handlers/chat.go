package handlers

import (
	"errors"

	"zion/gateway/internal/chat"
	"zion/gateway/internal/middleware"
	"zion/gateway/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SendMessageRequest represents send message request body
type SendMessageRequest struct {
	Content     string             `json:"content"`
	MessageType models.MessageType `json:"message_type"`
}

// GetChatGroups lists the caller's groups, optionally scoped to a module
func (h *Handler) GetChatGroups(c *fiber.Ctx) error {
	w := h.workspace(c)
	memberships, err := w.Client.ChatGroups(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	if module := c.Query("module"); module != "" {
		memberships = w.Calendar.RelevantGroups(module, memberships)
	}
	if memberships == nil {
		memberships = []models.Membership{}
	}
	return ok(c, fiber.Map{
		"chat_groups": memberships,
		"total":       len(memberships),
	})
}

// GetMessages returns the conversation of a group
func (h *Handler) GetMessages(c *fiber.Ctx) error {
	view, err := h.workspace(c).Chat(c.Params("groupId")).Fetch(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, view)
}

// SendMessage posts a message and returns the refreshed conversation
func (h *Handler) SendMessage(c *fiber.Ctx) error {
	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	groupID := c.Params("groupId")
	userID := middleware.GetUserID(c)
	view, err := h.workspace(c).Chat(groupID).Send(c.UserContext(), req.Content, req.MessageType)

	if errors.Is(err, chat.ErrRefetchFailed) {
		// the message is stored upstream, only the reload failed
		h.hub.NotifyGroupMessage(groupID, userID, "")
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"data":    view,
			"warning": "Message sent, but the conversation could not be refreshed",
		})
	}
	if err != nil {
		return h.fail(c, err)
	}

	h.hub.NotifyGroupMessage(groupID, userID, view.ScrollTo)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    view,
	})
}

// GetTyping lists the other members typing in a group
func (h *Handler) GetTyping(c *fiber.Ctx) error {
	typists := h.hub.Typing().Typing(c.Params("groupId"), middleware.GetUserID(c))
	return ok(c, fiber.Map{
		"users": typists,
		"text":  chat.IndicatorText(typists),
	})
}
