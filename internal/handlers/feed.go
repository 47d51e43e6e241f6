package handlers

import (
	"errors"

	"zion/gateway/internal/feed"

	"github.com/gofiber/fiber/v2"
)

// CommentRequest represents add comment request body
type CommentRequest struct {
	Content string `json:"content"`
}

// GetFeed returns the main or channel feed. reset=true reloads from the first page.
func (h *Handler) GetFeed(c *fiber.Ctx) error {
	f := h.workspace(c).Feed(c.Query("channel"))
	page, err := f.LoadPosts(c.UserContext(), c.QueryBool("reset", false))
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, page)
}

// CreatePost publishes a post and returns the reloaded feed
func (h *Handler) CreatePost(c *fiber.Ctx) error {
	var req feed.CreateInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	channelID := ""
	if req.ChannelID != nil {
		channelID = *req.ChannelID
	}
	page, err := h.workspace(c).Feed(channelID).Create(c.UserContext(), req)
	if errors.Is(err, feed.ErrReloadFailed) {
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"data":    page,
			"warning": "Post published, but the feed could not be refreshed",
		})
	}
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    page,
	})
}

// ToggleLike likes or unlikes a post of the loaded feed
func (h *Handler) ToggleLike(c *fiber.Ctx) error {
	post, err := h.workspace(c).Feed(c.Query("channel")).ToggleLike(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, post)
}

// DeletePost deletes a post once the caller confirmed with confirm=true
func (h *Handler) DeletePost(c *fiber.Ctx) error {
	f := h.workspace(c).Feed(c.Query("channel"))
	if err := f.Delete(c.UserContext(), c.Params("id"), c.QueryBool("confirm", false)); err != nil {
		return h.fail(c, err)
	}
	return ok(c, f.Snapshot())
}

// AddComment comments on a post
func (h *Handler) AddComment(c *fiber.Ctx) error {
	var req CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	post, err := h.workspace(c).Feed(c.Query("channel")).AddComment(c.UserContext(), c.Params("id"), req.Content)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    post,
	})
}
