package handlers

import (
	"context"
	"errors"

	"zion/gateway/internal/apperrors"
	"zion/gateway/internal/config"
	"zion/gateway/internal/discovery"
	"zion/gateway/internal/feed"
	"zion/gateway/internal/generation"
	"zion/gateway/internal/middleware"
	"zion/gateway/internal/session"
	"zion/gateway/internal/wishlist"
	"zion/gateway/internal/workspace"
	ws "zion/gateway/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler serves the gateway API
type Handler struct {
	cfg        *config.Config
	workspaces *workspace.Registry
	sessions   session.Store
	hub        *ws.Hub
	log        *zap.Logger
}

// New creates the API handler
func New(cfg *config.Config, workspaces *workspace.Registry, sessions session.Store, hub *ws.Hub, log *zap.Logger) *Handler {
	return &Handler{
		cfg:        cfg,
		workspaces: workspaces,
		sessions:   sessions,
		hub:        hub,
		log:        log,
	}
}

// workspace returns the view state of the authenticated caller
func (h *Handler) workspace(c *fiber.Ctx) *workspace.Workspace {
	return h.workspaces.Get(middleware.GetUserID(c), middleware.GetToken(c))
}

func ok(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   msg,
	})
}

// fail maps err to a status and an inline error message
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status, msg := classify(err)
	if status >= fiber.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   msg,
	})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, generation.ErrStale):
		return fiber.StatusConflict, "Superseded by a newer request"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusRequestTimeout, "Request cancelled"
	case errors.Is(err, feed.ErrNotConfirmed):
		return fiber.StatusPreconditionRequired, "Deletion must be confirmed"
	case errors.Is(err, feed.ErrPostNotFound):
		return fiber.StatusNotFound, "Post not found"
	case errors.Is(err, feed.ErrLoadInFlight):
		return fiber.StatusConflict, "More posts are already loading"
	case errors.Is(err, wishlist.ErrClaimedByOther):
		return fiber.StatusConflict, "This wish is already claimed"
	case errors.Is(err, wishlist.ErrClaimInFlight):
		return fiber.StatusConflict, "Claim is already being processed"
	case errors.Is(err, wishlist.ErrWishNotFound):
		return fiber.StatusNotFound, "Wish not found"
	case errors.Is(err, discovery.ErrRequestAlreadySent):
		return fiber.StatusConflict, "Friend request already sent"
	}
	return apperrors.StatusCode(err), apperrors.UserMessage(err)
}

// Health reports liveness and a few counters
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":     "ok",
		"message":    "ZION gateway is running",
		"workspaces": h.workspaces.Len(),
		"online":     h.hub.GetOnlineCount(),
	})
}
