package handlers

import (
	"time"

	"zion/gateway/internal/middleware"
	"zion/gateway/internal/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CreateSessionRequest represents create session request body
type CreateSessionRequest struct {
	Token string `json:"token"`
}

// CreateSession stores the caller's bearer token behind an HTTP-only cookie
func (h *Handler) CreateSession(c *fiber.Ctx) error {
	var req CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Token == "" {
		return badRequest(c, "token is required")
	}

	claims, err := utils.ValidateToken(req.Token, h.cfg.JWTSecret)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid token",
		})
	}

	s, err := h.sessions.Create(c.UserContext(), claims.User(), req.Token, h.cfg.SessionTTL)
	if err != nil {
		h.log.Error("create session", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Could not create session",
		})
	}
	h.workspaces.Get(s.UserID, s.Token)

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    s.ID,
		Expires:  s.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: "Lax",
	})

	return ok(c, fiber.Map{
		"user_id":    s.UserID,
		"expires_at": s.ExpiresAt,
	})
}

// DeleteSession signs the caller out of the gateway
func (h *Handler) DeleteSession(c *fiber.Ctx) error {
	if sid := middleware.GetSessionID(c); sid != "" {
		if err := h.sessions.Delete(c.UserContext(), sid); err != nil {
			h.log.Error("delete session", zap.Error(err))
		}
	}
	h.workspaces.Remove(middleware.GetUserID(c))

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: "Lax",
	})

	return ok(c, fiber.Map{"message": "Signed out"})
}
