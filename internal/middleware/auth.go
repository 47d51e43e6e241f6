package middleware

import (
	"errors"
	"strings"

	"zion/gateway/internal/session"
	"zion/gateway/internal/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SessionCookie carries the gateway session id
const SessionCookie = "zion_session"

// Auth resolves the caller's bearer token from the Authorization header or the
// session cookie, validates it and stores user id and token in Locals
func Auth(secret string, store session.Store, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))

		if token == "" {
			sid := c.Cookies(SessionCookie)
			if sid == "" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"success": false,
					"error":   "Unauthorized - No token provided",
				})
			}

			s, err := store.Get(c.UserContext(), sid)
			if errors.Is(err, session.ErrNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"success": false,
					"error":   "Unauthorized - Session expired",
				})
			}
			if err != nil {
				log.Error("load session", zap.Error(err))
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"success": false,
					"error":   "Session store unavailable",
				})
			}
			token = s.Token
			c.Locals("sessionID", s.ID)
		}

		claims, err := utils.ValidateToken(token, secret)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Unauthorized - Invalid token",
			})
		}

		// Store user info in context
		c.Locals("userID", claims.User())
		c.Locals("email", claims.Email)
		c.Locals("token", token)

		return c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// GetUserID gets user ID from context
func GetUserID(c *fiber.Ctx) string {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return ""
	}
	return userID
}

// GetToken gets the upstream bearer token from context
func GetToken(c *fiber.Ctx) string {
	token, ok := c.Locals("token").(string)
	if !ok {
		return ""
	}
	return token
}

// GetSessionID gets the session id when the caller authenticated by cookie
func GetSessionID(c *fiber.Ctx) string {
	sid, ok := c.Locals("sessionID").(string)
	if !ok {
		return ""
	}
	return sid
}
