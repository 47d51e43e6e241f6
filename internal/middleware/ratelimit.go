package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Policy is a named request budget per caller
type Policy struct {
	Name   string
	Max    int
	Window time.Duration
}

var (
	// Strict guards session creation
	Strict = Policy{Name: "strict", Max: 10, Window: 15 * time.Minute}
	// Moderate guards writes proxied upstream
	Moderate = Policy{Name: "moderate", Max: 30, Window: time.Minute}
	// Relaxed guards reads
	Relaxed = Policy{Name: "relaxed", Max: 100, Window: time.Minute}
	// Search allows one request per keystroke of a fast typist
	Search = Policy{Name: "search", Max: 300, Window: time.Minute}
)

// callerKey identifies the caller by user when authenticated, by IP otherwise
func callerKey(c *fiber.Ctx) string {
	if userID := GetUserID(c); userID != "" {
		return "user:" + userID
	}
	return "ip:" + c.IP()
}

// RateLimiter enforces p per caller
func RateLimiter(p Policy) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        p.Max,
		Expiration: p.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return p.Name + "|" + callerKey(c)
		},
		LimitReached: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(p.Window.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   "Too many requests, please try again later",
			})
		},
	})
}

// StrictRateLimiter applies the Strict policy
func StrictRateLimiter() fiber.Handler { return RateLimiter(Strict) }

// ModerateRateLimiter applies the Moderate policy
func ModerateRateLimiter() fiber.Handler { return RateLimiter(Moderate) }

// RelaxedRateLimiter applies the Relaxed policy
func RelaxedRateLimiter() fiber.Handler { return RateLimiter(Relaxed) }

// SearchRateLimiter applies the Search policy
func SearchRateLimiter() fiber.Handler { return RateLimiter(Search) }
