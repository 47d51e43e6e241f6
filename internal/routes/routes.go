package routes

import (
	"zion/gateway/internal/handlers"
	"zion/gateway/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App, h *handlers.Handler, auth fiber.Handler) {
	// API v1 group
	api := app.Group("/api/v1")

	// Health check (public)
	api.Get("/health", h.Health)

	// Session routes
	api.Post("/session", middleware.StrictRateLimiter(), h.CreateSession)
	api.Delete("/session", auth, h.DeleteSession)

	// Feed routes (protected)
	feed := api.Group("/feed", auth)
	feed.Get("/", middleware.RelaxedRateLimiter(), h.GetFeed)
	feed.Post("/posts", middleware.ModerateRateLimiter(), h.CreatePost)
	feed.Post("/posts/:id/like", middleware.ModerateRateLimiter(), h.ToggleLike)
	feed.Delete("/posts/:id", middleware.ModerateRateLimiter(), h.DeletePost)
	feed.Post("/posts/:id/comments", middleware.ModerateRateLimiter(), h.AddComment)

	// Calendar routes (protected)
	calendar := api.Group("/calendar", auth, middleware.RelaxedRateLimiter())
	calendar.Get("/", h.GetCalendar)
	calendar.Get("/day/:date", h.GetCalendarDay)
	calendar.Get("/upcoming", h.GetUpcoming)

	// Chat routes (protected)
	chat := api.Group("/chat", auth)
	chat.Get("/groups", middleware.RelaxedRateLimiter(), h.GetChatGroups)
	chat.Get("/:groupId/messages", middleware.RelaxedRateLimiter(), h.GetMessages)
	chat.Post("/:groupId/messages", middleware.ModerateRateLimiter(), h.SendMessage)
	chat.Get("/:groupId/typing", h.GetTyping)

	// Wish list routes (protected)
	events := api.Group("/events", auth)
	events.Get("/:eventId/wishes", middleware.RelaxedRateLimiter(), h.GetWishList)
	events.Post("/:eventId/wishes/:index/toggle", middleware.ModerateRateLimiter(), h.ToggleWishClaim)

	// People routes (protected)
	people := api.Group("/people", auth)
	people.Get("/suggestions", middleware.RelaxedRateLimiter(), h.GetSuggestions)
	people.Delete("/suggestions/:id", h.DismissSuggestion)
	people.Get("/search", middleware.SearchRateLimiter(), h.SearchPeople)
	people.Post("/:id/follow", middleware.ModerateRateLimiter(), h.FollowPerson)
	people.Post("/:id/friend-request", middleware.ModerateRateLimiter(), h.SendFriendRequest)

	// Analytics (protected)
	api.Get("/analytics/:orgId", auth, middleware.RelaxedRateLimiter(), h.GetAnalytics)

	// WebSocket route (protected)
	api.Get("/ws", auth, h.WebSocketUpgrade, websocket.New(h.WebSocketHandler))

	// WebSocket stats (protected, for debugging)
	api.Get("/ws/stats", auth, h.GetWebSocketStats)
}
