package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"github.com/blackbrainhq/blackbrain/internal/pkg/middleware"
)

// RegisterHandlers attaches the v1 routes to the given router group.
func RegisterHandlers(router fiber.Router, s *APIServer) {
	router.Get("/ping", s.GetPing)
	router.Get("/plans", s.GetPlans)

	authRequired := middleware.JWTAuthMiddleware()
	router.Get("/user/profile", authRequired, s.GetUserProfile)
	router.Post("/brain/ask", authRequired, s.PostBrainAsk)
	router.Get("/history", authRequired, s.GetHistory)
	router.Post("/subscription/create-order", authRequired, s.PostSubscriptionCreateOrder)
	router.Post("/subscription/verify", authRequired, s.PostSubscriptionVerify)
	router.Get("/subscription/status", authRequired, s.GetSubscriptionStatus)
}
