package router

import (
	"github.com/blackbrainhq/blackbrain/app/controllers"
	"github.com/blackbrainhq/blackbrain/internal/pkg/middleware"
	"github.com/blackbrainhq/blackbrain/internal/pkg/plans"

	"github.com/gofiber/fiber/v2"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	catalog := plans.MustDefaultCatalog()

	// Initialize brain controller with gate and quota checker
	controllers.InitializeBrainController(catalog)

	// Initialize subscription controller with the billing service
	controllers.InitializeSubscriptionController(catalog)

	h.registerPublicRoutes(app)
	h.registerProtectedRoutes(app)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "blackbrain",
			"status":  "ok",
		})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	auth := app.Group("/auth")
	auth.Post("/signup", controllers.HandleSignup)
	auth.Post("/login", controllers.HandleLogin)

	// Plan catalog is public so the pricing page needs no login
	app.Get("/subscription/plans", func(c *fiber.Ctx) error {
		return controllers.GetSubscriptionController().HandleGetPlans(c)
	})
}

func (h HttpRouter) registerProtectedRoutes(app *fiber.App) {
	authRequired := middleware.JWTAuthMiddleware()

	app.Get("/auth/me", authRequired, controllers.HandleGetAccount)

	brain := app.Group("/brain", authRequired)
	brain.Post("/ask", func(c *fiber.Ctx) error {
		return controllers.GetBrainController().HandleAskBrain(c)
	})

	history := app.Group("/history", authRequired)
	history.Get("/", controllers.HandleGetHistory)
	history.Post("/clear", controllers.HandleClearHistory)

	// No group middleware here: /subscription/plans stays public, so auth
	// is attached per route.
	subscription := app.Group("/subscription")
	subscription.Post("/create-order", authRequired, func(c *fiber.Ctx) error {
		return controllers.GetSubscriptionController().HandleCreateOrder(c)
	})
	subscription.Post("/verify", authRequired, func(c *fiber.Ctx) error {
		return controllers.GetSubscriptionController().HandleVerifyPayment(c)
	})
	subscription.Get("/status", authRequired, func(c *fiber.Ctx) error {
		return controllers.GetSubscriptionController().HandleSubscriptionStatus(c)
	})
}
