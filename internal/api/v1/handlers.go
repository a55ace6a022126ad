package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to existing controllers to keep behavior consistent
	"github.com/blackbrainhq/blackbrain/app/controllers"
)

// APIServer implements the versioned JSON API
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// Pong is the ping response body
type Pong struct {
	Ping string `json:"ping"`
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// GetUserProfile returns account information for the authenticated user.
// Security is enforced via the JWT middleware attached in the router.
func (s *APIServer) GetUserProfile(c *fiber.Ctx) error {
	return controllers.HandleGetAccount(c)
}

// GetPlans returns the public plan catalog.
func (s *APIServer) GetPlans(c *fiber.Ctx) error {
	return controllers.GetSubscriptionController().HandleGetPlans(c)
}

// PostBrainAsk runs one question through the brain engine.
func (s *APIServer) PostBrainAsk(c *fiber.Ctx) error {
	return controllers.GetBrainController().HandleAskBrain(c)
}

// GetHistory lists the user's past questions.
func (s *APIServer) GetHistory(c *fiber.Ctx) error {
	return controllers.HandleGetHistory(c)
}

// PostSubscriptionCreateOrder starts a checkout for a billable plan.
func (s *APIServer) PostSubscriptionCreateOrder(c *fiber.Ctx) error {
	return controllers.GetSubscriptionController().HandleCreateOrder(c)
}

// PostSubscriptionVerify verifies a payment and activates the subscription.
func (s *APIServer) PostSubscriptionVerify(c *fiber.Ctx) error {
	return controllers.GetSubscriptionController().HandleVerifyPayment(c)
}

// GetSubscriptionStatus returns the current subscription state.
func (s *APIServer) GetSubscriptionStatus(c *fiber.Ctx) error {
	return controllers.GetSubscriptionController().HandleSubscriptionStatus(c)
}
