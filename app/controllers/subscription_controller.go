package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/blackbrainhq/blackbrain/internal/pkg/billing"
	"github.com/blackbrainhq/blackbrain/internal/pkg/cache"
	"github.com/blackbrainhq/blackbrain/internal/pkg/database"
	"github.com/blackbrainhq/blackbrain/internal/pkg/env"
	"github.com/blackbrainhq/blackbrain/internal/pkg/plans"
	"github.com/blackbrainhq/blackbrain/internal/pkg/usercontext"
)

const plansCacheKey = "cache:plans:v1"

// SubscriptionController exposes the plan catalog and drives the payment
// order lifecycle through the billing service.
type SubscriptionController struct {
	service *billing.Service
	catalog *plans.Catalog
}

// NewSubscriptionController creates a new subscription controller with injected dependencies
func NewSubscriptionController(service *billing.Service, catalog *plans.Catalog) *SubscriptionController {
	return &SubscriptionController{
		service: service,
		catalog: catalog,
	}
}

// Package level controller instance
var subscriptionController *SubscriptionController

// InitializeSubscriptionController sets up the controller with the global database
func InitializeSubscriptionController(catalog *plans.Catalog) {
	verifier := billing.NewVerifier(env.GetEnv("RAZORPAY_KEY_SECRET", ""))
	keyID := env.GetEnv("RAZORPAY_KEY_ID", "")
	service := billing.NewServiceFromDB(database.GetDB(), catalog, verifier, keyID)
	subscriptionController = NewSubscriptionController(service, catalog)
}

// GetSubscriptionController returns the initialized controller instance
func GetSubscriptionController() *SubscriptionController {
	if subscriptionController == nil {
		panic("subscription controller not initialized - call InitializeSubscriptionController first")
	}
	return subscriptionController
}

// HandleGetPlans returns the plan catalog. Public, cached in Redis since
// the catalog only changes on deploy.
func (sc *SubscriptionController) HandleGetPlans(c *fiber.Ctx) error {
	if cached, err := cache.Get(plansCacheKey); err == nil && cached != "" {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(cached)
	}

	list := sc.catalog.List()
	items := make([]fiber.Map, 0, len(list))
	for _, plan := range list {
		items = append(items, fiber.Map{
			"code":          plan.Code,
			"name":          plan.Name,
			"price":         plan.PriceMinor,
			"currency":      "INR",
			"duration_days": int(plan.Duration / (24 * time.Hour)),
			"features":      plan.Features,
		})
	}
	body := fiber.Map{"plans": items}

	if encoded, err := json.Marshal(body); err == nil {
		if err := cache.Set(plansCacheKey, string(encoded), time.Hour); err != nil {
			log.Printf("plans: cache write failed: %v", err)
		}
	}

	return c.JSON(body)
}

type createOrderRequest struct {
	Plan string `json:"plan" validate:"required"`
}

// HandleCreateOrder records a payment intention for a billable plan and
// returns the checkout data for the provider flow.
func (sc *SubscriptionController) HandleCreateOrder(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Plan is required"})
	}

	order, err := sc.service.CreateOrder(c.Context(), userCtx.UserID, req.Plan)
	if err != nil {
		if errors.Is(err, billing.ErrUnknownPlan) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid subscription plan"})
		}
		log.Printf("subscription: order creation failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Could not create order"})
	}

	return c.JSON(order)
}

type verifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
	Plan      string `json:"plan" validate:"required"`
}

// HandleVerifyPayment verifies the provider signature and activates the
// subscription. Safe to call repeatedly for the same order; replays return
// the original result without extending anything.
func (sc *SubscriptionController) HandleVerifyPayment(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	var req verifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Order, payment, signature and plan are required"})
	}

	result, err := sc.service.Activate(c.Context(), billing.ActivationInput{
		UserID:     userCtx.UserID,
		OrderID:    req.OrderID,
		PlanCode:   req.Plan,
		PaymentRef: req.PaymentID,
		Signature:  req.Signature,
	})
	if err != nil {
		if errors.Is(err, billing.ErrUnknownPlan) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid subscription plan"})
		}
		if errors.Is(err, billing.ErrDenied) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Payment verification failed"})
		}
		log.Printf("subscription: activation failed for order %s: %v", req.OrderID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Payment verification failed"})
	}

	return c.JSON(result)
}

// HandleSubscriptionStatus returns the user's current subscription with
// lazy expiry applied.
func (sc *SubscriptionController) HandleSubscriptionStatus(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	status, err := sc.service.Status(c.Context(), userCtx.UserID)
	if err != nil {
		log.Printf("subscription: status read failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load subscription"})
	}

	return c.JSON(status)
}
