package controllers

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/blackbrainhq/blackbrain/app/models"
	"github.com/blackbrainhq/blackbrain/app/repository"
	"github.com/blackbrainhq/blackbrain/internal/pkg/brain"
	"github.com/blackbrainhq/blackbrain/internal/pkg/entitlements"
	"github.com/blackbrainhq/blackbrain/internal/pkg/env"
	"github.com/blackbrainhq/blackbrain/internal/pkg/metrics/counter"
	"github.com/blackbrainhq/blackbrain/internal/pkg/plans"
	"github.com/blackbrainhq/blackbrain/internal/pkg/quota"
	"github.com/blackbrainhq/blackbrain/internal/pkg/usercontext"
)

// BrainController answers questions through the brain engine, guarded by
// the feature gate and the daily quota for metered plans.
type BrainController struct {
	gate     *entitlements.Gate
	checker  *quota.Checker
	requests repository.BrainRequestRepository
	limit    int
}

// NewBrainController creates a new brain controller with injected dependencies
func NewBrainController(gate *entitlements.Gate, checker *quota.Checker, requests repository.BrainRequestRepository, limit int) *BrainController {
	return &BrainController{
		gate:     gate,
		checker:  checker,
		requests: requests,
		limit:    limit,
	}
}

// Package level controller instance
var brainController *BrainController

// InitializeBrainController sets up the controller with global repositories
func InitializeBrainController(catalog *plans.Catalog) {
	requests := repository.GetGlobalFactory().GetBrainRequestRepository()
	limit := FreeDailyQuestionLimit()
	brainController = NewBrainController(
		entitlements.NewGate(catalog),
		quota.NewChecker(requests, catalog, limit),
		requests,
		limit,
	)
}

// GetBrainController returns the initialized controller instance
func GetBrainController() *BrainController {
	if brainController == nil {
		panic("brain controller not initialized - call InitializeBrainController first")
	}
	return brainController
}

// FreeDailyQuestionLimit reads the configured daily limit for the free tier.
func FreeDailyQuestionLimit() int {
	limit, err := strconv.Atoi(env.GetEnv("FREE_DAILY_QUESTION_LIMIT", "5"))
	if err != nil || limit <= 0 {
		limit = 5
	}
	return limit
}

type askRequest struct {
	Question string `json:"question" validate:"required,min=1"`
	Mode     string `json:"mode"`
}

// HandleAskBrain runs one question through the engine for the
// authenticated user.
func (bc *BrainController) HandleAskBrain(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	var req askRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}
	if req.Mode == "" {
		req.Mode = brain.ModeBasic
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Question is required"})
	}

	decision := bc.gate.Authorize(userCtx.Plan, req.Mode)
	if !decision.Allowed {
		message := "Upgrade your plan to access this feature"
		if decision.Reason == entitlements.ReasonUnknownPlan {
			message = "Invalid subscription plan"
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": message})
	}

	result, err := bc.checker.CheckAndAdmit(userCtx.UserID, userCtx.Plan)
	if err != nil {
		log.Printf("brain: quota check failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Quota check failed"})
	}
	if !result.Admitted {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":     "quota_exceeded",
			"message":   fmt.Sprintf("Daily free limit reached (%d). Upgrade to Pro or Ultra plan.", bc.limit),
			"resets_at": result.ResetsAt.UTC().Format(time.RFC3339),
		})
	}

	answer := brain.Generate(req.Question, req.Mode)

	responseJSON, err := json.Marshal(answer)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to encode response"})
	}

	// The request row is both the quota ledger and the history, so the
	// write has to land before the response goes out.
	record := &models.BrainRequest{
		UserID:       userCtx.UserID,
		Question:     req.Question,
		Mode:         req.Mode,
		ResponseJSON: string(responseJSON),
	}
	if err := bc.requests.Create(record); err != nil {
		log.Printf("brain: failed to persist request for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to record request"})
	}

	// Lifetime counter is best effort; it flushes to the users table in
	// the background.
	if err := counter.AddQuestion(userCtx.UserID); err != nil {
		log.Printf("brain: counter increment failed for user %d: %v", userCtx.UserID, err)
	}

	return c.JSON(fiber.Map{
		"mode":     req.Mode,
		"question": req.Question,
		"response": answer,
	})
}
