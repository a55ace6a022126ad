package controllers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/blackbrainhq/blackbrain/app/models"
	"github.com/blackbrainhq/blackbrain/app/repository"
	"github.com/blackbrainhq/blackbrain/internal/pkg/env"
	"github.com/blackbrainhq/blackbrain/internal/pkg/middleware"
	"github.com/blackbrainhq/blackbrain/internal/pkg/security"
	"github.com/blackbrainhq/blackbrain/internal/pkg/usercontext"
)

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// HandleSignup registers a new account on the free plan and returns a
// bearer token.
func HandleSignup(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Email and password (min 6 chars) are required"})
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	if _, err := repo.GetByEmail(req.Email); err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Email already registered"})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("signup: email lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Registration failed"})
	}

	user, err := models.CreateUser(req.Email, req.Password)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid email or password"})
	}
	if err := repo.Create(user); err != nil {
		log.Printf("signup: user create failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Registration failed"})
	}

	return issueToken(c, user.ID)
}

// HandleLogin authenticates email + password and returns a bearer token.
func HandleLogin(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Email and password are required"})
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid email or password"})
		}
		log.Printf("login: email lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Login failed"})
	}

	if !user.CheckPassword(req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid email or password"})
	}

	if err := repo.UpdateLastLogin(user.ID, time.Now()); err != nil {
		log.Printf("login: failed to update last login for user %d: %v", user.ID, err)
	}

	return issueToken(c, user.ID)
}

// HandleGetAccount returns account information for the authenticated user.
func HandleGetAccount(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load user"})
	}

	now := time.Now()
	return c.JSON(fiber.Map{
		"id":             user.ID,
		"email":          user.Email,
		"status":         user.Status,
		"plan":           user.EffectivePlanCode(now),
		"plan_status":    user.EffectivePlanStatus(now),
		"plan_expires":   formatTimePtr(user.PlanExpiresAt),
		"question_count": user.QuestionCount,
		"created_at":     user.CreatedAt.UTC().Format(time.RFC3339),
		"last_login_at":  formatTimePtr(user.LastLoginAt),
	})
}

func issueToken(c *fiber.Ctx, userID uint) error {
	token, err := security.GenerateAccessToken(userID, env.GetEnv("JWT_SECRET_KEY", ""), middleware.AccessTokenTTL())
	if err != nil {
		log.Printf("token generation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Could not issue token"})
	}
	return c.JSON(fiber.Map{
		"access_token": token,
		"token_type":   "bearer",
	})
}
