package controllers

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/blackbrainhq/blackbrain/app/repository"
	"github.com/blackbrainhq/blackbrain/internal/pkg/usercontext"
)

// HandleGetHistory returns the authenticated user's past questions,
// newest first.
func HandleGetHistory(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	skip := c.QueryInt("skip", 0)
	if skip < 0 {
		skip = 0
	}

	repo := repository.GetGlobalFactory().GetBrainRequestRepository()
	records, err := repo.ListByUser(userCtx.UserID, skip, limit)
	if err != nil {
		log.Printf("history: list failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load history"})
	}

	items := make([]fiber.Map, 0, len(records))
	for _, r := range records {
		var response interface{}
		if err := json.Unmarshal([]byte(r.ResponseJSON), &response); err != nil {
			response = r.ResponseJSON
		}
		items = append(items, fiber.Map{
			"id":         r.ID,
			"question":   r.Question,
			"mode":       r.Mode,
			"response":   response,
			"created_at": r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(fiber.Map{
		"items": items,
		"count": len(items),
	})
}

// HandleClearHistory deletes all of the user's stored questions.
func HandleClearHistory(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	repo := repository.GetGlobalFactory().GetBrainRequestRepository()
	deleted, err := repo.DeleteByUser(userCtx.UserID)
	if err != nil {
		log.Printf("history: clear failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to clear history"})
	}

	return c.JSON(fiber.Map{
		"deleted": deleted,
	})
}
