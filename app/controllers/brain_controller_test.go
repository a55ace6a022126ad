package controllers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreeDailyQuestionLimit(t *testing.T) {
	t.Setenv("FREE_DAILY_QUESTION_LIMIT", "")
	assert.Equal(t, 5, FreeDailyQuestionLimit())

	t.Setenv("FREE_DAILY_QUESTION_LIMIT", "10")
	assert.Equal(t, 10, FreeDailyQuestionLimit())

	t.Setenv("FREE_DAILY_QUESTION_LIMIT", "not-a-number")
	assert.Equal(t, 5, FreeDailyQuestionLimit())

	t.Setenv("FREE_DAILY_QUESTION_LIMIT", "-3")
	assert.Equal(t, 5, FreeDailyQuestionLimit())
}

func TestHandleAskBrainRequiresAuth(t *testing.T) {
	// No user context in Locals means the request never got through the
	// auth middleware; the handler answers 401 before touching any dep.
	bc := &BrainController{}

	app := fiber.New()
	app.Post("/brain/ask", bc.HandleAskBrain)

	req := httptest.NewRequest("POST", "/brain/ask", strings.NewReader(`{"question":"hi"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestHandleGetHistoryRequiresAuth(t *testing.T) {
	app := fiber.New()
	app.Get("/history", HandleGetHistory)

	resp, err := app.Test(httptest.NewRequest("GET", "/history", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestHandleClearHistoryRequiresAuth(t *testing.T) {
	app := fiber.New()
	app.Post("/history/clear", HandleClearHistory)

	resp, err := app.Test(httptest.NewRequest("POST", "/history/clear", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
