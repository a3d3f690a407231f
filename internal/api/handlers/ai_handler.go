package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/service"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/transfer"
)

type AIHandler struct {
	s service.AIService
}

func NewAIHandler(service service.AIService) *AIHandler {
	return &AIHandler{s: service}
}

func (h *AIHandler) Generate(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var request transfer.GenerateRequest
	if err := c.BodyParser(&request); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to parse request body",
		})
	}

	result, err := h.s.Generate(c.Context(), userID, &request)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
