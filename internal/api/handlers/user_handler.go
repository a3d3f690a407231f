package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/service"
)

type UserHandler struct {
	s service.UserService
}

func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{s: service}
}

func (h *UserHandler) GetUserInfo(c *fiber.Ctx) error {
	userID := GetUserID(c)

	user, err := h.s.GetUserInfo(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to get user info",
		})
	}

	return c.Status(fiber.StatusOK).JSON(user)
}
