package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/models"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/service"
)

type VoiceProfileHandler struct {
	s service.VoiceProfileService
}

func NewVoiceProfileHandler(service service.VoiceProfileService) *VoiceProfileHandler {
	return &VoiceProfileHandler{s: service}
}

func (h *VoiceProfileHandler) CreateProfile(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var profile models.VoiceProfile
	if err := c.BodyParser(&profile); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to parse request body",
		})
	}

	id, err := h.s.Create(c.Context(), userID, &profile)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"id": id})
}

func (h *VoiceProfileHandler) ListProfiles(c *fiber.Ctx) error {
	userID := GetUserID(c)
	profileID := c.QueryInt("id", 0)

	if profileID != 0 {
		profile, err := h.s.Get(c.Context(), userID, int64(profileID))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "unable to fetch voice profile",
			})
		}
		return c.Status(fiber.StatusOK).JSON(profile)
	}

	profiles, err := h.s.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to list voice profiles",
		})
	}

	return c.Status(fiber.StatusOK).JSON(profiles)
}

func (h *VoiceProfileHandler) RemoveProfile(c *fiber.Ctx) error {
	userID := GetUserID(c)
	profileID := c.QueryInt("id", 0)

	err := h.s.Remove(c.Context(), userID, int64(profileID))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to remove voice profile",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
