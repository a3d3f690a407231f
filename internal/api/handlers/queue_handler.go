package handlers

import (
	"crypto/subtle"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	config "github.com/Rana-Hassan7272/MultiPost-Content-Studio/configs"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/queue"
)

// QueueHandler exposes the manual queue trigger used by external cron
// callers. It authenticates with the shared service secret, never user
// credentials.
type QueueHandler struct {
	p   *queue.Processor
	cfg config.Config
}

func NewQueueHandler(cfg config.Config, p *queue.Processor) *QueueHandler {
	return &QueueHandler{p: p, cfg: cfg}
}

func (h *QueueHandler) ProcessQueue(c *fiber.Ctx) error {
	if h.cfg.ServiceSecret == "" {
		slog.Error("service secret is not configured")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "queue trigger is not configured",
		})
	}

	secret := strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
	if secret == "" {
		secret = c.Get("X-Service-Secret")
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(h.cfg.ServiceSecret)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid service secret",
		})
	}

	summary, err := h.p.Run(c.Context())
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(summary)
}
