package handlers

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	config "github.com/Rana-Hassan7272/MultiPost-Content-Studio/configs"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/models"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/service"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/pkg/utils"
)

type PlatformHandler struct {
	as  service.AccountService
	ig  service.InstagramService
	tt  service.TiktokService
	yt  service.YoutubeService
	cfg config.Config
}

func NewPlatformHandler(as service.AccountService, ig service.InstagramService, tt service.TiktokService, yt service.YoutubeService, cfg config.Config) *PlatformHandler {
	return &PlatformHandler{
		as:  as,
		ig:  ig,
		tt:  tt,
		yt:  yt,
		cfg: cfg,
	}
}

// ConnectAccount redirects to the provider consent page. The session
// token travels as the OAuth state so the callback can attribute the
// account without an active cookie.
func (h *PlatformHandler) ConnectAccount(c *fiber.Ctx) error {
	state := c.Query("state")
	if state == "" {
		state = c.Cookies(h.cfg.CookieName)
	}

	authURL, err := h.as.GetAuthURL(c.Params("platform"), state)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Redirect(authURL)
}

func (h *PlatformHandler) CallbackHandler(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")
	platform := c.Params("platform")

	claims, err := utils.ValidateToken(h.cfg.SecretKey, state)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to validate user",
		})
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to validate user",
		})
	}

	switch platform {
	case models.PlatformInstagram:
		err = h.ig.Callback(c.Context(), code, userID)
	case models.PlatformTiktok:
		err = h.tt.Callback(c.Context(), code, userID)
	case models.PlatformYoutube:
		err = h.yt.Callback(c.Context(), code, userID)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unsupported platform",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	redirectURL := fmt.Sprintf("%s/dashboard/accounts", h.cfg.FrontendURL)
	return c.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}

func (h *PlatformHandler) ListAccounts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	accountList, err := h.as.List(c.Context(), userID)
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch connected accounts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(accountList)
}

func (h *PlatformHandler) DeleteAccount(c *fiber.Ctx) error {
	userID := GetUserID(c)
	accountID := c.QueryInt("id", 0)

	err := h.as.Delete(c.Context(), userID, int64(accountID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "unable to delete connected account",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
