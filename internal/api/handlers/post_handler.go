package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"

	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/models"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/queue"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/service"
	"github.com/Rana-Hassan7272/MultiPost-Content-Studio/internal/transfer"
)

type PostHandler struct {
	s           service.PostService
	AsynqClient *asynq.Client
}

func NewPostHandler(service service.PostService, asynqClient *asynq.Client) *PostHandler {
	return &PostHandler{s: service, AsynqClient: asynqClient}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var creation transfer.PostCreation
	if err := c.BodyParser(&creation); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to parse request body",
		})
	}

	post, delay, err := h.s.Create(c.Context(), userID, &creation)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if post.Status == models.PostStatusScheduled {
		err = queue.EnqueuePost(h.AsynqClient, queue.SchedulePostPayload{PostID: post.ID}, delay)
		if err != nil {
			slog.Error(err.Error())
			// The periodic sweep still picks the post up; scheduling
			// is not lost with the task.
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "post created",
		"post":    post,
	})
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	if postID != 0 {
		post, platformPosts, err := h.s.Get(c.Context(), userID, int64(postID))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "unable to fetch post",
			})
		}

		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"post":           post,
			"platform_posts": platformPosts,
		})
	}

	posts, err := h.s.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to list posts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) UpdatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	var update transfer.PostUpdate
	if err := c.BodyParser(&update); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to parse request body",
		})
	}

	err := h.s.Update(c.Context(), userID, int64(postID), &update)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	err := h.s.Remove(c.Context(), userID, int64(postID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "unable to remove post",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
