package handlers

import (
	"github.com/Tarun62689/gdrive-backend/internal/middleware"
	"github.com/Tarun62689/gdrive-backend/internal/services"
	"github.com/Tarun62689/gdrive-backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type ActivityHandler struct {
	Activity *services.ActivityService
}

func NewActivityHandler(activity *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{Activity: activity}
}

func (h *ActivityHandler) List(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	p := utils.ParsePagination(c)
	entries, total, err := h.Activity.List(c.UserContext(), currentUser.ID, p)
	if err != nil {
		return respondError(c, "activity_list_failed", err)
	}
	return utils.Paginated(c, entries, p.Page, p.Limit, total)
}

func Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
}
