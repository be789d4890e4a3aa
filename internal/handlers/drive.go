package handlers

import (
	"strings"

	"github.com/Tarun62689/gdrive-backend/internal/middleware"
	"github.com/Tarun62689/gdrive-backend/internal/services"
	"github.com/Tarun62689/gdrive-backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type DriveHandler struct {
	Hierarchy *services.HierarchyService
}

func NewDriveHandler(hierarchy *services.HierarchyService) *DriveHandler {
	return &DriveHandler{Hierarchy: hierarchy}
}

// UserData returns every non-trashed file together with the folder tree.
func (h *DriveHandler) UserData(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	data, err := h.Hierarchy.UserData(c.UserContext(), currentUser.ID)
	if err != nil {
		return respondError(c, "drive_data_failed", err)
	}
	return utils.Success(c, fiber.StatusOK, data)
}

func (h *DriveHandler) MyDrive(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	drive, err := h.Hierarchy.MyDrive(c.UserContext(), currentUser.ID)
	if err != nil {
		return respondError(c, "my_drive_failed", err)
	}
	return utils.Success(c, fiber.StatusOK, drive)
}

func (h *DriveHandler) Trash(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	trash, err := h.Hierarchy.ListTrash(c.UserContext(), currentUser.ID)
	if err != nil {
		return respondError(c, "trash_list_failed", err)
	}
	return utils.Success(c, fiber.StatusOK, trash)
}

// Search accepts the query as either q or query.
func (h *DriveHandler) Search(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		query = strings.TrimSpace(c.Query("query"))
	}

	result, err := h.Hierarchy.Search(c.UserContext(), currentUser.ID, query, utils.ParsePagination(c))
	if err != nil {
		return respondError(c, "search_failed", err)
	}
	return utils.Success(c, fiber.StatusOK, result)
}
