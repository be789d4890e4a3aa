package handlers

import (
	"github.com/Tarun62689/gdrive-backend/internal/events"
	"github.com/Tarun62689/gdrive-backend/internal/middleware"
	"github.com/Tarun62689/gdrive-backend/internal/models"
	"github.com/Tarun62689/gdrive-backend/internal/services"
	"github.com/Tarun62689/gdrive-backend/pkg/logger"
	"github.com/Tarun62689/gdrive-backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type FoldersHandler struct {
	itemOps
}

func NewFoldersHandler(hierarchy *services.HierarchyService, activity *services.ActivityService) *FoldersHandler {
	return &FoldersHandler{itemOps{Hierarchy: hierarchy, Activity: activity}}
}

type createFolderRequest struct {
	Name     string `json:"name"`
	ParentID string `json:"parentID"`
}

func (h *FoldersHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req createFolderRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	parentID, err := parseOptionalUUID(req.ParentID)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid parentID")
	}

	folder, err := h.Hierarchy.CreateFolder(c.UserContext(), currentUser.ID, req.Name, parentID)
	if err != nil {
		return respondError(c, "folder_create_failed", err)
	}

	logger.InfoWithUser(currentUser.ID.String(), "folder_created", map[string]interface{}{
		"folder_id": folder.ID.String(),
		"parent_id": folder.ParentID,
	})
	recordActivity(c, h.Activity, &currentUser.ID, events.FolderCreate, models.ResourceFolder, &folder.ID, map[string]interface{}{
		"name": folder.Name,
	})

	return utils.Success(c, fiber.StatusCreated, folder)
}

// Tree returns the caller's non-trashed folders nested under their roots.
func (h *FoldersHandler) Tree(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	data, err := h.Hierarchy.UserData(c.UserContext(), currentUser.ID)
	if err != nil {
		return respondError(c, "folder_tree_failed", err)
	}
	return utils.Success(c, fiber.StatusOK, data.Folders)
}

func (h *FoldersHandler) Get(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid folder id")
	}

	details, err := h.Hierarchy.FolderDetails(c.UserContext(), currentUser.ID, id)
	if err != nil {
		return respondError(c, "folder_get_failed", err)
	}
	return utils.Success(c, fiber.StatusOK, details)
}

func (h *FoldersHandler) Update(c *fiber.Ctx) error {
	return h.update(c, models.ResourceFolder)
}

func (h *FoldersHandler) Trash(c *fiber.Ctx) error {
	return h.setTrashed(c, models.ResourceFolder, true)
}

func (h *FoldersHandler) Restore(c *fiber.Ctx) error {
	return h.setTrashed(c, models.ResourceFolder, false)
}

func (h *FoldersHandler) Delete(c *fiber.Ctx) error {
	return h.remove(c, models.ResourceFolder)
}
