package handlers

import (
	"github.com/Tarun62689/gdrive-backend/internal/events"
	"github.com/Tarun62689/gdrive-backend/internal/middleware"
	"github.com/Tarun62689/gdrive-backend/internal/models"
	"github.com/Tarun62689/gdrive-backend/internal/services"
	"github.com/Tarun62689/gdrive-backend/pkg/logger"
	"github.com/Tarun62689/gdrive-backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// itemActions names the activity actions for one resource type.
type itemActions struct {
	rename, move, trash, restore, remove string
}

var actionsByType = map[models.ResourceType]itemActions{
	models.ResourceFolder: {
		rename:  events.FolderRename,
		move:    events.FolderMove,
		trash:   events.FolderTrash,
		restore: events.FolderRestore,
		remove:  events.FolderDelete,
	},
	models.ResourceFile: {
		rename:  events.FileRename,
		move:    events.FileMove,
		trash:   events.FileTrash,
		restore: events.FileRestore,
		remove:  events.FileDelete,
	},
}

// itemOps carries the operations folders and files share: rename, move,
// trash, restore and permanent delete.
type itemOps struct {
	Hierarchy *services.HierarchyService
	Activity  *services.ActivityService
}

type updateItemRequest struct {
	Name     *string `json:"name"`
	ParentID *string `json:"parentID"`
}

func (o itemOps) update(c *fiber.Ctx, resourceType models.ResourceType) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid "+string(resourceType)+" id")
	}

	var req updateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Name == nil && req.ParentID == nil {
		return utils.Error(c, fiber.StatusBadRequest, "name or parentID is required")
	}

	var parentID *uuid.UUID
	if req.ParentID != nil {
		parsed, err := parseUUID(*req.ParentID)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid parentID")
		}
		parentID = &parsed
	}

	// A rejected move leaves the name untouched as well.
	res, err := o.Hierarchy.Update(c.UserContext(), currentUser.ID, resourceType, id, req.Name, parentID)
	if err != nil {
		return respondError(c, string(resourceType)+"_update_failed", err)
	}

	actions := actionsByType[resourceType]
	if req.Name != nil {
		recordActivity(c, o.Activity, &currentUser.ID, actions.rename, resourceType, &id, map[string]interface{}{
			"name": res.Name(),
		})
	}
	if parentID != nil {
		recordActivity(c, o.Activity, &currentUser.ID, actions.move, resourceType, &id, map[string]interface{}{
			"parent_id": parentID.String(),
		})
	}

	return utils.Success(c, fiber.StatusOK, resourceBody(res))
}

func (o itemOps) setTrashed(c *fiber.Ctx, resourceType models.ResourceType, trashed bool) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid "+string(resourceType)+" id")
	}

	actions := actionsByType[resourceType]
	var res services.Resource
	action := actions.trash
	if trashed {
		res, err = o.Hierarchy.Trash(c.UserContext(), currentUser.ID, resourceType, id)
	} else {
		action = actions.restore
		res, err = o.Hierarchy.Restore(c.UserContext(), currentUser.ID, resourceType, id)
	}
	if err != nil {
		return respondError(c, string(resourceType)+"_trash_update_failed", err)
	}

	recordActivity(c, o.Activity, &currentUser.ID, action, resourceType, &id, map[string]interface{}{
		"name": res.Name(),
	})
	return utils.Success(c, fiber.StatusOK, resourceBody(res))
}

func (o itemOps) remove(c *fiber.Ctx, resourceType models.ResourceType) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid "+string(resourceType)+" id")
	}

	if err := o.Hierarchy.Delete(c.UserContext(), currentUser.ID, resourceType, id); err != nil {
		return respondError(c, string(resourceType)+"_delete_failed", err)
	}

	logger.InfoWithUser(currentUser.ID.String(), string(resourceType)+"_deleted", map[string]interface{}{
		"resource_id": id.String(),
	})
	recordActivity(c, o.Activity, &currentUser.ID, actionsByType[resourceType].remove, resourceType, &id, nil)

	return utils.Message(c, fiber.StatusOK, string(resourceType)+" deleted", nil)
}

func resourceBody(res services.Resource) interface{} {
	if res.Folder != nil {
		return res.Folder
	}
	return res.File
}
