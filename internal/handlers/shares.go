package handlers

import (
	"time"

	"github.com/Tarun62689/gdrive-backend/internal/events"
	"github.com/Tarun62689/gdrive-backend/internal/middleware"
	"github.com/Tarun62689/gdrive-backend/internal/services"
	"github.com/Tarun62689/gdrive-backend/pkg/logger"
	"github.com/Tarun62689/gdrive-backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SharesHandler struct {
	Sharing  *services.SharingService
	Activity *services.ActivityService
}

func NewSharesHandler(sharing *services.SharingService, activity *services.ActivityService) *SharesHandler {
	return &SharesHandler{Sharing: sharing, Activity: activity}
}

type createShareRequest struct {
	ResourceType string     `json:"resourceType"`
	ResourceID   string     `json:"resourceID"`
	UserID       *uuid.UUID `json:"userID"`
	Email        string     `json:"email"`
	Token        bool       `json:"token"`
	Permission   string     `json:"permission"`
	ExpiresAt    *time.Time `json:"expiresAt"`
}

func (h *SharesHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req createShareRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	resourceID, err := parseUUID(req.ResourceID)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid resourceID")
	}

	result, err := h.Sharing.Grant(c.UserContext(), currentUser.ID, services.GrantRequest{
		ResourceType: req.ResourceType,
		ResourceID:   resourceID,
		UserID:       req.UserID,
		Email:        req.Email,
		Token:        req.Token,
		Permission:   req.Permission,
		ExpiresAt:    req.ExpiresAt,
	})
	if err != nil {
		if statusFor(err) == fiber.StatusForbidden {
			logger.WarnWithUser(currentUser.ID.String(), "permission_denied", map[string]interface{}{
				"action":      "share_grant",
				"resource_id": resourceID.String(),
			})
		}
		return respondError(c, "share_grant_failed", err)
	}

	details := map[string]interface{}{
		"permission": result.Grant.Permission.String(),
		"token":      result.Grant.IsToken(),
	}
	if result.Grant.GrantedToID != nil {
		details["granted_to"] = result.Grant.GrantedToID.String()
	}
	recordActivity(c, h.Activity, &currentUser.ID, events.ShareGrant, result.Grant.ResourceType, &result.Grant.ResourceID, details)

	return utils.Success(c, fiber.StatusCreated, result)
}

// List returns the grants the caller created or received, optionally
// filtered by ?resourceType=file|folder.
func (h *SharesHandler) List(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	grants, err := h.Sharing.ListForActor(c.UserContext(), c.Query("resourceType"), currentUser.ID)
	if err != nil {
		return respondError(c, "share_list_failed", err)
	}
	return utils.Success(c, fiber.StatusOK, grants)
}

func (h *SharesHandler) Delete(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	shareID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid share id")
	}

	grant, err := h.Sharing.Revoke(c.UserContext(), currentUser.ID, shareID)
	if err != nil {
		return respondError(c, "share_revoke_failed", err)
	}

	recordActivity(c, h.Activity, &currentUser.ID, events.ShareRevoke, grant.ResourceType, &grant.ResourceID, map[string]interface{}{
		"share_id": grant.ID.String(),
	})
	return utils.Message(c, fiber.StatusOK, "share revoked", nil)
}

// Public serves a share link to anyone holding the token.
func (h *SharesHandler) Public(c *fiber.Ctx) error {
	shared, err := h.Sharing.ResolveShared(c.UserContext(), c.Params("token"))
	if err != nil {
		return respondError(c, "share_resolve_failed", err)
	}
	return utils.Success(c, fiber.StatusOK, shared)
}

