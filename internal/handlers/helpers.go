package handlers

import (
	"errors"
	"strings"

	"github.com/Tarun62689/gdrive-backend/internal/middleware"
	"github.com/Tarun62689/gdrive-backend/internal/models"
	"github.com/Tarun62689/gdrive-backend/internal/services"
	"github.com/Tarun62689/gdrive-backend/pkg/logger"
	"github.com/Tarun62689/gdrive-backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func parseUUID(value string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(value))
}

// parseOptionalUUID treats an empty value as absent.
func parseOptionalUUID(value string) (*uuid.UUID, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	parsed, err := parseUUID(value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidArgument):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrDenied):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes the envelope for a service error. Dependency failures
// are logged with their cause and reported without it.
func respondError(c *fiber.Ctx, action string, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		details := map[string]interface{}{
			"path":       c.Path(),
			"request_id": middleware.GetRequestID(c),
		}
		if user := middleware.GetCurrentUser(c); user != nil {
			logger.ErrorWithUser(user.ID.String(), action, err, details)
		} else {
			logger.Error(action, err, details)
		}
	}
	return utils.Error(c, status, services.Message(err))
}

// recordActivity queues an activity row for the current request.
func recordActivity(c *fiber.Ctx, activity *services.ActivityService, userID *uuid.UUID, action string, resourceType models.ResourceType, resourceID *uuid.UUID, details map[string]interface{}) {
	if activity == nil {
		return
	}
	activity.LogAsync(services.ActivityEntry{
		UserID:       userID,
		Action:       action,
		ResourceType: string(resourceType),
		ResourceID:   resourceID,
		Details:      details,
		IPAddress:    c.IP(),
		RequestID:    middleware.GetRequestID(c),
	})
}
