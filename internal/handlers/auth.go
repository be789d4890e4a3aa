package handlers

import (
	"errors"
	"time"

	"github.com/Tarun62689/gdrive-backend/internal/events"
	"github.com/Tarun62689/gdrive-backend/internal/middleware"
	"github.com/Tarun62689/gdrive-backend/internal/services"
	"github.com/Tarun62689/gdrive-backend/pkg/logger"
	"github.com/Tarun62689/gdrive-backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Identity     services.IdentityProvider
	Hierarchy    *services.HierarchyService
	Activity     *services.ActivityService
	SecureCookie bool
}

func NewAuthHandler(identity services.IdentityProvider, hierarchy *services.HierarchyService, activity *services.ActivityService, secureCookie bool) *AuthHandler {
	return &AuthHandler{Identity: identity, Hierarchy: hierarchy, Activity: activity, SecureCookie: secureCookie}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup creates the account and provisions its drive. A drive that only
// partially provisioned does not fail the signup; the missing default
// folders are recreated on the next login.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.Identity.SignUp(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, "signup_failed", err)
	}

	root, err := h.Hierarchy.ProvisionDrive(c.UserContext(), user.ID)
	if err != nil {
		if root == nil || !errors.Is(err, services.ErrDefaultFoldersIncomplete) {
			return respondError(c, "drive_provision_failed", err)
		}
		logger.WarnWithUser(user.ID.String(), "default_folders_incomplete", map[string]interface{}{
			"root_id": root.ID.String(),
			"error":   err.Error(),
		})
	}

	logger.Info("user_registered", map[string]interface{}{
		"user_id": user.ID.String(),
		"email":   user.Email,
	})
	recordActivity(c, h.Activity, &user.ID, events.UserSignup, "user", &user.ID, map[string]interface{}{
		"email": user.Email,
	})

	return utils.Success(c, fiber.StatusCreated, fiber.Map{"user": user, "rootFolder": root})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	token, user, err := h.Identity.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrDenied) {
			logger.Warn("login_failed", map[string]interface{}{
				"email": req.Email,
				"ip":    c.IP(),
			})
			return utils.Error(c, fiber.StatusUnauthorized, services.Message(err))
		}
		return respondError(c, "login_failed", err)
	}

	if err := h.Hierarchy.EnsureDefaultFolders(c.UserContext(), user.ID); err != nil {
		if _, rootErr := h.Hierarchy.ProvisionDrive(c.UserContext(), user.ID); rootErr != nil {
			logger.WarnWithUser(user.ID.String(), "drive_repair_failed", map[string]interface{}{
				"error": rootErr.Error(),
			})
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(utils.TokenTTL()),
		HTTPOnly: true,
		Secure:   h.SecureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	logger.Info("user_login", map[string]interface{}{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"ip":      c.IP(),
	})
	recordActivity(c, h.Activity, &user.ID, events.UserLogin, "user", &user.ID, nil)

	return utils.Success(c, fiber.StatusOK, fiber.Map{"token": token, "user": user})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.Identity.SignOut(c.UserContext(), middleware.GetAccessToken(c)); err != nil {
		return respondError(c, "logout_failed", err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.SecureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	recordActivity(c, h.Activity, &currentUser.ID, events.UserLogout, "user", &currentUser.ID, nil)
	return utils.Message(c, fiber.StatusOK, "logged out", nil)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return utils.Success(c, fiber.StatusOK, currentUser)
}
