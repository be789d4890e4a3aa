package middleware

import (
	"errors"
	"strings"

	"github.com/Tarun62689/gdrive-backend/internal/models"
	"github.com/Tarun62689/gdrive-backend/internal/services"
	"github.com/Tarun62689/gdrive-backend/pkg/logger"
	"github.com/Tarun62689/gdrive-backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

const (
	currentUserKey = "currentUser"
	accessTokenKey = "accessToken"

	// AccessTokenCookie carries the session token for browser clients.
	AccessTokenCookie = "access_token"
)

type AuthMiddleware struct {
	Identity services.IdentityProvider
}

func NewAuthMiddleware(identity services.IdentityProvider) *AuthMiddleware {
	return &AuthMiddleware{Identity: identity}
}

// CORS allows credentials unless the origin list is a wildcard, which fiber
// refuses to combine with credentials.
func CORS(allowedOrigins []string) fiber.Handler {
	origins := strings.Join(allowedOrigins, ",")
	if origins == "" {
		origins = "*"
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowCredentials: !strings.Contains(origins, "*"),
		ExposeHeaders:    "X-Request-ID",
	})
}

// extractToken prefers the Authorization header and falls back to the cookie.
// ok is false when a header is present but malformed.
func extractToken(c *fiber.Ctx) (token string, ok bool) {
	if authHeader := c.Get("Authorization"); authHeader != "" {
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if tokenString == authHeader || tokenString == "" {
			return "", false
		}
		return tokenString, true
	}
	return c.Cookies(AccessTokenCookie), true
}

func (a *AuthMiddleware) RequireAuth(c *fiber.Ctx) error {
	tokenString, ok := extractToken(c)
	if !ok {
		logger.Warn("auth_invalid_format", map[string]interface{}{
			"ip":   c.IP(),
			"path": c.Path(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "invalid authorization format")
	}
	if tokenString == "" {
		logger.Warn("auth_missing_token", map[string]interface{}{
			"ip":   c.IP(),
			"path": c.Path(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "missing authorization token")
	}

	user, err := a.Identity.Verify(c.UserContext(), tokenString)
	if err != nil {
		if errors.Is(err, services.ErrDependency) {
			logger.Error("auth_verify_failed", err, map[string]interface{}{
				"ip":   c.IP(),
				"path": c.Path(),
			})
			return utils.Error(c, fiber.StatusInternalServerError, "failed verifying credentials")
		}
		logger.Warn("auth_token_rejected", map[string]interface{}{
			"ip":    c.IP(),
			"path":  c.Path(),
			"error": err.Error(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, services.Message(err))
	}

	setCurrentUser(c, user, tokenString)
	return c.Next()
}

func (a *AuthMiddleware) OptionalAuth(c *fiber.Ctx) error {
	tokenString, ok := extractToken(c)
	if !ok || tokenString == "" {
		return c.Next()
	}

	user, err := a.Identity.Verify(c.UserContext(), tokenString)
	if err != nil {
		return c.Next()
	}

	setCurrentUser(c, user, tokenString)
	return c.Next()
}

func setCurrentUser(c *fiber.Ctx, user *models.User, token string) {
	c.Locals(currentUserKey, user)
	c.Locals("userID", user.ID.String())
	c.Locals(accessTokenKey, token)
}

func GetCurrentUser(c *fiber.Ctx) *models.User {
	value := c.Locals(currentUserKey)
	if value == nil {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// GetAccessToken returns the token the current request authenticated with.
func GetAccessToken(c *fiber.Ctx) string {
	token, _ := c.Locals(accessTokenKey).(string)
	return token
}
