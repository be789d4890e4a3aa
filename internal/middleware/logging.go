package middleware

import (
	"time"

	"github.com/Tarun62689/gdrive-backend/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

const RequestIDHeader = "X-Request-ID"

func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := c.Get(RequestIDHeader)
		if requestID == "" || len(requestID) > 36 {
			requestID = logger.GenerateRequestID()
		}
		c.Locals("requestID", requestID)
		c.Set(RequestIDHeader, requestID)

		err := c.Next()

		statusCode := c.Response().StatusCode()
		details := map[string]interface{}{
			"method":        c.Method(),
			"path":          c.Path(),
			"status_code":   statusCode,
			"latency_ms":    time.Since(start).Milliseconds(),
			"user_agent":    c.Get("User-Agent"),
			"ip":            c.IP(),
			"request_body":  logger.GetRequestBodySummary(c),
			"response_body": logger.GetResponseSizeSummary(c),
			"request_id":    requestID,
		}

		userID := logger.GetUserIDFromContext(c)
		switch {
		case statusCode >= 500 && userID != nil:
			logger.ErrorWithUser(*userID, "http_request", err, details)
		case statusCode >= 500:
			logger.Error("http_request", err, details)
		case statusCode >= 400 && userID != nil:
			logger.WarnWithUser(*userID, "http_request", details)
		case statusCode >= 400:
			logger.Warn("http_request", details)
		case userID != nil:
			logger.InfoWithUser(*userID, "http_request", details)
		default:
			logger.Info("http_request", details)
		}

		return err
	}
}

// SecurityLogger records denied and not-found responses separately so
// probing shows up without scanning every request line.
func SecurityLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		var reason string
		switch c.Response().StatusCode() {
		case fiber.StatusForbidden:
			reason = "access_denied"
		case fiber.StatusNotFound:
			reason = "not_found"
		default:
			return err
		}

		details := map[string]interface{}{
			"method": c.Method(),
			"path":   c.Path(),
			"ip":     c.IP(),
			"reason": reason,
		}
		if userID := logger.GetUserIDFromContext(c); userID != nil {
			logger.WarnWithUser(*userID, reason, details)
		} else {
			logger.Warn(reason+"_unauthenticated", details)
		}

		return err
	}
}

// GetRequestID returns the id assigned by RequestLogger, if any.
func GetRequestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestID").(string)
	return id
}
