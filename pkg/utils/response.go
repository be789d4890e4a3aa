package utils

import "github.com/gofiber/fiber/v2"

func Success(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// Message is a success envelope carrying a human readable message alongside data.
func Message(c *fiber.Ctx, status int, message string, data interface{}) error {
	body := fiber.Map{
		"success": true,
		"message": message,
	}
	if data != nil {
		body["data"] = data
	}
	return c.Status(status).JSON(body)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func Paginated(c *fiber.Ctx, data interface{}, page, limit int, total int64) error {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    data,
		"pagination": fiber.Map{
			"page":       page,
			"limit":      limit,
			"total":      total,
			"totalPages": totalPages,
		},
	})
}
