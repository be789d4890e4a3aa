package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

func ParsePagination(c *fiber.Ctx) PaginationParams {
	return NewPagination(parseIntDefault(c.Query("page"), 1), parseIntDefault(c.Query("limit"), DefaultPageSize))
}

// NewPagination normalizes a page/limit pair; offset is (page-1)*limit.
func NewPagination(page, limit int) PaginationParams {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

func ApplyPagination(db *gorm.DB, p PaginationParams) *gorm.DB {
	return db.Offset(p.Offset).Limit(p.Limit)
}

func parseIntDefault(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
