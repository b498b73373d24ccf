package handlers

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/caiots/vorp-friends/internal/models"
)

// currentUserID returns the authenticated user id set by the auth middleware
func currentUserID(c echo.Context) string {
	uid, _ := c.Get("userID").(string)
	return uid
}

// parsePagination reads page/limit query params with the given defaults,
// clamping limit to maxLimit
func parsePagination(c echo.Context, defaultLimit, maxLimit int64) (page, limit int64) {
	page, _ = strconv.ParseInt(c.QueryParam("page"), 10, 64)
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// newPagination builds the page metadata for a list response
func newPagination(page, limit, total int64) models.Pagination {
	totalPages := int((total + limit - 1) / limit)
	return models.Pagination{
		Page:       int(page),
		Limit:      int(limit),
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < int64(totalPages),
		HasPrev:    page > 1,
	}
}
