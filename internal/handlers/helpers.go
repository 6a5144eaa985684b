package handlers

import (
	"math"
	"strconv"

	"github.com/anonto42/odin-book/backend/internal/apperr"
	"github.com/anonto42/odin-book/backend/internal/middleware"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errNotSelf = apperr.Forbidden("you can only modify your own account")

// objectIDParam parses the path parameter name as an ObjectID. A malformed id
// cannot match any document, so it is reported as not found.
func objectIDParam(c echo.Context, name, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound(what + " not found")
	}
	return id, nil
}

// selfParam returns the caller's id after checking it matches the :id path parameter.
func selfParam(c echo.Context) (primitive.ObjectID, error) {
	callerID, err := middleware.UserID(c)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if c.Param("id") != callerID.Hex() {
		return primitive.NilObjectID, errNotSelf
	}
	return callerID, nil
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}

func ok(c echo.Context, status int, data echo.Map) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

type pageParams struct {
	page  int
	limit int // 0 means everything
}

func parsePage(c echo.Context, defaultLimit, maxLimit int) pageParams {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return pageParams{page: page, limit: limit}
}

// bounds returns the slice window of this page over total items.
func (p pageParams) bounds(total int) (int, int) {
	if p.limit == 0 {
		return 0, total
	}
	start := (p.page - 1) * p.limit
	if start > total {
		start = total
	}
	end := start + p.limit
	if end > total {
		end = total
	}
	return start, end
}

func (p pageParams) meta(total int64) echo.Map {
	limit := p.limit
	if limit == 0 {
		limit = int(total)
	}
	totalPages := 0
	if limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return echo.Map{
		"currentPage":     p.page,
		"totalPages":      totalPages,
		"totalItems":      total,
		"itemsPerPage":    limit,
		"hasNextPage":     p.page < totalPages,
		"hasPreviousPage": p.page > 1,
	}
}
