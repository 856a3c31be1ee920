package public

import (
	"strconv"

	"coordination-api/coordination/keeper"

	"github.com/labstack/echo/v4"
)

// parsePagination reads limit/offset query params, falling back to the
// keeper defaults. Unparseable values behave like absent ones.
func parsePagination(ctx echo.Context) (limit, offset int64) {
	limit = keeper.DefaultPageSize
	if v, err := strconv.ParseInt(ctx.QueryParam("limit"), 10, 64); err == nil && v > 0 {
		limit = v
	}
	if limit > keeper.MaxPageSize {
		limit = keeper.MaxPageSize
	}
	if v, err := strconv.ParseInt(ctx.QueryParam("offset"), 10, 64); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

func parseInt64Param(ctx echo.Context, name string) int64 {
	v, err := strconv.ParseInt(ctx.QueryParam(name), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
