package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/timmy/promptbay/internal/service"
)

// listQuery reads q, tool, category, sort and limit from the query string.
// An unparsable limit is treated as no limit.
func listQuery(c *gin.Context) service.ListQuery {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 0 {
		limit = 0
	}
	return service.ListQuery{
		Search:   c.Query("q"),
		Tool:     c.Query("tool"),
		Category: c.Query("category"),
		Sort:     c.Query("sort"),
		Limit:    limit,
	}
}
