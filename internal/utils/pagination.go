package utils

import (
	"strconv"

	"github.com/astracore/crm-backend/internal/constants"
	"github.com/gin-gonic/gin"
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Skip  int
	Limit int
}

// GetPaginationParams extracts and validates skip/limit parameters from the request
func GetPaginationParams(c *gin.Context) PaginationParams {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultPageLimit)))

	if skip < 0 {
		skip = 0
	}
	if limit < 1 || limit > constants.MaxPageLimit {
		limit = constants.DefaultPageLimit
	}

	return PaginationParams{
		Skip:  skip,
		Limit: limit,
	}
}
