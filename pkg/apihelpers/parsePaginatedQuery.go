package apihelpers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DEFAULT_PAGE_SIZE = 10
	MAX_PAGE_SIZE     = 100
)

type PaginatedQuery struct {
	Page  int64
	Limit int64
}

func ParsePaginatedQueryFromCtx(c *gin.Context) (*PaginatedQuery, error) {
	page, err := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		return nil, fmt.Errorf("page must be at least 1")
	}

	limit, err := strconv.ParseInt(c.DefaultQuery("limit", strconv.Itoa(DEFAULT_PAGE_SIZE)), 10, 64)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		return nil, fmt.Errorf("limit must be at least 1")
	}
	if limit > MAX_PAGE_SIZE {
		limit = MAX_PAGE_SIZE
	}

	return &PaginatedQuery{
		Page:  page,
		Limit: limit,
	}, nil
}
