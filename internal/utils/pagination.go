// internal/utils/pagination.go
package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PaginationParams are the list options shared by every paginated endpoint:
// ?page=2&limit=50&sort=quantity&order=asc&search=tomato
type PaginationParams struct {
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
	Sort   string `json:"sort"`
	Order  string `json:"order"`
	Search string `json:"search"`
}

func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

type PaginationResult struct {
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"total_pages"`
	Data       interface{} `json:"data"`
}

func GetPaginationParams(c *gin.Context) PaginationParams {
	params := PaginationParams{
		Page:   1,
		Limit:  DefaultPageSize,
		Sort:   c.DefaultQuery("sort", "created_at"),
		Order:  "desc",
		Search: c.Query("search"),
	}

	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		params.Page = page
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 && limit <= MaxPageSize {
		params.Limit = limit
	}
	if c.Query("order") == "asc" {
		params.Order = "asc"
	}

	return params
}

// Paginate is a gorm scope applying the page window.
func Paginate(params PaginationParams) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset()).Limit(params.Limit)
	}
}

// SortBy is a gorm scope ordering by params.Sort when it is one of columns,
// falling back to created_at. The id tiebreaker keeps pages stable when many
// rows share a sort value.
func SortBy(params PaginationParams, columns ...string) func(*gorm.DB) *gorm.DB {
	column := "created_at"
	for _, allowed := range columns {
		if allowed == params.Sort {
			column = allowed
			break
		}
	}

	return func(db *gorm.DB) *gorm.DB {
		return db.Order(column + " " + params.Order).Order("id " + params.Order)
	}
}

func CreatePaginationResult(data interface{}, total int64, params PaginationParams) PaginationResult {
	var pages int
	if params.Limit > 0 {
		pages = int((total + int64(params.Limit) - 1) / int64(params.Limit))
	}

	return PaginationResult{
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: pages,
		Data:       data,
	}
}

func SetPaginationHeaders(c *gin.Context, result PaginationResult) {
	c.Header("X-Total-Count", strconv.FormatInt(result.Total, 10))
	c.Header("X-Total-Pages", strconv.Itoa(result.TotalPages))
}
