package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestGetPaginationParamsClampsInput(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/products?page=0&limit=500&order=sideways", nil)

	params := GetPaginationParams(c)
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 20, params.Limit)
	assert.Equal(t, "desc", params.Order)
}

func TestCreatePaginationResultRoundsPagesUp(t *testing.T) {
	result := CreatePaginationResult([]int{1, 2}, 41, PaginationParams{Page: 1, Limit: 20})
	assert.Equal(t, 3, result.TotalPages)
	assert.Equal(t, int64(41), result.Total)
}

func TestFingerprintDependsOnBody(t *testing.T) {
	a := Fingerprint("POST", "/api/bookings", []byte(`{"a":1}`))
	b := Fingerprint("POST", "/api/bookings", []byte(`{"a":2}`))
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, Fingerprint("POST", "/api/bookings", []byte(`{"a":1}`)))
	assert.Len(t, a, 64)
}

func TestGetPaginationParamsKeepsValidInput(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/products?page=3&limit=50&order=asc&sort=quantity", nil)

	params := GetPaginationParams(c)
	assert.Equal(t, 3, params.Page)
	assert.Equal(t, 50, params.Limit)
	assert.Equal(t, "asc", params.Order)
	assert.Equal(t, 100, params.Offset())
}
