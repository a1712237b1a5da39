// internal/utils/response.go
package utils

import (
	"net/http"

	"github.com/Mohit-R-04/FarmToMarket/internal/i18n"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope every endpoint replies with.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// errorKind pairs an error code with its status and the catalog key used
// when the caller passes no message.
type errorKind struct {
	status int
	code   string
	key    string
}

var (
	kindBadRequest        = errorKind{http.StatusBadRequest, "BAD_REQUEST", i18n.KeyValidationInvalid}
	kindUnauthorized      = errorKind{http.StatusUnauthorized, "UNAUTHORIZED", i18n.KeyAuthRequired}
	kindForbidden         = errorKind{http.StatusForbidden, "FORBIDDEN", i18n.KeyAccessDenied}
	kindConflict          = errorKind{http.StatusConflict, "CONFLICT", i18n.KeyConflict}
	kindDuplicateRequest  = errorKind{http.StatusConflict, "DUPLICATE_REQUEST", i18n.KeyDuplicateRequest}
	kindInvalidTransition = errorKind{http.StatusConflict, "INVALID_TRANSITION", i18n.KeyInvalidTransition}
	kindInternal          = errorKind{http.StatusInternalServerError, "INTERNAL_ERROR", i18n.KeyInternalError}
)

func respondKind(c *gin.Context, kind errorKind, message string, details interface{}) {
	if message == "" {
		message = i18n.T(GetLangFromContext(c), kind.key)
	}
	ErrorResponse(c, kind.status, kind.code, message, details)
}

func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

func SuccessResponseWithMeta(c *gin.Context, data interface{}, meta interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: meta})
}

func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

func ErrorResponse(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.JSON(statusCode, APIResponse{
		Error: &APIError{Code: code, Message: message, Details: details},
	})
}

func BadRequestResponse(c *gin.Context, message string, details interface{}) {
	if message == "" {
		message = i18n.T(GetLangFromContext(c), i18n.KeyValidationInvalid, "request")
	}
	respondKind(c, kindBadRequest, message, details)
}

func UnauthorizedResponse(c *gin.Context, message string) {
	respondKind(c, kindUnauthorized, message, nil)
}

func ForbiddenResponse(c *gin.Context, message string) {
	respondKind(c, kindForbidden, message, nil)
}

// NotFoundResponse looks up "<resource>.not_found" in the catalog.
func NotFoundResponse(c *gin.Context, resource string) {
	message := i18n.T(GetLangFromContext(c), resource+".not_found")
	ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", message, nil)
}

func ConflictResponse(c *gin.Context, message string) {
	respondKind(c, kindConflict, message, nil)
}

func DuplicateRequestResponse(c *gin.Context, message string) {
	respondKind(c, kindDuplicateRequest, message, nil)
}

func InvalidTransitionResponse(c *gin.Context, message string) {
	respondKind(c, kindInvalidTransition, message, nil)
}

func InternalErrorResponse(c *gin.Context, message string) {
	respondKind(c, kindInternal, message, nil)
}

func ValidationErrorResponse(c *gin.Context, errors []ValidationError) {
	message := i18n.T(GetLangFromContext(c), i18n.KeyValidationInvalid, "input")
	ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", message, errors)
}

func PaginatedResponse(c *gin.Context, result PaginationResult) {
	SetPaginationHeaders(c, result)
	SuccessResponseWithMeta(c, result.Data, gin.H{
		"pagination": gin.H{
			"page":        result.Page,
			"limit":       result.Limit,
			"total":       result.Total,
			"total_pages": result.TotalPages,
		},
	})
}

func contextString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func GetLangFromContext(c *gin.Context) string {
	if lang, ok := contextString(c, "lang"); ok {
		return lang
	}
	return "en"
}

func GetUserIDFromContext(c *gin.Context) (string, bool) {
	return contextString(c, "user_id")
}

func GetRoleFromContext(c *gin.Context) (string, bool) {
	return contextString(c, "role")
}
