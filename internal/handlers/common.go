// internal/handlers/common.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Mohit-R-04/FarmToMarket/internal/i18n"
	"github.com/Mohit-R-04/FarmToMarket/internal/models"
	"github.com/Mohit-R-04/FarmToMarket/internal/services"
	"github.com/Mohit-R-04/FarmToMarket/internal/utils"
)

// actorFrom reads the identity set by the auth middleware. It writes a 401
// and returns false when there is none.
func actorFrom(c *gin.Context) (services.Actor, bool) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok || userID == "" {
		utils.UnauthorizedResponse(c, "")
		return services.Actor{}, false
	}
	role, _ := utils.GetRoleFromContext(c)
	return services.Actor{ID: userID, Role: models.Role(role)}, true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, name), nil)
		return uuid.Nil, false
	}
	return id, true
}

// uuidQuery parses an optional uuid query parameter. Malformed values are
// ignored.
func uuidQuery(c *gin.Context, name string) *uuid.UUID {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}
	return true
}

// respondError maps service errors onto the response envelope.
func respondError(c *gin.Context, err error) {
	var notFound *services.NotFoundError

	switch {
	case errors.As(err, &notFound):
		utils.NotFoundResponse(c, notFound.Resource)
	case errors.Is(err, services.ErrValidation):
		if details := utils.GetValidationErrors(err); len(details) > 0 {
			utils.ValidationErrorResponse(c, details)
			return
		}
		lang := utils.GetLangFromContext(c)
		utils.ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR",
			i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c, "")
	case errors.Is(err, services.ErrDuplicateRequest):
		utils.DuplicateRequestResponse(c, "")
	case errors.Is(err, services.ErrInvalidTransition):
		utils.InvalidTransitionResponse(c, "")
	case errors.Is(err, services.ErrConflict):
		utils.ConflictResponse(c, "")
	default:
		_ = c.Error(err)
		utils.InternalErrorResponse(c, "")
	}
}
