// internal/handlers/user.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Mohit-R-04/FarmToMarket/internal/i18n"
	"github.com/Mohit-R-04/FarmToMarket/internal/services"
	"github.com/Mohit-R-04/FarmToMarket/internal/utils"
)

type UserHandler struct {
	userService    *services.UserService
	revenueService *services.RevenueService
}

func NewUserHandler(userService *services.UserService, revenueService *services.RevenueService) *UserHandler {
	return &UserHandler{
		userService:    userService,
		revenueService: revenueService,
	}
}

// GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, user)
}

// GET /roles/:role
func (h *UserHandler) ListByRole(c *gin.Context) {
	users, err := h.userService.ListByRole(c.Request.Context(), c.Param("role"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, users)
}

// GET /roles/user/:userId
func (h *UserHandler) GetUserRole(c *gin.Context) {
	info, err := h.userService.GetRole(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, info)
}

// POST /roles/:role
func (h *UserHandler) SaveRole(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req services.SaveRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.SaveRole(c.Request.Context(), actor, c.Param("role"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyRoleSaved),
		"user":    user,
	})
}

// PUT /roles/:role/:userId
func (h *UserHandler) UpdateRole(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req services.SaveRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateRole(c.Request.Context(), actor, c.Param("role"), c.Param("userId"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyRoleSaved),
		"user":    user,
	})
}

// GET /revenue/:role/:userId
func (h *UserHandler) GetRevenue(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	summary, err := h.revenueService.Summary(c.Request.Context(), actor, c.Param("role"), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, summary)
}
