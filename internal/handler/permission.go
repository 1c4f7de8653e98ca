package handler

import (
	"net/http"

	"docvault/internal/middleware"
	"docvault/internal/model"
	"docvault/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type PermissionHandler struct {
	permissions *service.PermissionService
	log         zerolog.Logger
}

func NewPermissionHandler(permissions *service.PermissionService, log zerolog.Logger) *PermissionHandler {
	return &PermissionHandler{permissions: permissions, log: log}
}

// Grant handles POST /api/permissions
func (h *PermissionHandler) Grant(c *gin.Context) {
	var req model.GrantPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	perm, err := h.permissions.Grant(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, perm)
}

// List handles GET /api/permissions/:documentId
func (h *PermissionHandler) List(c *gin.Context) {
	perms, err := h.permissions.List(c.Request.Context(), middleware.UserID(c), c.Param("documentId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, perms)
}

// Revoke handles DELETE /api/permissions/:documentId/:userId
func (h *PermissionHandler) Revoke(c *gin.Context) {
	err := h.permissions.Revoke(c.Request.Context(), middleware.UserID(c), c.Param("documentId"), c.Param("userId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("Permission revoked", nil))
}
