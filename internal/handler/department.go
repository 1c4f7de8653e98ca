package handler

import (
	"net/http"

	"docvault/internal/model"
	"docvault/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type DepartmentHandler struct {
	service *service.DepartmentService
	log     zerolog.Logger
}

func NewDepartmentHandler(svc *service.DepartmentService, log zerolog.Logger) *DepartmentHandler {
	return &DepartmentHandler{service: svc, log: log}
}

// List handles GET /api/departments
func (h *DepartmentHandler) List(c *gin.Context) {
	deps, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, deps)
}

// Create handles POST /api/departments
func (h *DepartmentHandler) Create(c *gin.Context) {
	var req model.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	dep, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dep)
}
