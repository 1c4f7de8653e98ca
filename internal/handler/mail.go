package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"docvault/internal/middleware"
	"docvault/internal/model"
	"docvault/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type MailHandler struct {
	mail *service.MailService
	log  zerolog.Logger
}

func NewMailHandler(mail *service.MailService, log zerolog.Logger) *MailHandler {
	return &MailHandler{mail: mail, log: log}
}

// AuthURL handles GET /api/mail/google
func (h *MailHandler) AuthURL(c *gin.Context) {
	u, err := h.mail.AuthURL(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"authUrl": u})
}

// Callback handles GET /api/mail/google/callback
func (h *MailHandler) Callback(c *gin.Context) {
	redirect, err := h.mail.Callback(c.Request.Context(), c.Query("state"), c.Query("code"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Redirect(http.StatusFound, redirect)
}

// Fetch handles POST /api/mail/fetch. The body is optional.
func (h *MailHandler) Fetch(c *gin.Context) {
	var req model.FetchMailRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}
	if req.PageToken == "" {
		req.PageToken = c.Query("page_token")
	}
	res, err := h.mail.Fetch(c.Request.Context(), middleware.UserID(c), req.PageToken)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Files handles GET /api/mail/files
func (h *MailHandler) Files(c *gin.Context) {
	files, err := h.mail.ListFiles(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

// Download handles GET /api/mail/download/:id
func (h *MailHandler) Download(c *gin.Context) {
	att, rc, err := h.mail.Open(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer rc.Close()
	c.DataFromReader(http.StatusOK, att.Size, att.ContentType, rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", att.Filename),
	})
}
