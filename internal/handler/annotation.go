package handler

import (
	"net/http"

	"docvault/internal/middleware"
	"docvault/internal/model"
	"docvault/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AnnotationHandler handles comments, notes and highlights
type AnnotationHandler struct {
	comments *service.CommentService
	notes    *service.NoteService
	log      zerolog.Logger
}

func NewAnnotationHandler(comments *service.CommentService, notes *service.NoteService, log zerolog.Logger) *AnnotationHandler {
	return &AnnotationHandler{comments: comments, notes: notes, log: log}
}

// CreateComment handles POST /api/comments
func (h *AnnotationHandler) CreateComment(c *gin.Context) {
	var req model.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	comment, err := h.comments.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// ListComments handles GET /api/comments/:documentId
func (h *AnnotationHandler) ListComments(c *gin.Context) {
	comments, err := h.comments.List(c.Request.Context(), middleware.UserID(c), c.Param("documentId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// CreateNote handles POST /api/notes
func (h *AnnotationHandler) CreateNote(c *gin.Context) {
	var req model.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	note, err := h.notes.CreateNote(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

// ListNotes handles GET /api/notes/:documentId
func (h *AnnotationHandler) ListNotes(c *gin.Context) {
	notes, err := h.notes.ListNotes(c.Request.Context(), middleware.UserID(c), c.Param("documentId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, notes)
}

// CreateHighlight handles POST /api/highlights
func (h *AnnotationHandler) CreateHighlight(c *gin.Context) {
	var req model.CreateHighlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	hl, err := h.notes.CreateHighlight(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, hl)
}

// ListHighlights handles GET /api/highlights/:documentId
func (h *AnnotationHandler) ListHighlights(c *gin.Context) {
	hs, err := h.notes.ListHighlights(c.Request.Context(), middleware.UserID(c), c.Param("documentId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, hs)
}
