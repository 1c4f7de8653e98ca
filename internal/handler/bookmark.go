package handler

import (
	"net/http"

	"docvault/internal/middleware"
	"docvault/internal/model"
	"docvault/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type BookmarkHandler struct {
	bookmarks *service.BookmarkService
	log       zerolog.Logger
}

func NewBookmarkHandler(bookmarks *service.BookmarkService, log zerolog.Logger) *BookmarkHandler {
	return &BookmarkHandler{bookmarks: bookmarks, log: log}
}

// Toggle handles POST /api/bookmarks. A second call for the same document
// removes the bookmark.
func (h *BookmarkHandler) Toggle(c *gin.Context) {
	var req model.ToggleBookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.bookmarks.Toggle(c.Request.Context(), middleware.UserID(c), req.DocumentID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if res.Removed {
		c.JSON(http.StatusOK, gin.H{"message": "Removed", "removed": true})
		return
	}
	c.JSON(http.StatusCreated, res.Bookmark)
}

// List handles GET /api/bookmarks
func (h *BookmarkHandler) List(c *gin.Context) {
	bookmarks, err := h.bookmarks.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, bookmarks)
}

// Status handles GET /api/bookmarks/:documentId
func (h *BookmarkHandler) Status(c *gin.Context) {
	ok, err := h.bookmarks.IsBookmarked(c.Request.Context(), middleware.UserID(c), c.Param("documentId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookmarked": ok})
}
