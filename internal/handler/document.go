package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"docvault/internal/middleware"
	"docvault/internal/model"
	"docvault/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// DocumentHandler handles documents, their versions and files
type DocumentHandler struct {
	documents *service.DocumentService
	maxUpload int64
	log       zerolog.Logger
}

func NewDocumentHandler(documents *service.DocumentService, maxUpload int64, log zerolog.Logger) *DocumentHandler {
	return &DocumentHandler{documents: documents, maxUpload: maxUpload, log: log}
}

// documentBody is the JSON form of a create or update
type documentBody struct {
	Title         *string                `json:"title"`
	Summary       *string                `json:"summary"`
	Content       *string                `json:"content"`
	Urgency       *string                `json:"urgency"`
	DepartmentID  *string                `json:"department_id"`
	Metadata      map[string]interface{} `json:"metadata"`
	ChangeSummary string                 `json:"change_summary"`
}

// Create handles POST /api/documents (JSON or multipart with an optional "file")
func (h *DocumentHandler) Create(c *gin.Context) {
	in, cleanup, err := h.input(c)
	defer cleanup()
	if err != nil {
		badRequest(c, err)
		return
	}

	doc, err := h.documents.Create(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// List handles GET /api/documents
func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.documents.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// Search handles GET /api/documents/search?q=
func (h *DocumentHandler) Search(c *gin.Context) {
	docs, err := h.documents.Search(c.Request.Context(), middleware.UserID(c), c.Query("q"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// Get handles GET /api/documents/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.documents.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Update handles PUT /api/documents/:id
func (h *DocumentHandler) Update(c *gin.Context) {
	in, cleanup, err := h.input(c)
	defer cleanup()
	if err != nil {
		badRequest(c, err)
		return
	}

	doc, err := h.documents.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Delete handles DELETE /api/documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.documents.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("Document deleted", nil))
}

// Download handles GET /api/documents/:id/file
func (h *DocumentHandler) Download(c *gin.Context) {
	doc, rc, err := h.documents.OpenFile(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer rc.Close()

	size := doc.FileSize
	if size <= 0 {
		size = -1
	}
	contentType := doc.FileType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, size, contentType, rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", doc.FileName),
	})
}

// Versions handles GET /api/documents/:id/versions
func (h *DocumentHandler) Versions(c *gin.Context) {
	versions, err := h.documents.ListVersions(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, versions)
}

// Version handles GET /api/documents/:id/versions/:number
func (h *DocumentHandler) Version(c *gin.Context) {
	v, err := h.documents.GetVersion(c.Request.Context(), middleware.UserID(c), c.Param("id"), c.Param("number"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// input reads a create or update payload. The returned func closes the upload.
func (h *DocumentHandler) input(c *gin.Context) (model.DocumentInput, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		var body documentBody
		if err := c.ShouldBindJSON(&body); err != nil {
			return model.DocumentInput{}, noop, err
		}
		return model.DocumentInput{
			Title:         body.Title,
			Summary:       body.Summary,
			Content:       body.Content,
			Urgency:       body.Urgency,
			DepartmentID:  body.DepartmentID,
			Metadata:      body.Metadata,
			ChangeSummary: body.ChangeSummary,
		}, noop, nil
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+1<<20)
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return model.DocumentInput{}, noop, fmt.Errorf("upload exceeds %d MB", h.maxUpload>>20)
		}
		return model.DocumentInput{}, noop, err
	}
	form := c.Request.MultipartForm
	field := func(name string) *string {
		if vals, ok := form.Value[name]; ok && len(vals) > 0 {
			v := vals[0]
			return &v
		}
		return nil
	}

	in := model.DocumentInput{
		Title:        field("title"),
		Summary:      field("summary"),
		Content:      field("content"),
		Urgency:      field("urgency"),
		DepartmentID: field("department_id"),
	}
	if cs := field("change_summary"); cs != nil {
		in.ChangeSummary = *cs
	}
	if raw := field("metadata"); raw != nil && *raw != "" {
		if err := json.Unmarshal([]byte(*raw), &in.Metadata); err != nil {
			return model.DocumentInput{}, noop, fmt.Errorf("metadata must be a JSON object")
		}
	}

	cleanup := func() { _ = form.RemoveAll() }
	headers := form.File["file"]
	if len(headers) == 0 {
		return in, cleanup, nil
	}
	f, err := headers[0].Open()
	if err != nil {
		return model.DocumentInput{}, cleanup, err
	}
	in.File = fileUpload(headers[0], f)
	return in, func() {
		f.Close()
		cleanup()
	}, nil
}

func fileUpload(fh *multipart.FileHeader, f multipart.File) *model.FileUpload {
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &model.FileUpload{Name: fh.Filename, ContentType: contentType, Size: fh.Size, Reader: f}
}
