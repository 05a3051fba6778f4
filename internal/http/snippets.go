package http

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"codefusion/internal/domain"
	"codefusion/internal/service"
	"codefusion/internal/storage"
)

type allCodesRequest struct {
	Username string `json:"username" binding:"required"`
}

func (h *Handler) allCodes(c *gin.Context) {
	var req allCodesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	snippets, err := h.snippets.ListByUsername(c.Request.Context(), req.Username)
	if err != nil {
		h.respondInternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    snippetsToResponse(snippets),
	})
}

type saveNewCodeRequest struct {
	Username string `json:"username" binding:"required"`
	Title    string `json:"title" binding:"required"`
	HTMLCode string `json:"htmlCode"`
	CSSCode  string `json:"cssCode"`
	JSCode   string `json:"jsCode"`
}

func (h *Handler) saveNewCode(c *gin.Context) {
	var req saveNewCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	snippet, err := h.snippets.SaveNew(c.Request.Context(), req.Username, req.Title, req.HTMLCode, req.CSSCode, req.JSCode)
	if err != nil {
		h.respondInternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Code saved successfully",
		"data":    snippetToResponse(*snippet),
	})
}

type saveCodeRequest struct {
	HTMLCode string `json:"htmlCode"`
	CSSCode  string `json:"cssCode"`
	JSCode   string `json:"jsCode"`
}

func (h *Handler) saveCode(c *gin.Context) {
	id, ok := snippetID(c)
	if !ok {
		return
	}

	var req saveCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if err := h.snippets.Save(c.Request.Context(), id, req.HTMLCode, req.CSSCode, req.JSCode); err != nil {
		if errors.Is(err, service.ErrSnippetNotFound) {
			respondMessage(c, http.StatusNotFound, "Code not found")
			return
		}
		h.respondInternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Code saved successfully",
	})
}

func (h *Handler) fetchCode(c *gin.Context) {
	id, ok := snippetID(c)
	if !ok {
		return
	}

	snippet, err := h.snippets.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrSnippetNotFound) {
			respondMessage(c, http.StatusNotFound, "Code not found")
			return
		}
		h.respondInternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Fetched successfully",
		"data":    snippetToResponse(*snippet),
	})
}

func (h *Handler) deleteCode(c *gin.Context) {
	id, ok := snippetID(c)
	if !ok {
		return
	}

	if err := h.snippets.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrSnippetNotFound) {
			respondMessage(c, http.StatusNotFound, "Code not found")
			return
		}
		h.respondInternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Deleted successfully",
	})
}

func (h *Handler) searchCode(c *gin.Context) {
	title := c.Query("title")
	username := c.Query("username")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"errors":  []string{"title is required"},
		})
		return
	}

	snippets, err := h.snippets.Search(c.Request.Context(), username, title)
	if err != nil {
		h.respondInternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    snippetsToResponse(snippets),
	})
}

type downloadZipRequest struct {
	HTMLCode string `json:"htmlCode"`
	CSSCode  string `json:"cssCode"`
	JSCode   string `json:"jsCode"`
}

func (h *Handler) downloadZip(c *gin.Context) {
	var req downloadZipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", `attachment; filename="codefusion.zip"`)
	c.Status(http.StatusOK)

	if err := writeArchive(c.Writer, req.HTMLCode, req.CSSCode, req.JSCode); err != nil {
		// headers are gone by now; all we can do is log
		h.logger.WithError(err).Error("write zip archive")
	}
}

func (h *Handler) exportZip(c *gin.Context) {
	if h.storage == nil {
		respondMessage(c, http.StatusServiceUnavailable, "Archive export is not configured")
		return
	}

	username, ok := currentUsername(c)
	if !ok {
		respondMessage(c, http.StatusUnauthorized, "Access denied")
		return
	}

	var req downloadZipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := writeArchive(&buf, req.HTMLCode, req.CSSCode, req.JSCode); err != nil {
		h.respondInternalError(c, err)
		return
	}

	key := fmt.Sprintf("%s/%s.zip", username, uuid.NewString())
	location, err := h.storage.UploadArchive(c.Request.Context(), key, &buf)
	if err != nil {
		h.respondInternalError(c, err)
		return
	}

	url, err := h.storage.GetObjectURL(c.Request.Context(), key, 15*time.Minute)
	if err != nil {
		h.respondInternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Archive exported successfully",
		"location": location,
		"url":      url,
	})
}

// listExports returns the caller's previously exported archives, scoped to
// their own key prefix.
func (h *Handler) listExports(c *gin.Context) {
	if h.storage == nil {
		respondMessage(c, http.StatusServiceUnavailable, "Archive export is not configured")
		return
	}

	username, ok := currentUsername(c)
	if !ok {
		respondMessage(c, http.StatusUnauthorized, "Access denied")
		return
	}

	objects, err := h.storage.ListObjects(c.Request.Context(), username+"/")
	if err != nil {
		h.respondInternalError(c, err)
		return
	}

	resp := make([]ExportResponse, len(objects))
	for i := range objects {
		resp[i] = exportToResponse(objects[i])
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    resp,
	})
}

type ExportResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"lastModified,omitempty"`
}

func exportToResponse(obj storage.ObjectInfo) ExportResponse {
	resp := ExportResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}

// writeArchive emits the three-file snippet archive the editor expects.
func writeArchive(w io.Writer, htmlCode, cssCode, jsCode string) error {
	zw := zip.NewWriter(w)
	entries := []struct {
		name string
		body string
	}{
		{"index.html", htmlCode},
		{"style.css", cssCode},
		{"script.js", jsCode},
	}
	for _, entry := range entries {
		f, err := zw.Create(entry.name)
		if err != nil {
			return fmt.Errorf("create zip entry %s: %w", entry.name, err)
		}
		if _, err := f.Write([]byte(entry.body)); err != nil {
			return fmt.Errorf("write zip entry %s: %w", entry.name, err)
		}
	}
	return zw.Close()
}

func snippetID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"errors":  []string{"invalid snippet id"},
		})
		return 0, false
	}
	return id, true
}

type SnippetResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Title     string `json:"title"`
	HTMLCode  string `json:"htmlCode"`
	CSSCode   string `json:"cssCode"`
	JSCode    string `json:"jsCode"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func snippetToResponse(snippet domain.Snippet) SnippetResponse {
	return SnippetResponse{
		ID:        snippet.ID,
		Username:  snippet.Username,
		Title:     snippet.Title,
		HTMLCode:  snippet.HTMLCode,
		CSSCode:   snippet.CSSCode,
		JSCode:    snippet.JSCode,
		CreatedAt: snippet.CreatedAt.Format(time.RFC3339),
		UpdatedAt: snippet.UpdatedAt.Format(time.RFC3339),
	}
}

func snippetsToResponse(snippets []domain.Snippet) []SnippetResponse {
	resp := make([]SnippetResponse, len(snippets))
	for i := range snippets {
		resp[i] = snippetToResponse(snippets[i])
	}
	return resp
}
