package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wildtrail/safaridesk/internal/filestore"
	"github.com/wildtrail/safaridesk/internal/pkg/response"
	"github.com/wildtrail/safaridesk/internal/service"
)

type DocumentHandler struct {
	documents *service.DocumentService
}

func NewDocumentHandler(documents *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_file", "file is required")
		return
	}
	opened, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_file", "failed to open file")
		return
	}
	reader, contentType, err := sniffContentType(opened)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_file", "failed to read file")
		return
	}
	defer reader.Close()

	doc, err := h.documents.Upload(c.Request.Context(), service.DocumentUploadInput{
		BookingID:   c.Param("id"),
		Filename:    file.Filename,
		Category:    c.PostForm("category"),
		ContentType: contentType,
		Size:        file.Size,
		Body:        reader,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc)
}

func (h *DocumentHandler) List(c *gin.Context) {
	items, err := h.documents.ListByBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": items})
}

type reassignCategoryRequest struct {
	Category string `json:"category" binding:"required"`
}

func (h *DocumentHandler) ReassignCategory(c *gin.Context) {
	var req reassignCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid", "invalid request")
		return
	}
	doc, err := h.documents.ReassignCategory(c.Request.Context(), c.Param("id"), req.Category)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.documents.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *DocumentHandler) Download(c *gin.Context) {
	file, err := h.documents.OpenDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	serveDownload(c, file)
}

// serveDownload writes one half of the dual-path download contract: object
// stores answer with a JSON body naming the direct URL, streaming stores send
// the bytes with a Content-Disposition filename hint.
func serveDownload(c *gin.Context, file *service.DownloadFile) {
	if file.URL != "" {
		c.JSON(http.StatusOK, gin.H{"url": file.URL, "filename": file.Filename})
		return
	}
	defer file.Body.Close()
	c.Header("Content-Type", file.ContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file.Body)
}

// sniffContentType detects the upload's content type from its first bytes and
// rewinds the reader.
func sniffContentType(file filestore.ReadSeekCloser) (filestore.ReadSeekCloser, string, error) {
	buf := make([]byte, 512)
	read, err := file.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, "", err
	}
	contentType := http.DetectContentType(buf[:read])
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, "", err
	}
	return file, contentType, nil
}
