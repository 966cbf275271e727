package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wildtrail/safaridesk/internal/service"
)

// PublicShareHandler serves the anonymous share surface. Nothing here runs
// behind the JWT middleware: the token in the path is the only credential.
type PublicShareHandler struct {
	shares *service.ShareService
}

func NewPublicShareHandler(shares *service.ShareService) *PublicShareHandler {
	return &PublicShareHandler{shares: shares}
}

// Resolve validates the token and returns the booking summary, the scoped
// document list, the allowed categories and the expiry instant. Expired,
// revoked and unknown tokens all answer 403 so the viewer can tell a dead
// link from a transient failure.
func (h *PublicShareHandler) Resolve(c *gin.Context) {
	resolved, err := h.shares.ResolveShare(c.Request.Context(), c.Param("token"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resolved)
}

// Download serves one document under the token, re-validating scope and expiry.
func (h *PublicShareHandler) Download(c *gin.Context) {
	file, err := h.shares.OpenSharedDocument(c.Request.Context(), c.Param("token"), c.Param("document_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	serveDownload(c, file)
}

// DownloadAll serves a zip of everything currently visible under the token.
func (h *PublicShareHandler) DownloadAll(c *gin.Context) {
	content, filename, err := h.shares.BuildArchive(c.Request.Context(), c.Param("token"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/zip", content)
}
