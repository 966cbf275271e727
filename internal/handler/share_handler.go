package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wildtrail/safaridesk/internal/pkg/response"
	"github.com/wildtrail/safaridesk/internal/service"
)

// ShareHandler covers the staff side of document sharing: issuing, fetching
// and revoking a booking's share token.
type ShareHandler struct {
	shares *service.ShareService
}

func NewShareHandler(shares *service.ShareService) *ShareHandler {
	return &ShareHandler{shares: shares}
}

type createShareRequest struct {
	Categories       []string `json:"categories"`
	ExpiresInSeconds int64    `json:"expires_in_seconds"`
}

// Create issues a new token for the booking, superseding any previous one.
func (h *ShareHandler) Create(c *gin.Context) {
	var req createShareRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "invalid", "invalid request")
			return
		}
	}
	share, err := h.shares.CreateShare(c.Request.Context(), c.Param("id"), req.Categories, req.ExpiresInSeconds)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, share)
}

// GetActive answers with the live token or an explicit null. A booking without
// a token is a normal state, not an error.
func (h *ShareHandler) GetActive(c *gin.Context) {
	share, err := h.shares.GetActiveShare(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"share": share})
}

func (h *ShareHandler) Revoke(c *gin.Context) {
	if err := h.shares.RevokeShare(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}
