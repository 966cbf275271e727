package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wildtrail/safaridesk/internal/pkg/response"
	"github.com/wildtrail/safaridesk/internal/repo"
	"github.com/wildtrail/safaridesk/internal/service"
)

type BookingHandler struct {
	bookings *service.BookingService
}

func NewBookingHandler(bookings *service.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

type bookingRequest struct {
	AgentID    string `json:"agent_id"`
	Reference  string `json:"reference" binding:"required"`
	ClientName string `json:"client_name"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Pax        int    `json:"pax"`
	Status     string `json:"status"`
	Notes      string `json:"notes"`
}

func (r bookingRequest) toInput() service.BookingInput {
	return service.BookingInput{
		AgentID:    r.AgentID,
		Reference:  r.Reference,
		ClientName: r.ClientName,
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		Pax:        r.Pax,
		Status:     r.Status,
		Notes:      r.Notes,
	}
}

func (h *BookingHandler) Create(c *gin.Context) {
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, 400, "invalid", "invalid request")
		return
	}
	booking, err := h.bookings.Create(c.Request.Context(), req.toInput())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, booking)
}

func (h *BookingHandler) Update(c *gin.Context) {
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, 400, "invalid", "invalid request")
		return
	}
	booking, err := h.bookings.Update(c.Request.Context(), c.Param("id"), req.toInput())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, booking)
}

func (h *BookingHandler) Delete(c *gin.Context) {
	if err := h.bookings.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *BookingHandler) Get(c *gin.Context) {
	booking, err := h.bookings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, booking)
}

func (h *BookingHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	if limit <= 0 {
		limit = 50
	}
	items, err := h.bookings.List(c.Request.Context(), repo.BookingFilter{
		AgentID: c.Query("agent_id"),
		Status:  c.Query("status"),
		Query:   c.Query("q"),
		Limit:   uint(limit),
		Offset:  uint(offset),
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": items})
}

func (h *BookingHandler) Summary(c *gin.Context) {
	summary, err := h.bookings.Summary(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, summary)
}
