package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wildtrail/safaridesk/internal/pkg/response"
	"github.com/wildtrail/safaridesk/internal/service"
)

type AgentHandler struct {
	agents *service.AgentService
}

func NewAgentHandler(agents *service.AgentService) *AgentHandler {
	return &AgentHandler{agents: agents}
}

type agentRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Country string `json:"country"`
}

func (h *AgentHandler) Create(c *gin.Context) {
	var req agentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, 400, "invalid", "invalid request")
		return
	}
	agent, err := h.agents.Create(c.Request.Context(), service.AgentInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Country: req.Country,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, agent)
}

func (h *AgentHandler) Update(c *gin.Context) {
	var req agentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, 400, "invalid", "invalid request")
		return
	}
	agent, err := h.agents.Update(c.Request.Context(), c.Param("id"), service.AgentInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Country: req.Country,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, agent)
}

func (h *AgentHandler) Delete(c *gin.Context) {
	if err := h.agents.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *AgentHandler) Get(c *gin.Context) {
	agent, err := h.agents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, agent)
}

func (h *AgentHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	if limit <= 0 {
		limit = 50
	}
	items, err := h.agents.List(c.Request.Context(), c.Query("q"), uint(limit), uint(offset))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": items})
}
