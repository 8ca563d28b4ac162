package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fibrelink/backend/internal/models"
)

type createTicketRequest struct {
	Category    string   `json:"category" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Attachments []string `json:"attachments"`
}

type assignTicketRequest struct {
	AssigneeUserID string `json:"assignee_user_id" validate:"required"`
}

type addCommentRequest struct {
	Message string `json:"message" validate:"required"`
}

// @Summary Open a support ticket
// @Tags tickets
// @Accept json
// @Produce json
// @Param ticket body createTicketRequest true "ticket"
// @Success 201 {object} models.Ticket
// @Failure 400 {object} map[string]any
// @Router /api/tickets [post]
func (h *Handler) TicketCreate(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req createTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Missing required fields", err.Error())
		return
	}

	ticket, err := h.Tickets.Create(c.Request.Context(), p, req.Category, req.Description, req.Attachments)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

// @Summary List my tickets
// @Tags tickets
// @Produce json
// @Param limit query int false "page size, default 20, max 100"
// @Success 200 {object} map[string]any
// @Router /api/tickets [get]
func (h *Handler) TicketsList(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	tickets, err := h.Tickets.List(c.Request.Context(), p, limit)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	if tickets == nil {
		tickets = []models.Ticket{}
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

// @Summary Get one ticket
// @Tags tickets
// @Produce json
// @Param id path string true "ticket id"
// @Success 200 {object} models.Ticket
// @Failure 404 {object} map[string]any
// @Router /api/tickets/{id} [get]
func (h *Handler) TicketGet(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	ticket, err := h.Tickets.Get(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// @Summary Update ticket status
// @Tags tickets
// @Accept json
// @Produce json
// @Param id path string true "ticket id"
// @Param body body updateStatusRequest true "new status"
// @Success 200 {object} models.Ticket
// @Failure 403 {object} map[string]any
// @Router /api/tickets/{id}/status [patch]
func (h *Handler) TicketUpdateStatus(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "status required", err.Error())
		return
	}

	ticket, err := h.Tickets.UpdateStatus(c.Request.Context(), p, c.Param("id"), req.Status)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// @Summary Assign a ticket to a staff user
// @Tags tickets
// @Accept json
// @Produce json
// @Param id path string true "ticket id"
// @Param body body assignTicketRequest true "assignee"
// @Success 200 {object} models.Ticket
// @Failure 403 {object} map[string]any
// @Router /api/tickets/{id}/assign [post]
func (h *Handler) TicketAssign(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req assignTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "assignee_user_id required", err.Error())
		return
	}

	ticket, err := h.Tickets.Assign(c.Request.Context(), p, c.Param("id"), req.AssigneeUserID)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// @Summary Comment on a ticket
// @Tags tickets
// @Accept json
// @Produce json
// @Param id path string true "ticket id"
// @Param body body addCommentRequest true "comment"
// @Success 200 {object} models.Ticket
// @Failure 403 {object} map[string]any
// @Router /api/tickets/{id}/comments [post]
func (h *Handler) TicketAddComment(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "message required", err.Error())
		return
	}

	ticket, err := h.Tickets.AddComment(c.Request.Context(), p, c.Param("id"), req.Message)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}
