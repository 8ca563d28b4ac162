package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fibrelink/backend/internal/models"
)

type createOrderRequest struct {
	PlanID        string          `json:"plan_id" validate:"required"`
	Address       json.RawMessage `json:"address" validate:"required"`
	Pincode       string          `json:"pincode" validate:"required"`
	PreferredSlot string          `json:"preferred_slot"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// @Summary Place a connection-setup order
// @Tags orders
// @Accept json
// @Produce json
// @Param order body createOrderRequest true "order"
// @Success 201 {object} models.Order
// @Failure 400 {object} map[string]any
// @Router /api/orders [post]
func (h *Handler) OrderCreate(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Missing required fields", err.Error())
		return
	}

	order, err := h.Orders.Create(c.Request.Context(), p, req.PlanID, req.Address, req.Pincode, req.PreferredSlot)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// @Summary List my orders
// @Tags orders
// @Produce json
// @Param limit query int false "page size, default 20, max 100"
// @Success 200 {object} map[string]any
// @Router /api/orders [get]
func (h *Handler) OrdersList(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	orders, err := h.Orders.List(c.Request.Context(), p, limit)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// @Summary Get one order
// @Tags orders
// @Produce json
// @Param id path string true "order id"
// @Success 200 {object} models.Order
// @Failure 403 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/orders/{id} [get]
func (h *Handler) OrderGet(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	order, err := h.Orders.Get(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// @Summary Update order status
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "order id"
// @Param body body updateStatusRequest true "new status"
// @Success 200 {object} models.Order
// @Failure 409 {object} map[string]any
// @Router /api/orders/{id}/status [patch]
func (h *Handler) OrderUpdateStatus(c *gin.Context) {
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

	order, err := h.Orders.UpdateStatus(c.Request.Context(), p, c.Param("id"), req.Status)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
