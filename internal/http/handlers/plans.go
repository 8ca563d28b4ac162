package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fibrelink/backend/internal/db"
	"github.com/fibrelink/backend/internal/models"
	"github.com/fibrelink/backend/internal/utils"
)

// @Summary List active plans
// @Tags plans
// @Produce json
// @Param min_price query int false "minimum monthly price"
// @Param max_price query int false "maximum monthly price"
// @Param min_speed query int false "minimum speed in Mbps"
// @Param max_speed query int false "maximum speed in Mbps"
// @Param service_area query string false "pincode the plan must serve"
// @Success 200 {object} map[string]any
// @Router /api/plans [get]
func (h *Handler) PlansList(c *gin.Context) {
	var f db.PlanFilter
	var err error
	if f.MinPrice, err = intQuery(c, "min_price"); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_INPUT", "min_price must be an integer", nil)
		return
	}
	if f.MaxPrice, err = intQuery(c, "max_price"); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_INPUT", "max_price must be an integer", nil)
		return
	}
	if f.MinSpeed, err = intQuery(c, "min_speed"); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_INPUT", "min_speed must be an integer", nil)
		return
	}
	if f.MaxSpeed, err = intQuery(c, "max_speed"); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_INPUT", "max_speed must be an integer", nil)
		return
	}
	f.ServiceArea = c.Query("service_area")

	plans, err := h.Plans.ListPlans(c.Request.Context(), f)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// @Summary Get one plan
// @Tags plans
// @Produce json
// @Param id path string true "plan id"
// @Success 200 {object} models.Plan
// @Failure 404 {object} map[string]any
// @Router /api/plans/{id} [get]
func (h *Handler) PlanGet(c *gin.Context) {
	id := c.Param("id")
	if !utils.ValidID(id) {
		writeError(c, http.StatusBadRequest, "INVALID_INPUT", "malformed plan id", nil)
		return
	}
	plan, ok, err := h.Plans.GetPlan(c.Request.Context(), id)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	// Retired plans stay in the catalogue for order price history but are
	// not exposed here.
	if !ok || plan.Status != models.StatusActive {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Plan not found", nil)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func intQuery(c *gin.Context, name string) (*int, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
