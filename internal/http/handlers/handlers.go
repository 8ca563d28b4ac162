package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/fibrelink/backend/internal/auth"
	"github.com/fibrelink/backend/internal/db"
	"github.com/fibrelink/backend/internal/http/middleware"
	"github.com/fibrelink/backend/internal/models"
	"github.com/fibrelink/backend/internal/service"
)

// PlanCatalog is the slice of the store the plan endpoints read from.
type PlanCatalog interface {
	ListPlans(ctx context.Context, f db.PlanFilter) ([]models.Plan, error)
	GetPlan(ctx context.Context, id string) (models.Plan, bool, error)
}

type Handler struct {
	Store     *db.Store
	Plans     PlanCatalog
	Orders    *service.OrderService
	Tickets   *service.TicketService
	Chat      *service.ChatService
	Validator *validator.Validate
	Logger    zerolog.Logger
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// serviceError maps service sentinel errors onto the error envelope.
func (h *Handler) serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(c, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
	case errors.Is(err, service.ErrNotFound):
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Resource not found", nil)
	case errors.Is(err, service.ErrForbidden):
		writeError(c, http.StatusForbidden, "FORBIDDEN", "Not allowed", nil)
	case errors.Is(err, service.ErrInvalidTransition):
		writeError(c, http.StatusConflict, "INVALID_TRANSITION", err.Error(), nil)
	case errors.Is(err, service.ErrRateLimited):
		writeError(c, http.StatusTooManyRequests, "RATE_LIMITED", "Too many chat messages, slow down", nil)
	case errors.Is(err, service.ErrUpstream):
		writeError(c, http.StatusBadGateway, "UPSTREAM_ERROR", "AI engine unavailable", nil)
	default:
		h.Logger.Error().Err(err).Str("path", c.FullPath()).Msg("unhandled service error")
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Internal error", nil)
	}
}

func (h *Handler) principal(c *gin.Context) (auth.Principal, bool) {
	p, ok := middleware.Principal(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "UNAUTHENTICATED", "Missing principal", nil)
	}
	return p, ok
}
