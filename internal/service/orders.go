package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fibrelink/backend/internal/auth"
	"github.com/fibrelink/backend/internal/models"
	"github.com/fibrelink/backend/internal/policy"
	"github.com/fibrelink/backend/internal/utils"
)

type PlanStore interface {
	GetPlan(ctx context.Context, id string) (models.Plan, bool, error)
}

type EngineerStore interface {
	PickInstallEngineer(ctx context.Context, pincode string) (models.Engineer, bool, error)
	AddEngineerWorkload(ctx context.Context, id string, delta int) error
}

type OrderStore interface {
	InsertOrder(ctx context.Context, o models.Order) error
	GetOrder(ctx context.Context, id string) (models.Order, bool, error)
	ListOrdersByUser(ctx context.Context, userID string, limit int) ([]models.Order, error)
	AppendOrderStatus(ctx context.Context, id, status string, entry models.TimelineEntry) (models.Order, bool, error)
}

// Enforced order status graph: terminal states have no outgoing edges and
// nothing transitions back to scheduled.
var orderTransitions = map[string][]string{
	models.OrderScheduled:  {models.OrderInProgress, models.OrderCancelled},
	models.OrderInProgress: {models.OrderCompleted, models.OrderCancelled},
	models.OrderCompleted:  {},
	models.OrderCancelled:  {},
}

func orderTerminal(status string) bool {
	return status == models.OrderCompleted || status == models.OrderCancelled
}

// OrderService creates connection-setup orders with engineer auto-assignment
// and drives the order status workflow.
type OrderService struct {
	Plans     PlanStore
	Engineers EngineerStore
	Orders    OrderStore
	Logger    zerolog.Logger

	// ReleaseWorkloadOnClose decrements the assigned engineer's workload
	// when an order reaches a terminal state. Off by default, workload
	// then counts lifetime assignments.
	ReleaseWorkloadOnClose bool
}

// Create places a setup order. The plan price is snapshotted onto the order;
// later plan price changes never affect existing orders. Assignment picks
// the lowest-workload ACTIVE install engineer for the pincode; no match
// leaves the order unassigned, which is not an error. The workload bump is a
// separate single-document update, so a crash between the two writes can
// leave them out of step.
func (s *OrderService) Create(ctx context.Context, p auth.Principal, planID string, address json.RawMessage, pincode, preferredSlot string) (models.Order, error) {
	if !utils.ValidID(planID) {
		return models.Order{}, fmt.Errorf("%w: malformed plan id", ErrInvalidInput)
	}
	if pincode == "" {
		return models.Order{}, fmt.Errorf("%w: pincode required", ErrInvalidInput)
	}
	plan, ok, err := s.Plans.GetPlan(ctx, planID)
	if err != nil {
		return models.Order{}, err
	}
	if !ok || plan.Status != models.StatusActive {
		return models.Order{}, fmt.Errorf("%w: invalid plan_id", ErrInvalidInput)
	}

	ts := time.Now().UTC()
	engineer, assigned, err := s.Engineers.PickInstallEngineer(ctx, pincode)
	if err != nil {
		return models.Order{}, err
	}

	order := models.Order{
		ID:       utils.NewID(),
		UserID:   p.UserID,
		PlanID:   planID,
		Price:    plan.Price,
		Address:  address,
		Pincode:  pincode,
		Status:   models.OrderScheduled,
		Slot:     preferredSlot,
		Timeline: []models.TimelineEntry{{Status: models.OrderScheduled, TS: ts, By: p.UserID}},
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if assigned {
		order.AssignedEngineerID = &engineer.ID
	}

	if err := s.Orders.InsertOrder(ctx, order); err != nil {
		return models.Order{}, err
	}

	if assigned {
		if err := s.Engineers.AddEngineerWorkload(ctx, engineer.ID, 1); err != nil {
			// The order is already persisted; surface the skew instead of
			// failing the creation.
			s.Logger.Warn().Err(err).Str("order_id", order.ID).Str("engineer_id", engineer.ID).
				Msg("workload increment failed after assignment")
		}
	}

	return order, nil
}

// UpdateStatus moves an order along the enforced status graph. Staff only.
func (s *OrderService) UpdateStatus(ctx context.Context, p auth.Principal, orderID, newStatus string) (models.Order, error) {
	if !policy.Allow(policy.OrderUpdateStatus, p, "") {
		return models.Order{}, ErrForbidden
	}
	if !utils.ValidID(orderID) {
		return models.Order{}, fmt.Errorf("%w: malformed order id", ErrInvalidInput)
	}
	if _, known := orderTransitions[newStatus]; !known {
		return models.Order{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, newStatus)
	}

	order, ok, err := s.Orders.GetOrder(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if !ok {
		return models.Order{}, ErrNotFound
	}
	if !transitionAllowed(orderTransitions, order.Status, newStatus) {
		return models.Order{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, newStatus)
	}

	// Staff-driven transitions are recorded under the shared "staff" actor.
	updated, ok, err := s.Orders.AppendOrderStatus(ctx, orderID, newStatus, models.TimelineEntry{
		Status: newStatus,
		TS:     time.Now().UTC(),
		By:     "staff",
	})
	if err != nil {
		return models.Order{}, err
	}
	if !ok {
		return models.Order{}, ErrNotFound
	}

	if s.ReleaseWorkloadOnClose && orderTerminal(newStatus) && updated.AssignedEngineerID != nil {
		if err := s.Engineers.AddEngineerWorkload(ctx, *updated.AssignedEngineerID, -1); err != nil {
			s.Logger.Warn().Err(err).Str("order_id", orderID).Msg("workload release failed")
		}
	}

	return updated, nil
}

// Get returns an order to its owner or to staff.
func (s *OrderService) Get(ctx context.Context, p auth.Principal, orderID string) (models.Order, error) {
	if !utils.ValidID(orderID) {
		return models.Order{}, fmt.Errorf("%w: malformed order id", ErrInvalidInput)
	}
	order, ok, err := s.Orders.GetOrder(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if !ok {
		return models.Order{}, ErrNotFound
	}
	if !policy.Allow(policy.OrderRead, p, order.UserID) {
		return models.Order{}, ErrForbidden
	}
	return order, nil
}

// List returns the principal's own orders, newest first.
func (s *OrderService) List(ctx context.Context, p auth.Principal, limit int) ([]models.Order, error) {
	limit = clampLimit(limit)
	return s.Orders.ListOrdersByUser(ctx, p.UserID, limit)
}

func transitionAllowed(graph map[string][]string, from, to string) bool {
	for _, next := range graph[from] {
		if next == to {
			return true
		}
	}
	return false
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
