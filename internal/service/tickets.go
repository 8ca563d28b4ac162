package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fibrelink/backend/internal/auth"
	"github.com/fibrelink/backend/internal/models"
	"github.com/fibrelink/backend/internal/policy"
	"github.com/fibrelink/backend/internal/utils"
)

type TicketStore interface {
	InsertTicket(ctx context.Context, t models.Ticket) error
	GetTicket(ctx context.Context, id string) (models.Ticket, bool, error)
	ListTicketsByUser(ctx context.Context, userID string, limit int) ([]models.Ticket, error)
	AppendTicketStatus(ctx context.Context, id, status string, note models.TicketNote) (models.Ticket, bool, error)
	AssignTicket(ctx context.Context, id string, assignee models.TicketAssignee, note models.TicketNote) (models.Ticket, bool, error)
	AppendTicketNote(ctx context.Context, id string, note models.TicketNote) (models.Ticket, bool, error)
}

var ticketStatuses = map[string]struct{}{
	models.TicketOpen:       {},
	models.TicketAssigned:   {},
	models.TicketInProgress: {},
	models.TicketResolved:   {},
	models.TicketClosed:     {},
}

// TicketService drives the support-ticket lifecycle. Tickets carry an
// append-only notes log: creation, every status change, every assignment,
// and every comment append exactly one note.
type TicketService struct {
	Tickets TicketStore
}

func (s *TicketService) Create(ctx context.Context, p auth.Principal, category, description string, attachments []string) (models.Ticket, error) {
	category = strings.TrimSpace(category)
	description = strings.TrimSpace(description)
	if category == "" || description == "" {
		return models.Ticket{}, fmt.Errorf("%w: category and description required", ErrInvalidInput)
	}
	if attachments == nil {
		attachments = []string{}
	}

	ts := time.Now().UTC()
	t := models.Ticket{
		ID:        utils.NewID(),
		UserID:    p.UserID,
		IssueType: category,
		Severity:  "medium",
		Status:    models.TicketOpen,
		Notes: []models.TicketNote{{
			TS:      ts,
			By:      p.UserID,
			Kind:    models.NoteCreated,
			Message: description,
		}},
		Attachments: attachments,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if err := s.Tickets.InsertTicket(ctx, t); err != nil {
		return models.Ticket{}, err
	}
	return t, nil
}

// UpdateStatus applies the ticket role gate: anyone who owns the ticket (or
// staff) may close it; every other status is staff-only.
func (s *TicketService) UpdateStatus(ctx context.Context, p auth.Principal, ticketID, newStatus string) (models.Ticket, error) {
	if !utils.ValidID(ticketID) {
		return models.Ticket{}, fmt.Errorf("%w: malformed ticket id", ErrInvalidInput)
	}
	if _, known := ticketStatuses[newStatus]; !known {
		return models.Ticket{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, newStatus)
	}

	ticket, ok, err := s.Tickets.GetTicket(ctx, ticketID)
	if err != nil {
		return models.Ticket{}, err
	}
	if !ok {
		return models.Ticket{}, ErrNotFound
	}

	action := policy.TicketWorkflow
	if newStatus == models.TicketClosed {
		action = policy.TicketClose
	}
	if !policy.Allow(action, p, ticket.UserID) {
		return models.Ticket{}, ErrForbidden
	}

	updated, ok, err := s.Tickets.AppendTicketStatus(ctx, ticketID, newStatus, models.TicketNote{
		TS:      time.Now().UTC(),
		By:      p.UserID,
		Kind:    models.NoteStatus,
		Message: newStatus,
	})
	if err != nil {
		return models.Ticket{}, err
	}
	if !ok {
		return models.Ticket{}, ErrNotFound
	}
	return updated, nil
}

// Assign hands a ticket to a staff user. Staff only.
func (s *TicketService) Assign(ctx context.Context, p auth.Principal, ticketID, assigneeUserID string) (models.Ticket, error) {
	if !policy.Allow(policy.TicketAssign, p, "") {
		return models.Ticket{}, ErrForbidden
	}
	if !utils.ValidID(ticketID) {
		return models.Ticket{}, fmt.Errorf("%w: malformed ticket id", ErrInvalidInput)
	}
	assigneeUserID = strings.TrimSpace(assigneeUserID)
	if assigneeUserID == "" {
		return models.Ticket{}, fmt.Errorf("%w: assignee required", ErrInvalidInput)
	}

	updated, ok, err := s.Tickets.AssignTicket(ctx, ticketID, models.TicketAssignee{UserID: assigneeUserID}, models.TicketNote{
		TS:      time.Now().UTC(),
		By:      "staff",
		Kind:    models.NoteAssign,
		Message: assigneeUserID,
	})
	if err != nil {
		return models.Ticket{}, err
	}
	if !ok {
		return models.Ticket{}, ErrNotFound
	}
	return updated, nil
}

// AddComment appends a comment note. Owner or staff; the status is untouched.
func (s *TicketService) AddComment(ctx context.Context, p auth.Principal, ticketID, message string) (models.Ticket, error) {
	if !utils.ValidID(ticketID) {
		return models.Ticket{}, fmt.Errorf("%w: malformed ticket id", ErrInvalidInput)
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return models.Ticket{}, fmt.Errorf("%w: message required", ErrInvalidInput)
	}

	ticket, ok, err := s.Tickets.GetTicket(ctx, ticketID)
	if err != nil {
		return models.Ticket{}, err
	}
	if !ok {
		return models.Ticket{}, ErrNotFound
	}
	if !policy.Allow(policy.TicketComment, p, ticket.UserID) {
		return models.Ticket{}, ErrForbidden
	}

	updated, ok, err := s.Tickets.AppendTicketNote(ctx, ticketID, models.TicketNote{
		TS:      time.Now().UTC(),
		By:      p.UserID,
		Kind:    models.NoteComment,
		Message: message,
	})
	if err != nil {
		return models.Ticket{}, err
	}
	if !ok {
		return models.Ticket{}, ErrNotFound
	}
	return updated, nil
}

// Get returns a ticket to its owner or to staff.
func (s *TicketService) Get(ctx context.Context, p auth.Principal, ticketID string) (models.Ticket, error) {
	if !utils.ValidID(ticketID) {
		return models.Ticket{}, fmt.Errorf("%w: malformed ticket id", ErrInvalidInput)
	}
	ticket, ok, err := s.Tickets.GetTicket(ctx, ticketID)
	if err != nil {
		return models.Ticket{}, err
	}
	if !ok {
		return models.Ticket{}, ErrNotFound
	}
	if !policy.Allow(policy.TicketRead, p, ticket.UserID) {
		return models.Ticket{}, ErrForbidden
	}
	return ticket, nil
}

// List returns the principal's own tickets, newest first.
func (s *TicketService) List(ctx context.Context, p auth.Principal, limit int) ([]models.Ticket, error) {
	return s.Tickets.ListTicketsByUser(ctx, p.UserID, clampLimit(limit))
}
