package service

import (
	"context"
	"errors"
	"testing"

	"github.com/fibrelink/backend/internal/auth"
	"github.com/fibrelink/backend/internal/models"
	"github.com/fibrelink/backend/internal/utils"
)

func newTicketService(store *memStore) *TicketService {
	return &TicketService{Tickets: store}
}

func TestCreateTicketDefaults(t *testing.T) {
	svc := newTicketService(newMemStore())
	ctx := context.Background()

	ticket, err := svc.Create(ctx, customer, "no_internet", "Link down since morning", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ticket.Status != models.TicketOpen {
		t.Fatalf("status = %q, want %q", ticket.Status, models.TicketOpen)
	}
	if ticket.Severity != "medium" {
		t.Fatalf("severity = %q, want medium", ticket.Severity)
	}
	if !utils.ValidID(ticket.ID) {
		t.Fatalf("malformed ticket id %q", ticket.ID)
	}
	if ticket.Attachments == nil || len(ticket.Attachments) != 0 {
		t.Fatalf("attachments = %v, want empty slice", ticket.Attachments)
	}
	if len(ticket.Notes) != 1 {
		t.Fatalf("notes = %d, want 1", len(ticket.Notes))
	}
	n := ticket.Notes[0]
	if n.Kind != models.NoteCreated || n.By != customer.UserID || n.Message != "Link down since morning" {
		t.Fatalf("unexpected creation note %+v", n)
	}
}

func TestCreateTicketRequiresFields(t *testing.T) {
	svc := newTicketService(newMemStore())
	ctx := context.Background()

	if _, err := svc.Create(ctx, customer, "", "desc", nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing category: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Create(ctx, customer, "billing", "   ", nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank description: expected ErrInvalidInput, got %v", err)
	}
}

func TestTicketOwnerMayCloseButNotWork(t *testing.T) {
	store := newMemStore()
	svc := newTicketService(store)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, customer, "slow_speed", "Speeds below plan", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, customer, ticket.ID, models.TicketInProgress); !errors.Is(err, ErrForbidden) {
		t.Fatalf("owner in_progress: expected ErrForbidden, got %v", err)
	}

	closed, err := svc.UpdateStatus(ctx, customer, ticket.ID, models.TicketClosed)
	if err != nil {
		t.Fatalf("owner close: %v", err)
	}
	if closed.Status != models.TicketClosed {
		t.Fatalf("status = %q, want %q", closed.Status, models.TicketClosed)
	}
	last := closed.Notes[len(closed.Notes)-1]
	if last.Kind != models.NoteStatus || last.Message != models.TicketClosed || last.By != customer.UserID {
		t.Fatalf("unexpected close note %+v", last)
	}
}

func TestTicketStaffWorkflowAppendsNotes(t *testing.T) {
	store := newMemStore()
	svc := newTicketService(store)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, customer, "no_internet", "Drops every hour", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, status := range []string{models.TicketInProgress, models.TicketResolved, models.TicketClosed} {
		updated, err := svc.UpdateStatus(ctx, staff, ticket.ID, status)
		if err != nil {
			t.Fatalf("staff -> %s: %v", status, err)
		}
		if updated.Status != status {
			t.Fatalf("status = %q, want %q", updated.Status, status)
		}
	}

	final, err := svc.Get(ctx, staff, ticket.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	// creation note plus one per status change
	if len(final.Notes) != 4 {
		t.Fatalf("notes = %d, want 4", len(final.Notes))
	}
	for i := 1; i < len(final.Notes); i++ {
		if final.Notes[i].TS.Before(final.Notes[i-1].TS) {
			t.Fatalf("notes out of order at %d", i)
		}
	}
}

func TestTicketUpdateStatusValidation(t *testing.T) {
	store := newMemStore()
	svc := newTicketService(store)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, customer, "billing", "Double charged", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, staff, ticket.ID, "escalated"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown status: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, staff, "not-an-id", models.TicketClosed); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("malformed id: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, staff, utils.NewID(), models.TicketClosed); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing ticket: expected ErrNotFound, got %v", err)
	}
}

func TestAssignTicketStaffOnly(t *testing.T) {
	store := newMemStore()
	svc := newTicketService(store)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, customer, "no_internet", "No sync light", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Assign(ctx, customer, ticket.ID, "eng-7"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("owner assign: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Assign(ctx, staff, ticket.ID, "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank assignee: expected ErrInvalidInput, got %v", err)
	}

	assigned, err := svc.Assign(ctx, staff, ticket.ID, "eng-7")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if assigned.Status != models.TicketAssigned {
		t.Fatalf("status = %q, want %q", assigned.Status, models.TicketAssigned)
	}
	if assigned.AssignedTo == nil || assigned.AssignedTo.UserID != "eng-7" {
		t.Fatalf("assignee = %+v, want eng-7", assigned.AssignedTo)
	}
	last := assigned.Notes[len(assigned.Notes)-1]
	if last.Kind != models.NoteAssign || last.Message != "eng-7" || last.By != "staff" {
		t.Fatalf("unexpected assign note %+v", last)
	}
}

func TestAddCommentOwnerAndStaff(t *testing.T) {
	store := newMemStore()
	svc := newTicketService(store)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, customer, "slow_speed", "40 of 100 Mbps", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.AddComment(ctx, customer, ticket.ID, "Still slow after reboot")
	if err != nil {
		t.Fatalf("owner comment: %v", err)
	}
	if updated.Status != models.TicketOpen {
		t.Fatalf("comment changed status to %q", updated.Status)
	}

	updated, err = svc.AddComment(ctx, staff, ticket.ID, "Scheduling a line test")
	if err != nil {
		t.Fatalf("staff comment: %v", err)
	}
	if len(updated.Notes) != 3 {
		t.Fatalf("notes = %d, want 3", len(updated.Notes))
	}
	last := updated.Notes[len(updated.Notes)-1]
	if last.Kind != models.NoteComment || last.By != staff.UserID || last.Message != "Scheduling a line test" {
		t.Fatalf("unexpected comment note %+v", last)
	}

	stranger, err := svc.Create(ctx, staff, "billing", "internal", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	other := auth.Principal{UserID: "u-other", Roles: []string{"user"}}
	if _, err := svc.AddComment(ctx, other, stranger.ID, "hi"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger comment: expected ErrForbidden, got %v", err)
	}

	if _, err := svc.AddComment(ctx, customer, utils.NewID(), "hi"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing ticket: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.AddComment(ctx, customer, ticket.ID, "   "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank comment: expected ErrInvalidInput, got %v", err)
	}
}

func TestGetTicketOwnership(t *testing.T) {
	store := newMemStore()
	svc := newTicketService(store)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, customer, "billing", "Invoice mismatch", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Get(ctx, customer, ticket.ID); err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if _, err := svc.Get(ctx, staff, ticket.ID); err != nil {
		t.Fatalf("staff get: %v", err)
	}
	if _, err := svc.Get(ctx, auth.Principal{UserID: "u-other", Roles: []string{"user"}}, ticket.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger get: expected ErrForbidden, got %v", err)
	}
}
