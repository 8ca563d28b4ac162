package db

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fibrelink/backend/internal/models"
)

const ticketColumns = `id, user_id, issue_type, severity, status, assigned_to, notes, attachments, created_at, updated_at`

func scanTicket(row pgx.Row) (models.Ticket, error) {
	var (
		t           models.Ticket
		assignedTo  []byte
		notes       []byte
		attachments []byte
	)
	err := row.Scan(&t.ID, &t.UserID, &t.IssueType, &t.Severity, &t.Status, &assignedTo, &notes, &attachments, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return models.Ticket{}, err
	}
	if len(assignedTo) > 0 {
		if err := json.Unmarshal(assignedTo, &t.AssignedTo); err != nil {
			return models.Ticket{}, err
		}
	}
	if err := json.Unmarshal(notes, &t.Notes); err != nil {
		return models.Ticket{}, err
	}
	if err := json.Unmarshal(attachments, &t.Attachments); err != nil {
		return models.Ticket{}, err
	}
	return t, nil
}

func (s *Store) InsertTicket(ctx context.Context, t models.Ticket) error {
	notes, err := json.Marshal(t.Notes)
	if err != nil {
		return err
	}
	attachments, err := json.Marshal(t.Attachments)
	if err != nil {
		return err
	}
	var assignedTo []byte
	if t.AssignedTo != nil {
		if assignedTo, err = json.Marshal(t.AssignedTo); err != nil {
			return err
		}
	}
	_, err = s.Pool.Exec(ctx, `
		INSERT INTO tickets (id, user_id, issue_type, severity, status, assigned_to, notes, attachments, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, t.ID, t.UserID, t.IssueType, t.Severity, t.Status, assignedTo, notes, attachments, t.CreatedAt, t.UpdatedAt)
	return err
}

func (s *Store) GetTicket(ctx context.Context, id string) (models.Ticket, bool, error) {
	t, err := scanTicket(s.Pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Ticket{}, false, nil
		}
		return models.Ticket{}, false, err
	}
	return t, true, nil
}

func (s *Store) ListTicketsByUser(ctx context.Context, userID string, limit int) ([]models.Ticket, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+ticketColumns+` FROM tickets
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// AppendTicketStatus sets the ticket status and appends one note in a single
// atomic row update.
func (s *Store) AppendTicketStatus(ctx context.Context, id, status string, note models.TicketNote) (models.Ticket, bool, error) {
	b, err := json.Marshal(note)
	if err != nil {
		return models.Ticket{}, false, err
	}
	row := s.Pool.QueryRow(ctx, `
		UPDATE tickets
		SET status = $1, updated_at = $2, notes = notes || $3::jsonb
		WHERE id = $4
		RETURNING `+ticketColumns+`
	`, status, time.Now().UTC(), b, id)
	return ticketFromRow(row)
}

// AssignTicket records the assignee, moves the ticket to assigned, and
// appends the assign note. One atomic row update.
func (s *Store) AssignTicket(ctx context.Context, id string, assignee models.TicketAssignee, note models.TicketNote) (models.Ticket, bool, error) {
	noteB, err := json.Marshal(note)
	if err != nil {
		return models.Ticket{}, false, err
	}
	assigneeB, err := json.Marshal(assignee)
	if err != nil {
		return models.Ticket{}, false, err
	}
	row := s.Pool.QueryRow(ctx, `
		UPDATE tickets
		SET assigned_to = $1, status = $2, updated_at = $3, notes = notes || $4::jsonb
		WHERE id = $5
		RETURNING `+ticketColumns+`
	`, assigneeB, models.TicketAssigned, time.Now().UTC(), noteB, id)
	return ticketFromRow(row)
}

// AppendTicketNote appends a note without touching the status.
func (s *Store) AppendTicketNote(ctx context.Context, id string, note models.TicketNote) (models.Ticket, bool, error) {
	b, err := json.Marshal(note)
	if err != nil {
		return models.Ticket{}, false, err
	}
	row := s.Pool.QueryRow(ctx, `
		UPDATE tickets
		SET updated_at = $1, notes = notes || $2::jsonb
		WHERE id = $3
		RETURNING `+ticketColumns+`
	`, time.Now().UTC(), b, id)
	return ticketFromRow(row)
}

func ticketFromRow(row pgx.Row) (models.Ticket, bool, error) {
	t, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Ticket{}, false, nil
		}
		return models.Ticket{}, false, err
	}
	return t, true, nil
}
