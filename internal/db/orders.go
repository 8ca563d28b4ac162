package db

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fibrelink/backend/internal/models"
)

const orderColumns = `id, user_id, plan_id, price, address, pincode, status, slot, assigned_engineer_id, timeline, created_at, updated_at`

func scanOrder(row pgx.Row) (models.Order, error) {
	var (
		o        models.Order
		address  []byte
		timeline []byte
	)
	err := row.Scan(&o.ID, &o.UserID, &o.PlanID, &o.Price, &address, &o.Pincode, &o.Status, &o.Slot, &o.AssignedEngineerID, &timeline, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return models.Order{}, err
	}
	o.Address = json.RawMessage(address)
	if err := json.Unmarshal(timeline, &o.Timeline); err != nil {
		return models.Order{}, err
	}
	return o, nil
}

func (s *Store) InsertOrder(ctx context.Context, o models.Order) error {
	timeline, err := json.Marshal(o.Timeline)
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(ctx, `
		INSERT INTO orders (id, user_id, plan_id, price, address, pincode, status, slot, assigned_engineer_id, timeline, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, o.ID, o.UserID, o.PlanID, o.Price, []byte(o.Address), o.Pincode, o.Status, o.Slot, o.AssignedEngineerID, timeline, o.CreatedAt, o.UpdatedAt)
	return err
}

func (s *Store) GetOrder(ctx context.Context, id string) (models.Order, bool, error) {
	o, err := scanOrder(s.Pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Order{}, false, nil
		}
		return models.Order{}, false, err
	}
	return o, true, nil
}

func (s *Store) ListOrdersByUser(ctx context.Context, userID string, limit int) ([]models.Order, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// AppendOrderStatus sets the order status and appends one timeline entry in
// a single atomic row update, returning the updated order.
func (s *Store) AppendOrderStatus(ctx context.Context, id, status string, entry models.TimelineEntry) (models.Order, bool, error) {
	b, err := json.Marshal(entry)
	if err != nil {
		return models.Order{}, false, err
	}
	row := s.Pool.QueryRow(ctx, `
		UPDATE orders
		SET status = $1, updated_at = $2, timeline = timeline || $3::jsonb
		WHERE id = $4
		RETURNING `+orderColumns+`
	`, status, time.Now().UTC(), b, id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Order{}, false, nil
		}
		return models.Order{}, false, err
	}
	return o, true, nil
}
