package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/fibrelink/backend/internal/models"
)

// PlanFilter narrows the plan catalogue listing. Zero values mean "no bound".
type PlanFilter struct {
	MinPrice    *int
	MaxPrice    *int
	MinSpeed    *int
	MaxSpeed    *int
	ServiceArea string
}

const planColumns = `id, name, speed_mbps, price, data_cap_gb, ott, areas, status, created_at, updated_at`

func scanPlan(row pgx.Row) (models.Plan, error) {
	var p models.Plan
	err := row.Scan(&p.ID, &p.Name, &p.SpeedMbps, &p.Price, &p.DataCapGB, &p.OTT, &p.Areas, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *Store) ListPlans(ctx context.Context, f PlanFilter) ([]models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans`
	args := []any{models.StatusActive}
	wheres := []string{"status = $1"}
	if f.ServiceArea != "" {
		args = append(args, f.ServiceArea)
		wheres = append(wheres, fmt.Sprintf("$%d = ANY(areas)", len(args)))
	}
	if f.MinPrice != nil {
		args = append(args, *f.MinPrice)
		wheres = append(wheres, fmt.Sprintf("price >= $%d", len(args)))
	}
	if f.MaxPrice != nil {
		args = append(args, *f.MaxPrice)
		wheres = append(wheres, fmt.Sprintf("price <= $%d", len(args)))
	}
	if f.MinSpeed != nil {
		args = append(args, *f.MinSpeed)
		wheres = append(wheres, fmt.Sprintf("speed_mbps >= $%d", len(args)))
	}
	if f.MaxSpeed != nil {
		args = append(args, *f.MaxSpeed)
		wheres = append(wheres, fmt.Sprintf("speed_mbps <= $%d", len(args)))
	}
	query += " WHERE " + strings.Join(wheres, " AND ") + " ORDER BY price ASC LIMIT 200"

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) GetPlan(ctx context.Context, id string) (models.Plan, bool, error) {
	p, err := scanPlan(s.Pool.QueryRow(ctx, `SELECT `+planColumns+` FROM plans WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Plan{}, false, nil
		}
		return models.Plan{}, false, err
	}
	return p, true, nil
}
