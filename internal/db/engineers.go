package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fibrelink/backend/internal/models"
)

const engineerColumns = `id, name, phone, skills, areas, workload, status, created_at, updated_at`

func scanEngineer(row pgx.Row) (models.Engineer, error) {
	var e models.Engineer
	err := row.Scan(&e.ID, &e.Name, &e.Phone, &e.Skills, &e.Areas, &e.Workload, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// PickInstallEngineer selects the lowest-workload ACTIVE engineer with the
// install skill serving pincode. The id tiebreak is arbitrary but
// deterministic; it is not load-bearing.
func (s *Store) PickInstallEngineer(ctx context.Context, pincode string) (models.Engineer, bool, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT `+engineerColumns+` FROM engineers
		WHERE status = $1 AND $2 = ANY(areas) AND 'install' = ANY(skills)
		ORDER BY workload ASC, id ASC
		LIMIT 1
	`, models.StatusActive, pincode)
	e, err := scanEngineer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Engineer{}, false, nil
		}
		return models.Engineer{}, false, err
	}
	return e, true, nil
}

// AddEngineerWorkload bumps an engineer's workload counter by delta, floored
// at zero, and stamps the update time. One atomic row update.
func (s *Store) AddEngineerWorkload(ctx context.Context, id string, delta int) error {
	_, err := s.Pool.Exec(ctx, `
		UPDATE engineers
		SET workload = GREATEST(workload + $1, 0), updated_at = $2
		WHERE id = $3
	`, delta, time.Now().UTC(), id)
	return err
}
