package db

import (
	"context"
	"time"

	"github.com/fibrelink/backend/internal/models"
	"github.com/fibrelink/backend/internal/utils"
)

// Seed inserts the minimal core data set (plans, service areas, engineers)
// if absent. Keyed on natural identifiers so restarts never duplicate rows.
func (s *Store) Seed(ctx context.Context) error {
	ts := time.Now().UTC()

	plans := []models.Plan{
		{Name: "Starter 100", SpeedMbps: 100, Price: 699, OTT: []string{}, Areas: []string{"560034", "560001"}, Status: models.StatusActive},
		{Name: "Night Streaming 300", SpeedMbps: 300, Price: 999, OTT: []string{"ExampleOTT"}, Areas: []string{"560034"}, Status: models.StatusActive},
		{Name: "Ultra 500", SpeedMbps: 500, Price: 1499, OTT: []string{"ExampleOTT", "ExampleSports"}, Areas: []string{"560001", "560034"}, Status: models.StatusActive},
	}
	for _, p := range plans {
		_, err := s.Pool.Exec(ctx, `
			INSERT INTO plans (id, name, speed_mbps, price, data_cap_gb, ott, areas, status, created_at, updated_at)
			SELECT $1, $2, $3, $4, NULL, $5, $6, $7, $8, $8
			WHERE NOT EXISTS (SELECT 1 FROM plans WHERE name = $2)
		`, utils.NewID(), p.Name, p.SpeedMbps, p.Price, p.OTT, p.Areas, p.Status, ts)
		if err != nil {
			return err
		}
	}

	areas := []models.ServiceArea{
		{Pincode: "560034", City: "Bengaluru", Status: models.StatusActive},
		{Pincode: "560001", City: "Bengaluru", Status: models.StatusActive},
	}
	for _, a := range areas {
		_, err := s.Pool.Exec(ctx, `
			INSERT INTO service_areas (pincode, city, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $4)
			ON CONFLICT (pincode) DO NOTHING
		`, a.Pincode, a.City, a.Status, ts)
		if err != nil {
			return err
		}
	}

	engineers := []models.Engineer{
		{Name: "Asha R", Phone: "+91-90000-00001", Skills: []string{"install", "support"}, Areas: []string{"560034"}, Status: models.StatusActive},
		{Name: "Rohit K", Phone: "+91-90000-00002", Skills: []string{"install"}, Areas: []string{"560001", "560034"}, Status: models.StatusActive},
	}
	for _, e := range engineers {
		_, err := s.Pool.Exec(ctx, `
			INSERT INTO engineers (id, name, phone, skills, areas, workload, status, created_at, updated_at)
			SELECT $1, $2, $3, $4, $5, 0, $6, $7, $7
			WHERE NOT EXISTS (SELECT 1 FROM engineers WHERE phone = $3)
		`, utils.NewID(), e.Name, e.Phone, e.Skills, e.Areas, e.Status, ts)
		if err != nil {
			return err
		}
	}

	return nil
}
