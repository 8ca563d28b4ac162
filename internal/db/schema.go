package db

import "context"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		mobile_enc TEXT NOT NULL,
		email_enc TEXT,
		roles TEXT[] NOT NULL DEFAULT '{user}',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_users_mobile_enc ON users (mobile_enc)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_users_email_enc ON users (email_enc) WHERE email_enc IS NOT NULL`,

	`CREATE TABLE IF NOT EXISTS plans (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		speed_mbps INT NOT NULL,
		price INT NOT NULL,
		data_cap_gb INT,
		ott TEXT[] NOT NULL DEFAULT '{}',
		areas TEXT[] NOT NULL DEFAULT '{}',
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_plans_areas ON plans USING GIN (areas)`,
	`CREATE INDEX IF NOT EXISTS idx_plans_price ON plans (price)`,
	`CREATE INDEX IF NOT EXISTS idx_plans_speed ON plans (speed_mbps)`,
	`CREATE INDEX IF NOT EXISTS idx_plans_status ON plans (status)`,

	`CREATE TABLE IF NOT EXISTS service_areas (
		pincode TEXT PRIMARY KEY,
		city TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_servicearea_status ON service_areas (status)`,

	`CREATE TABLE IF NOT EXISTS engineers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL,
		skills TEXT[] NOT NULL DEFAULT '{}',
		areas TEXT[] NOT NULL DEFAULT '{}',
		workload INT NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_engineers_areas ON engineers USING GIN (areas)`,
	`CREATE INDEX IF NOT EXISTS idx_engineers_skills ON engineers USING GIN (skills)`,
	`CREATE INDEX IF NOT EXISTS idx_engineers_status_workload ON engineers (status, workload)`,

	`CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		plan_id TEXT NOT NULL,
		price INT NOT NULL,
		address JSONB NOT NULL,
		pincode TEXT NOT NULL,
		status TEXT NOT NULL,
		slot TEXT NOT NULL DEFAULT '',
		assigned_engineer_id TEXT,
		timeline JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders (user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (status)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_assigned_engineer ON orders (assigned_engineer_id)`,

	`CREATE TABLE IF NOT EXISTS tickets (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		issue_type TEXT NOT NULL,
		severity TEXT NOT NULL,
		status TEXT NOT NULL,
		assigned_to JSONB,
		notes JSONB NOT NULL DEFAULT '[]',
		attachments JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_user ON tickets (user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets (status)`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_issue_type ON tickets (issue_type)`,

	`CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		last_message_at TIMESTAMPTZ NOT NULL,
		meta JSONB NOT NULL DEFAULT '{}'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations (user_id, last_message_at DESC)`,

	`CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL,
		sender TEXT NOT NULL,
		text TEXT,
		payload JSONB,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages (conversation_id, id DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_created_at ON messages (created_at DESC)`,
}

// EnsureSchema creates tables and the indexes backing the portal's query
// patterns (by owner, by status, by area/skill/workload, by
// conversation+recency). Idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.Pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
