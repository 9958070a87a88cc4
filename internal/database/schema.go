package database

import "fmt"

const usersTable = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	username      VARCHAR(150) NOT NULL UNIQUE,
	email         VARCHAR(254) NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	is_active     BOOLEAN NOT NULL DEFAULT TRUE,
	last_login_at TIMESTAMPTZ,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const staffTable = `
CREATE TABLE IF NOT EXISTS staff (
	id         UUID PRIMARY KEY,
	name       VARCHAR(150) NOT NULL,
	user_id    UUID UNIQUE REFERENCES users(id) ON DELETE SET NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const perfumesTable = `
CREATE TABLE IF NOT EXISTS perfumes (
	id          UUID PRIMARY KEY,
	brand       VARCHAR(100) NOT NULL,
	name        VARCHAR(200) NOT NULL,
	capacity_ml INTEGER NOT NULL CHECK (capacity_ml > 0),
	description TEXT,
	image_url   VARCHAR(500),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const usageLogsTable = `
CREATE TABLE IF NOT EXISTS usage_logs (
	id         UUID PRIMARY KEY,
	gender     VARCHAR(11) NOT NULL CHECK (gender IN ('Male', 'Female', 'Unspecified')),
	staff_id   UUID NOT NULL REFERENCES staff(id),
	perfume_id UUID NOT NULL REFERENCES perfumes(id) ON DELETE CASCADE,
	used_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const sessionsTable = `
CREATE TABLE IF NOT EXISTS sessions (
	id           UUID PRIMARY KEY,
	user_id      UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	token_hash   VARCHAR(64) NOT NULL,
	ip_address   VARCHAR(45),
	user_agent   TEXT,
	device_type  VARCHAR(20) NOT NULL DEFAULT 'unknown',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	expires_at   TIMESTAMPTZ NOT NULL,
	last_seen_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	revoked_at   TIMESTAMPTZ
)`

var schemaStatements = []string{
	usersTable,
	staffTable,
	perfumesTable,
	usageLogsTable,
	sessionsTable,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_lower ON users (LOWER(email))`,
	`CREATE INDEX IF NOT EXISTS idx_usage_logs_used_at ON usage_logs (used_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_usage_logs_perfume_id ON usage_logs (perfume_id)`,
	`CREATE INDEX IF NOT EXISTS idx_perfumes_brand_name ON perfumes (brand, name)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions (expires_at)`,
}

// CreateSchema creates every table and index the application needs. It is
// safe to run on every start.
func CreateSchema(db DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
