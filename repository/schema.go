package repository

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

const (
	createProfilesSQL = `CREATE TABLE IF NOT EXISTS profiles (
    user_id TEXT NOT NULL PRIMARY KEY,
    display_name TEXT,
    preferred_language TEXT NOT NULL DEFAULT 'english',
    status TEXT NOT NULL DEFAULT 'offline',
    member_since TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`
	createActivityLogsSQL = `CREATE TABLE IF NOT EXISTS activity_logs (
    id TEXT NOT NULL PRIMARY KEY,
    user_id TEXT NOT NULL,
    activity_type TEXT NOT NULL,
    description TEXT,
    metadata TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`
	createActivityLogsIndexSQL = `CREATE INDEX IF NOT EXISTS idx_activity_logs_user_created
    ON activity_logs (user_id, created_at DESC);`
)

// CreateSchema creates the profiles and activity_logs tables if missing.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	for _, stmt := range []string{createProfilesSQL, createActivityLogsSQL, createActivityLogsIndexSQL} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
