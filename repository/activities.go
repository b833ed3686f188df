package repository

import (
	"context"
	"time"

	"github.com/goliatone/go-authsync"
	"github.com/oklog/ulid/v2"
	"github.com/uptrace/bun"
)

// ActivityRepository implements authsync.ActivityStore using Bun. Rows are
// only ever inserted.
type ActivityRepository struct {
	db  bun.IDB
	now func() time.Time
}

var _ authsync.ActivityStore = (*ActivityRepository)(nil)

// ActivityOption customizes the activity repository.
type ActivityOption func(*ActivityRepository)

// WithActivityClock injects a custom clock (useful for tests).
func WithActivityClock(clock func() time.Time) ActivityOption {
	return func(r *ActivityRepository) {
		if clock != nil {
			r.now = clock
		}
	}
}

// NewActivityRepository creates a new repository.
func NewActivityRepository(db bun.IDB, opts ...ActivityOption) *ActivityRepository {
	r := &ActivityRepository{db: db, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// WithTx returns a copy bound to tx.
func (r *ActivityRepository) WithTx(tx bun.IDB) *ActivityRepository {
	return &ActivityRepository{db: tx, now: r.now}
}

// Append implements authsync.ActivityStore.
func (r *ActivityRepository) Append(ctx context.Context, userID string, activityType authsync.ActivityType, description string, metadata map[string]any) error {
	entry := &authsync.ActivityLogEntry{
		ID:           ulid.Make().String(),
		UserID:       userID,
		ActivityType: activityType,
		Description:  description,
		Metadata:     metadata,
		CreatedAt:    r.now().UTC(),
	}

	_, err := r.db.NewInsert().
		Model(entry).
		Exec(ctx)
	return err
}

// List implements authsync.ActivityStore, newest first.
func (r *ActivityRepository) List(ctx context.Context, userID string, limit int) ([]*authsync.ActivityLogEntry, error) {
	if limit <= 0 {
		limit = authsync.DefaultActivityLimit
	}

	entries := []*authsync.ActivityLogEntry{}
	err := r.db.NewSelect().
		Model(&entries).
		Where("user_id = ?", userID).
		OrderExpr("created_at DESC, id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return entries, nil
}
