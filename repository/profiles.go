package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goliatone/go-authsync"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrProfileUserID is returned when creating a profile without a user id.
var ErrProfileUserID = goerrors.New("profile requires a user id", goerrors.CategoryValidation).
	WithCode(goerrors.CodeBadRequest)

// ProfileRepository implements authsync.ProfileStore using Bun.
type ProfileRepository struct {
	repository.Repository[*authsync.Profile]
	db  bun.IDB
	now func() time.Time
}

var _ authsync.ProfileStore = (*ProfileRepository)(nil)

// NewProfileRepository creates a new repository.
func NewProfileRepository(db *bun.DB) *ProfileRepository {
	repo := repository.NewRepository[*authsync.Profile](db, repository.ModelHandlers[*authsync.Profile]{
		NewRecord: func() *authsync.Profile { return &authsync.Profile{} },
		GetID:     profileID,
		SetID: func(p *authsync.Profile, id uuid.UUID) {
			if p != nil && p.UserID == "" {
				p.UserID = id.String()
			}
		},
		GetIdentifier: func() string {
			return "user_id"
		},
	})

	return &ProfileRepository{
		Repository: repo,
		db:         db,
		now:        time.Now,
	}
}

// profileID maps the provider user id to a UUID. Ids that are not UUIDs get
// a stable name based one.
func profileID(p *authsync.Profile) uuid.UUID {
	if p == nil || p.UserID == "" {
		return uuid.Nil
	}
	if id, err := uuid.Parse(p.UserID); err == nil {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(p.UserID))
}

// WithTx returns a copy bound to tx.
func (r *ProfileRepository) WithTx(tx bun.IDB) *ProfileRepository {
	return &ProfileRepository{Repository: r.Repository, db: tx, now: r.now}
}

// Create inserts the profile row. An existing row for the same user is kept.
func (r *ProfileRepository) Create(ctx context.Context, profile *authsync.Profile) error {
	if profile == nil || profile.UserID == "" {
		return ErrProfileUserID
	}

	_, err := r.Repository.GetByIdentifierTx(ctx, r.db, profile.UserID)
	if err == nil {
		return nil
	}
	if !isRecordNotFound(err) {
		return err
	}

	profile.EnsureDefaults()
	if profile.MemberSince.IsZero() {
		profile.MemberSince = r.now().UTC()
	}

	_, err = r.Repository.CreateTx(ctx, r.db, profile)
	return err
}

// UpdateStatus implements authsync.ProfileStore. Writing the same status
// twice leaves the row unchanged.
func (r *ProfileRepository) UpdateStatus(ctx context.Context, userID string, status authsync.PresenceStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", authsync.ErrInvalidPresence, status)
	}

	res, err := r.db.NewUpdate().
		Model((*authsync.Profile)(nil)).
		Set("status = ?", status).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireRow(res, userID)
}

// Read implements authsync.ProfileStore.
func (r *ProfileRepository) Read(ctx context.Context, userID string) (*authsync.Profile, error) {
	profile, err := r.Repository.GetByIdentifierTx(ctx, r.db, userID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, fmt.Errorf("%w: %s", authsync.ErrProfileNotFound, userID)
		}
		return nil, err
	}
	return profile.EnsureDefaults(), nil
}

// Update implements authsync.ProfileStore. Only provided fields are written,
// an empty update is a no op.
func (r *ProfileRepository) Update(ctx context.Context, userID string, updates authsync.ProfileUpdates) error {
	if updates.Empty() {
		return nil
	}

	q := r.db.NewUpdate().
		Model((*authsync.Profile)(nil)).
		Where("user_id = ?", userID)

	if updates.DisplayName != nil {
		q = q.Set("display_name = ?", *updates.DisplayName)
	}
	if updates.PreferredLanguage != nil {
		if !updates.PreferredLanguage.Valid() {
			return fmt.Errorf("%w: %q", authsync.ErrInvalidLanguage, *updates.PreferredLanguage)
		}
		q = q.Set("preferred_language = ?", *updates.PreferredLanguage)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return err
	}
	return requireRow(res, userID)
}

func requireRow(res sql.Result, userID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", authsync.ErrProfileNotFound, userID)
	}
	return nil
}

func isRecordNotFound(err error) bool {
	return repository.IsRecordNotFound(err) || goerrors.Is(err, sql.ErrNoRows)
}
