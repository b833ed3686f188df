package local

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/goliatone/go-authsync"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const createUsersSQL = `CREATE TABLE IF NOT EXISTS users (
    id TEXT NOT NULL PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    metadata TEXT,
    email_confirmed_at TIMESTAMP,
    last_sign_in_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// User is an account known to the local provider.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID               uuid.UUID      `bun:"id,pk,type:uuid" json:"id"`
	Email            string         `bun:"email,notnull,unique" json:"email"`
	PasswordHash     string         `bun:"password_hash,notnull" json:"-"`
	Metadata         map[string]any `bun:"metadata" json:"metadata,omitempty"`
	EmailConfirmedAt *time.Time     `bun:"email_confirmed_at,nullzero" json:"email_confirmed_at,omitempty"`
	LastSignInAt     *time.Time     `bun:"last_sign_in_at,nullzero" json:"last_sign_in_at,omitempty"`
	CreatedAt        time.Time      `bun:"created_at,notnull" json:"created_at"`
}

// Ref converts the account into the reference the session core works with.
func (u *User) Ref() *authsync.UserRef {
	if u == nil {
		return nil
	}
	return &authsync.UserRef{ID: u.ID.String(), Email: u.Email}
}

func (u *User) confirmed() bool {
	return u.EmailConfirmedAt != nil && !u.EmailConfirmedAt.IsZero()
}

// CreateSchema creates the users table if missing.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	if _, err := db.ExecContext(ctx, createUsersSQL); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "create users schema")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type users struct {
	repository.Repository[*User]
}

func newUsers(db *bun.DB) users {
	return users{
		Repository: repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
			NewRecord: func() *User { return &User{} },
			GetID: func(u *User) uuid.UUID {
				if u == nil {
					return uuid.Nil
				}
				return u.ID
			},
			SetID: func(u *User, id uuid.UUID) {
				if u != nil {
					u.ID = id
				}
			},
			GetIdentifier: func() string {
				return "email"
			},
		}),
	}
}

// byEmail returns nil when no account uses email.
func (u users) byEmail(ctx context.Context, db bun.IDB, email string) (*User, error) {
	user, err := u.GetByIdentifierTx(ctx, db, normalizeEmail(email))
	if err != nil {
		if repository.IsRecordNotFound(err) || goerrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (u users) insert(ctx context.Context, db bun.IDB, user *User) error {
	existing, err := u.byEmail(ctx, db, user.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrUserAlreadyRegistered
	}
	_, err = u.CreateTx(ctx, db, user)
	return err
}

func (users) touch(ctx context.Context, db bun.IDB, id uuid.UUID, column string, at time.Time) error {
	_, err := db.NewUpdate().
		Model((*User)(nil)).
		Set("? = ?", bun.Ident(column), at).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
