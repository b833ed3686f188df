package repository

import (
	"context"
	"database/sql"
	"log"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// Manager exposes the session stores sharing one database handle.
type Manager interface {
	repository.Validator
	repository.TransactionManager
	Profiles() *ProfileRepository
	Activities() *ActivityRepository
}

type mngr struct {
	db         *bun.DB
	profiles   *ProfileRepository
	activities *ActivityRepository
}

// NewManager builds the repositories for db.
func NewManager(db *bun.DB, opts ...ActivityOption) Manager {
	return &mngr{
		db:         db,
		profiles:   NewProfileRepository(db),
		activities: NewActivityRepository(db, opts...),
	}
}

func (m mngr) Validate() error {
	if m.db == nil {
		return goerrors.New("repository database should be initialized", goerrors.CategoryInternal)
	}

	if m.profiles == nil {
		return goerrors.New("repository profiles should be initialized", goerrors.CategoryInternal)
	}

	if m.activities == nil {
		return goerrors.New("repository activities should be initialized", goerrors.CategoryInternal)
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Profiles() *ProfileRepository {
	return m.profiles
}

func (m mngr) Activities() *ActivityRepository {
	return m.activities
}
