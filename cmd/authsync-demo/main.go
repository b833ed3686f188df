// Command authsync-demo wires the session core against a sqlite database and
// the local identity provider, then runs a scripted dashboard session.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goliatone/go-authsync"
	"github.com/goliatone/go-authsync/activitymap"
	"github.com/goliatone/go-authsync/provider/local"
	"github.com/goliatone/go-authsync/repository"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"go.uber.org/zap"
)

type App struct {
	config *Config
	db     *bun.DB
	repo   repository.Manager
	idp    *local.Provider
	svc    *authsync.Service
	logger zapLogger
}

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := newLogger(cfg.Debug)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &App{config: cfg, logger: zapLogger{s: zl.Sugar()}}
	if err := app.init(ctx); err != nil {
		zl.Fatal("failed to initialize", zap.Error(err))
	}

	err = app.run(ctx)
	app.shutdown()
	if err != nil {
		zl.Error("scenario failed", zap.Error(err))
		os.Exit(1)
	}
}

func (a *App) init(ctx context.Context) error {
	sqldb, err := sql.Open(sqliteshim.ShimName, a.config.DatabaseDSN)
	if err != nil {
		return err
	}
	sqldb.SetMaxOpenConns(1)

	a.db = bun.NewDB(sqldb, sqlitedialect.New())
	if err := local.CreateSchema(ctx, a.db); err != nil {
		return err
	}
	if err := repository.CreateSchema(ctx, a.db); err != nil {
		return err
	}

	a.repo = repository.NewManager(a.db)
	a.repo.MustValidate()

	idpOpts := []local.Option{
		local.WithLogger(a.logger.named("idp")),
		local.WithTokenTTL(a.config.TTL()),
		local.WithPasswordCost(a.config.BcryptCost),
		local.WithSignUpHook(local.ProfileHook(a.repo.Profiles())),
		local.WithSignUpHook(local.ActivityHook(a.repo.Activities())),
	}
	if a.config.SigningKey != "" {
		idpOpts = append(idpOpts, local.WithSigningKey([]byte(a.config.SigningKey)))
	}
	a.idp = local.New(a.db, idpOpts...)

	a.svc = authsync.NewService(a.idp, a.repo.Profiles(), a.repo.Activities(),
		authsync.WithLogger(a.logger.named("session")),
		authsync.WithConfig(a.config.Session()),
		authsync.WithSignOutActivity(),
	)
	a.svc.OnChange(func(s authsync.State) {
		if s.User != nil {
			a.logger.Info("session changed", "user_id", s.User.ID, "email", s.User.Email)
			return
		}
		a.logger.Info("session changed", "authenticated", false, "loading", s.Loading)
	})

	return a.svc.Start(ctx)
}

func (a *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.svc != nil {
		if err := a.svc.Close(ctx); err != nil {
			a.logger.Warn("side effects not drained", "error", err)
		}
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) run(ctx context.Context) error {
	select {
	case <-a.svc.Ready():
	case <-ctx.Done():
		return ctx.Err()
	}

	err := a.svc.SignUp(ctx, authsync.SignUpRequest{
		Email:             "alice@example.com",
		Password:          "correct horse battery staple",
		DisplayName:       "Alice",
		PreferredLanguage: authsync.LanguageFrench,
	})
	if err != nil {
		return fmt.Errorf("sign up: %w", err)
	}

	if err := a.svc.SignOut(ctx); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}

	if err := a.svc.SignIn(ctx, "alice@example.com", "wrong"); authsync.IsInvalidCredentialsError(err) {
		a.logger.Info("wrong password rejected")
	}

	if err := a.svc.SignIn(ctx, "alice@example.com", "correct horse battery staple"); err != nil {
		return fmt.Errorf("sign in: %w", err)
	}

	name := "Alice B."
	if err := a.svc.UpdateProfile(ctx, authsync.ProfileUpdates{DisplayName: &name}); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	if err := a.svc.Dispatcher().Flush(ctx); err != nil {
		return err
	}

	profile, err := a.svc.Profile(ctx)
	if err != nil {
		return err
	}
	a.logger.Info("profile",
		"display_name", profile.DisplayName,
		"language", profile.PreferredLanguage,
		"status", profile.Status,
		"member_since", profile.MemberSince,
	)

	entries, err := a.svc.Activities(ctx, 0)
	if err != nil {
		return err
	}
	for _, record := range activitymap.MapAll(entries) {
		a.logger.Info("activity",
			"label", record.Label,
			"type", record.TypeLabel,
			"badge", record.Badge,
			"at", record.OccurredAt,
		)
	}

	return a.svc.SignOut(ctx)
}
