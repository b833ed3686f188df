package authsync

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// Option customizes the session service.
type Option func(*Service)

// WithLogger sets the logger shared by the service, observer and dispatcher.
func WithLogger(logger Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithConfig sets service configuration.
func WithConfig(cfg Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.config = cfg
		}
	}
}

// WithDispatcher uses an externally owned dispatcher. The service will not
// close it.
func WithDispatcher(d *Dispatcher) Option {
	return func(s *Service) {
		if d != nil {
			s.dispatcher = d
			s.ownsDispatcher = false
		}
	}
}

// WithSignOutActivity records a sign_out activity every time a user signs out.
func WithSignOutActivity() Option {
	return func(s *Service) {
		s.recordSignOut = true
	}
}

// Service is the session object built once at the composition root and
// handed to whatever renders {user, profile, activities}.
type Service struct {
	provider       IdentityProvider
	profiles       ProfileStore
	activities     ActivityStore
	observer       *Observer
	dispatcher     *Dispatcher
	ownsDispatcher bool
	config         Config
	logger         Logger
	recordSignOut  bool
}

// NewService wires the observer and dispatcher around provider and stores.
func NewService(provider IdentityProvider, profiles ProfileStore, activities ActivityStore, opts ...Option) *Service {
	s := &Service{
		provider:       provider,
		profiles:       profiles,
		activities:     normalizeActivityStore(activities),
		config:         DefaultConfig{},
		logger:         defLogger{},
		ownsDispatcher: true,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if s.dispatcher == nil {
		s.dispatcher = NewDispatcher(
			WithDispatcherLogger(s.logger),
			WithTaskTimeout(s.config.GetTaskTimeout()),
		)
		s.ownsDispatcher = true
	}

	observerOpts := []ObserverOption{
		WithObserverLogger(s.logger),
		WithObserverActivityStore(s.activities),
	}
	if s.recordSignOut {
		observerOpts = append(observerOpts, WithObserverSignOutActivity())
	}
	s.observer = NewObserver(provider, s.dispatcher, profiles, observerOpts...)

	return s
}

// Start activates the session observer.
func (s *Service) Start(ctx context.Context) error {
	return s.observer.Start(ctx)
}

// Close tears down the observer and drains pending side effects.
func (s *Service) Close(ctx context.Context) error {
	s.observer.Close()
	if !s.ownsDispatcher {
		return nil
	}
	return s.dispatcher.Close(ctx)
}

func (s *Service) State() State {
	return s.observer.State()
}

func (s *Service) OnChange(fn StateListener) (remove func()) {
	return s.observer.OnChange(fn)
}

func (s *Service) Ready() <-chan struct{} {
	return s.observer.Ready()
}

func (s *Service) Dispatcher() *Dispatcher {
	return s.dispatcher
}

// SignUp registers a new account. The confirmation redirect is derived from
// the configured site origin.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) error {
	if req.PreferredLanguage == "" {
		req.PreferredLanguage = DefaultLanguage
	}
	if err := req.Validate(); err != nil {
		return validationError(err, "invalid sign up request")
	}

	err := s.provider.SignUp(ctx, req.Email, req.Password, SignUpOptions{
		EmailRedirectTo: RedirectURL(s.config),
		Data:            req.Metadata(),
	})
	if err != nil {
		s.logger.Info("sign up rejected", "email", req.Email, "error", err)
		return wrapError(err, goerrors.CategoryAuth, "sign up failed")
	}
	return nil
}

// SignIn authenticates with email and password. State changes arrive through
// the provider change stream, not from here.
func (s *Service) SignIn(ctx context.Context, email, password string) error {
	req := SignInRequest{Email: email, Password: password}
	if err := req.Validate(); err != nil {
		return validationError(err, "invalid sign in request")
	}

	if err := s.provider.SignInWithPassword(ctx, email, password); err != nil {
		s.logger.Info("sign in rejected", "email", email, "error", err)
		return wrapError(err, goerrors.CategoryAuth, "sign in failed")
	}
	return nil
}

// SignOut marks the current user offline and signs out of the provider.
//
// The offline write is scheduled before the provider call so the user id is
// captured while it is still known. The SIGNED_OUT event schedules a second
// offline write, which the store absorbs since status is a single field.
func (s *Service) SignOut(ctx context.Context) error {
	if user := s.observer.CurrentUser(); user != nil {
		s.schedule(taskPresenceOffline, SetPresenceTask(s.profiles, user.ID, PresenceOffline))
	}

	if err := s.provider.SignOut(ctx); err != nil {
		s.logger.Warn("provider sign out failed", "error", err)
		return wrapError(err, goerrors.CategoryExternal, "sign out failed")
	}
	return nil
}

// UpdateProfile writes the provided fields for the current user and, on
// success, records a profile_update activity with the fields as metadata.
// The activity is recorded even when updates is empty.
func (s *Service) UpdateProfile(ctx context.Context, updates ProfileUpdates) error {
	user := s.observer.CurrentUser()
	if user == nil {
		return ErrNoUser
	}

	if err := updates.Validate(); err != nil {
		return validationError(err, "invalid profile update")
	}

	if err := s.profiles.Update(ctx, user.ID, updates); err != nil {
		s.logger.Warn("profile update failed", "user_id", user.ID, "error", err)
		return wrapError(err, goerrors.CategoryOperation, "update profile failed")
	}

	s.schedule(taskRecordActivity, RecordActivityTask(
		s.activities,
		user.ID,
		ActivityProfileUpdate,
		descriptionProfileUpdate,
		updates.Fields(),
	))

	return nil
}

// Profile reads the current user's profile.
func (s *Service) Profile(ctx context.Context) (*Profile, error) {
	user := s.observer.CurrentUser()
	if user == nil {
		return nil, ErrNoUser
	}

	profile, err := s.profiles.Read(ctx, user.ID)
	if err != nil {
		return nil, wrapError(err, goerrors.CategoryOperation, "read profile failed")
	}
	return profile, nil
}

// Activities lists the current user's activity, newest first. A limit of
// zero or less uses the configured page size.
func (s *Service) Activities(ctx context.Context, limit int) ([]*ActivityLogEntry, error) {
	user := s.observer.CurrentUser()
	if user == nil {
		return nil, ErrNoUser
	}

	if limit <= 0 {
		limit = s.config.GetActivityLimit()
	}

	entries, err := s.activities.List(ctx, user.ID, limit)
	if err != nil {
		return nil, wrapError(err, goerrors.CategoryOperation, "list activities failed")
	}
	return entries, nil
}

func (s *Service) schedule(name string, task Task) {
	if err := s.dispatcher.Schedule(name, task); err != nil {
		s.logger.Warn("side effect dropped", "task", name, "error", err)
	}
}
