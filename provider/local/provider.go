package local

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goliatone/go-authsync"
	"github.com/goliatone/go-authsync/repository"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

// SignUpHook runs inside the sign up transaction after the user row is
// inserted. Returning an error rolls the registration back.
type SignUpHook func(ctx context.Context, tx bun.IDB, user *User, opts authsync.SignUpOptions) error

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the provider logger.
func WithLogger(logger authsync.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithSigningKey sets the HS256 key for session tokens.
func WithSigningKey(key []byte) Option {
	return func(p *Provider) {
		if len(key) > 0 {
			p.tokens.signingKey = key
		}
	}
}

// WithIssuer sets the iss claim of session tokens.
func WithIssuer(issuer string) Option {
	return func(p *Provider) {
		p.tokens.issuer = issuer
	}
}

// WithTokenTTL sets how long a session token stays valid.
func WithTokenTTL(ttl time.Duration) Option {
	return func(p *Provider) {
		if ttl > 0 {
			p.tokens.ttl = ttl
		}
	}
}

// WithPasswordCost sets the bcrypt cost used for new accounts.
func WithPasswordCost(cost int) Option {
	return func(p *Provider) {
		p.passwordCost = cost
	}
}

// WithEmailConfirmation makes new accounts unconfirmed until ConfirmEmail
// is called. Unconfirmed accounts cannot sign in and sign up does not
// start a session.
func WithEmailConfirmation(required bool) Option {
	return func(p *Provider) {
		p.requireConfirmation = required
	}
}

// WithSignUpHook appends a hook run for every new account.
func WithSignUpHook(hook SignUpHook) Option {
	return func(p *Provider) {
		if hook != nil {
			p.hooks = append(p.hooks, hook)
		}
	}
}

// WithClock injects a custom clock (useful for tests).
func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		if now != nil {
			p.now = now
		}
	}
}

// ProfileHook creates the profile row for a new account from the sign up
// metadata inside the sign up transaction, the same way a hosted provider
// trigger would.
func ProfileHook(profiles *repository.ProfileRepository) SignUpHook {
	return func(ctx context.Context, tx bun.IDB, user *User, opts authsync.SignUpOptions) error {
		profile := &authsync.Profile{
			UserID:      user.ID.String(),
			Status:      authsync.PresenceOffline,
			MemberSince: user.CreatedAt,
		}
		if name, ok := opts.Data["display_name"].(string); ok {
			profile.DisplayName = name
		}
		if lang, ok := opts.Data["preferred_language"].(string); ok && authsync.Language(lang).Valid() {
			profile.PreferredLanguage = authsync.Language(lang)
		}
		return profiles.WithTx(tx).Create(ctx, profile)
	}
}

const descriptionSignUp = "Account created"

// ActivityHook records a sign_up activity for the new account in the same
// transaction.
func ActivityHook(activities *repository.ActivityRepository) SignUpHook {
	return func(ctx context.Context, tx bun.IDB, user *User, _ authsync.SignUpOptions) error {
		return activities.WithTx(tx).
			Append(ctx, user.ID.String(), authsync.ActivitySignUp, descriptionSignUp, nil)
	}
}

// Provider implements authsync.IdentityProvider on top of a bun database.
type Provider struct {
	db                  *bun.DB
	users               users
	tokens              tokenService
	logger              authsync.Logger
	passwordCost        int
	requireConfirmation bool
	hooks               []SignUpHook
	now                 func() time.Time

	dummyOnce sync.Once
	dummy     string

	mu          sync.Mutex
	session     *authsync.Session
	lastUser    *authsync.UserRef
	subscribers map[int]authsync.AuthChangeFunc
	nextID      int
}

var _ authsync.IdentityProvider = (*Provider)(nil)

// New creates a provider. A random signing key is generated unless
// WithSigningKey is given, so tokens do not survive a restart.
func New(db *bun.DB, opts ...Option) *Provider {
	p := &Provider{
		db:    db,
		users: newUsers(db),
		tokens: tokenService{
			signingKey: []byte(uuid.NewString()),
			issuer:     "authsync-local",
			ttl:        time.Hour,
		},
		logger:       authsync.DefaultLogger(),
		passwordCost: bcrypt.DefaultCost,
		now:          time.Now,
		subscribers:  map[int]authsync.AuthChangeFunc{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Subscribe implements authsync.IdentityProvider. Callbacks run on the
// goroutine that caused the change, after the provider released its lock.
func (p *Provider) Subscribe(fn authsync.AuthChangeFunc) func() {
	if fn == nil {
		return func() {}
	}

	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subscribers[id] = fn
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subscribers, id)
			p.mu.Unlock()
		})
	}
}

// GetCurrentSession implements authsync.IdentityProvider. An expired session
// is dropped and reported as nil.
func (p *Provider) GetCurrentSession(ctx context.Context) (*authsync.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session == nil {
		return nil, nil
	}
	if exp := p.session.ExpiresAt; exp != nil && !p.now().Before(*exp) {
		p.logger.Debug("session expired", "user_id", p.session.User.ID)
		p.session = nil
		return nil, nil
	}
	return p.session.Clone(), nil
}

// GetCurrentUser implements authsync.IdentityProvider. After SignOut it keeps
// returning the user that was signed in last.
func (p *Provider) GetCurrentUser(ctx context.Context) (*authsync.UserRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session != nil && p.session.User != nil {
		u := *p.session.User
		return &u, nil
	}
	if p.lastUser != nil {
		u := *p.lastUser
		return &u, nil
	}
	return nil, nil
}

// SignUp implements authsync.IdentityProvider. opts.Data is stored as the
// account metadata and handed to every sign up hook.
func (p *Provider) SignUp(ctx context.Context, email, password string, opts authsync.SignUpOptions) error {
	email = normalizeEmail(email)
	if email == "" {
		return ErrEmptyEmail
	}

	hash, err := HashPassword(password, p.passwordCost)
	if err != nil {
		return err
	}

	now := p.now().UTC()
	user := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Metadata:     opts.Data,
		CreatedAt:    now,
	}
	if !p.requireConfirmation {
		user.EmailConfirmedAt = &now
	}

	err = p.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := p.users.insert(ctx, tx, user); err != nil {
			return err
		}
		for _, hook := range p.hooks {
			if err := hook(ctx, tx, user, opts); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrUserAlreadyRegistered) {
			p.logger.Error("SignUp failed to register user", "error", err)
		}
		return err
	}

	p.logger.Info("user registered", "user_id", user.ID.String(), "redirect_to", opts.EmailRedirectTo)

	if p.requireConfirmation {
		return nil
	}
	return p.startSession(ctx, user)
}

// ConfirmEmail marks the account as confirmed so it can sign in.
func (p *Provider) ConfirmEmail(ctx context.Context, email string) error {
	user, err := p.users.byEmail(ctx, p.db, email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidCredentials
	}
	return p.users.touch(ctx, p.db, user.ID, "email_confirmed_at", p.now().UTC())
}

// SignInWithPassword implements authsync.IdentityProvider. Unknown emails and
// wrong passwords both yield ErrInvalidCredentials.
func (p *Provider) SignInWithPassword(ctx context.Context, email, password string) error {
	user, err := p.users.byEmail(ctx, p.db, email)
	if err != nil {
		p.logger.Error("SignIn failed to load user", "error", err)
		return err
	}

	if user == nil {
		_ = ComparePasswordAndHash(password, p.dummyHash())
		return ErrInvalidCredentials
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		p.logger.Debug("SignIn password mismatch", "user_id", user.ID.String())
		return err
	}

	if !user.confirmed() {
		return ErrEmailNotConfirmed
	}

	if err := p.users.touch(ctx, p.db, user.ID, "last_sign_in_at", p.now().UTC()); err != nil {
		p.logger.Warn("SignIn failed to track login", "user_id", user.ID.String(), "error", err)
	}

	return p.startSession(ctx, user)
}

// SignOut implements authsync.IdentityProvider. Signing out without a
// session is a no op and emits nothing.
func (p *Provider) SignOut(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	if p.session == nil {
		p.mu.Unlock()
		return nil
	}
	if p.session.User != nil {
		u := *p.session.User
		p.lastUser = &u
	}
	p.session = nil
	subs := p.snapshotSubscribers()
	p.mu.Unlock()

	notify(subs, authsync.AuthEventSignedOut, nil)
	return nil
}

// RefreshSession issues a new token for the active session and emits
// TOKEN_REFRESHED.
func (p *Provider) RefreshSession(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	current := p.session
	p.mu.Unlock()
	if current == nil || current.User == nil {
		return ErrNoSession
	}

	id, err := uuid.Parse(current.User.ID)
	if err != nil {
		return err
	}
	return p.issue(&User{ID: id, Email: current.User.Email}, authsync.AuthEventTokenRefreshed)
}

// VerifyToken returns the user a session token was issued for.
func (p *Provider) VerifyToken(raw string) (*authsync.UserRef, error) {
	claims, err := p.tokens.validate(raw, p.now())
	if err != nil {
		return nil, err
	}
	return &authsync.UserRef{ID: claims.Subject, Email: claims.Email}, nil
}

func (p *Provider) startSession(ctx context.Context, user *User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.issue(user, authsync.AuthEventSignedIn)
}

func (p *Provider) issue(user *User, event authsync.AuthEvent) error {
	token, expires, err := p.tokens.sign(user, p.now())
	if err != nil {
		return err
	}

	session := &authsync.Session{
		User:            user.Ref(),
		RawSessionToken: token,
		ExpiresAt:       &expires,
	}

	p.mu.Lock()
	p.session = session
	p.lastUser = user.Ref()
	subs := p.snapshotSubscribers()
	p.mu.Unlock()

	notify(subs, event, session)
	return nil
}

func (p *Provider) snapshotSubscribers() []authsync.AuthChangeFunc {
	subs := make([]authsync.AuthChangeFunc, 0, len(p.subscribers))
	for i := 0; i < p.nextID; i++ {
		if fn, ok := p.subscribers[i]; ok {
			subs = append(subs, fn)
		}
	}
	return subs
}

func notify(subs []authsync.AuthChangeFunc, event authsync.AuthEvent, session *authsync.Session) {
	for _, fn := range subs {
		fn(event, session.Clone())
	}
}

// dummyHash is compared against when the email is unknown. It uses the
// configured cost so both sign in branches take the same time.
func (p *Provider) dummyHash() string {
	p.dummyOnce.Do(func() {
		p.dummy = RandomPasswordHash(p.passwordCost)
	})
	return p.dummy
}
