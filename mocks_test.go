package authsync_test

import (
	"context"
	"sync"

	"github.com/goliatone/go-authsync"
	"github.com/stretchr/testify/mock"
)

// MockProfileStore implements authsync.ProfileStore
type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) UpdateStatus(ctx context.Context, userID string, status authsync.PresenceStatus) error {
	args := m.Called(ctx, userID, status)
	return args.Error(0)
}

func (m *MockProfileStore) Read(ctx context.Context, userID string) (*authsync.Profile, error) {
	args := m.Called(ctx, userID)
	profile, _ := args.Get(0).(*authsync.Profile)
	return profile, args.Error(1)
}

func (m *MockProfileStore) Update(ctx context.Context, userID string, updates authsync.ProfileUpdates) error {
	args := m.Called(ctx, userID, updates)
	return args.Error(0)
}

// MockActivityStore implements authsync.ActivityStore
type MockActivityStore struct {
	mock.Mock
}

func (m *MockActivityStore) Append(ctx context.Context, userID string, activityType authsync.ActivityType, description string, metadata map[string]any) error {
	args := m.Called(ctx, userID, activityType, description, metadata)
	return args.Error(0)
}

func (m *MockActivityStore) List(ctx context.Context, userID string, limit int) ([]*authsync.ActivityLogEntry, error) {
	args := m.Called(ctx, userID, limit)
	entries, _ := args.Get(0).([]*authsync.ActivityLogEntry)
	return entries, args.Error(1)
}

type signUpCall struct {
	Email    string
	Password string
	Options  authsync.SignUpOptions
}

// fakeProvider is a scriptable identity provider. Events are delivered
// synchronously on the goroutine that calls emit.
type fakeProvider struct {
	mu           sync.Mutex
	subscribers  map[int]authsync.AuthChangeFunc
	nextSub      int
	unsubscribed int

	fetchResult  *authsync.Session
	fetchErr     error
	fetchGate    chan struct{}
	fetchStarted chan struct{}
	fetchDone    chan struct{}

	lastUser    *authsync.UserRef
	lastUserErr error

	signUpErr   error
	signUps     []signUpCall
	signInErr   error
	signOutErr  error
	signOutHook func()

	calls []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		subscribers:  map[int]authsync.AuthChangeFunc{},
		fetchStarted: make(chan struct{}, 1),
		fetchDone:    make(chan struct{}, 1),
	}
}

func (p *fakeProvider) Subscribe(fn authsync.AuthChangeFunc) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSub
	p.nextSub++
	p.subscribers[id] = fn
	p.calls = append(p.calls, "subscribe")
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subscribers, id)
		p.unsubscribed++
	}
}

func (p *fakeProvider) GetCurrentSession(ctx context.Context) (*authsync.Session, error) {
	p.mu.Lock()
	p.calls = append(p.calls, "get_session")
	gate := p.fetchGate
	p.mu.Unlock()

	p.fetchStarted <- struct{}{}
	if gate != nil {
		<-gate
	}

	p.mu.Lock()
	result, err := p.fetchResult, p.fetchErr
	p.mu.Unlock()

	defer func() { p.fetchDone <- struct{}{} }()
	return result, err
}

func (p *fakeProvider) GetCurrentUser(ctx context.Context) (*authsync.UserRef, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastUser, p.lastUserErr
}

func (p *fakeProvider) SignUp(ctx context.Context, email, password string, opts authsync.SignUpOptions) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signUps = append(p.signUps, signUpCall{Email: email, Password: password, Options: opts})
	return p.signUpErr
}

func (p *fakeProvider) SignInWithPassword(ctx context.Context, email, password string) error {
	p.mu.Lock()
	err := p.signInErr
	p.mu.Unlock()
	if err != nil {
		return err
	}
	user := &authsync.UserRef{ID: "user-" + email, Email: email}
	p.mu.Lock()
	p.lastUser = user
	p.mu.Unlock()
	p.emit(authsync.AuthEventSignedIn, &authsync.Session{User: user, RawSessionToken: "token"})
	return nil
}

func (p *fakeProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	hook, err := p.signOutHook, p.signOutErr
	p.calls = append(p.calls, "sign_out")
	p.mu.Unlock()
	if hook != nil {
		hook()
	}
	if err != nil {
		return err
	}
	p.emit(authsync.AuthEventSignedOut, nil)
	return nil
}

func (p *fakeProvider) emit(event authsync.AuthEvent, session *authsync.Session) {
	p.mu.Lock()
	subs := make([]authsync.AuthChangeFunc, 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(event, session)
	}
}

func (p *fakeProvider) subscriberCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subscribers)
}

func (p *fakeProvider) callLog() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.calls))
	copy(out, p.calls)
	return out
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
