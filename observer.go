package authsync

import (
	"context"
	"sync"
)

// State is what the rendering layer sees: who is signed in and whether the
// first answer from the provider is still pending.
type State struct {
	User    *UserRef
	Session *Session
	Loading bool
}

// Authenticated reports whether a user is signed in
func (s State) Authenticated() bool {
	return s.User != nil
}

// StateListener is notified after every state write.
type StateListener func(State)

// ObserverOption customizes observer construction.
type ObserverOption func(*Observer)

// WithObserverLogger overrides the observer logger.
func WithObserverLogger(logger Logger) ObserverOption {
	return func(o *Observer) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserverActivityStore sets where sign in activity is recorded.
func WithObserverActivityStore(store ActivityStore) ObserverOption {
	return func(o *Observer) {
		o.activities = normalizeActivityStore(store)
	}
}

// WithObserverSignOutActivity records a sign_out activity for the user that
// signed out.
func WithObserverSignOutActivity() ObserverOption {
	return func(o *Observer) {
		o.recordSignOut = true
	}
}

// Observer keeps the local session state in sync with the identity provider.
//
// Start subscribes to the provider change stream first and only then issues
// the one shot session fetch. Every provider event bumps a generation
// counter, the fetch result is applied only when no event arrived while it
// was in flight. After Close no further state writes happen.
//
// Listeners run on the goroutine that wrote the state, one delivery at a
// time and in write order. A write that lands while a delivery is running is
// handed to that delivery, so listeners always end on the latest state.
type Observer struct {
	provider   IdentityProvider
	dispatcher *Dispatcher
	profiles   ProfileStore
	activities ActivityStore
	logger     Logger

	recordSignOut bool

	mu           sync.RWMutex
	state        State
	generation   uint64
	started      bool
	disposed     bool
	unsubscribe  func()
	listeners    map[uint64]StateListener
	nextListener uint64
	version      uint64

	deliverMu  sync.Mutex
	delivering bool
	pending    *delivery
	delivered  uint64

	ready     chan struct{}
	readyOnce sync.Once
}

// NewObserver returns an observer in the Initializing state.
func NewObserver(provider IdentityProvider, dispatcher *Dispatcher, profiles ProfileStore, opts ...ObserverOption) *Observer {
	o := &Observer{
		provider:   provider,
		dispatcher: dispatcher,
		profiles:   profiles,
		activities: noopActivityStore{},
		logger:     defLogger{},
		state:      State{Loading: true},
		listeners:  map[uint64]StateListener{},
		ready:      make(chan struct{}),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	return o
}

// Start installs the provider subscription and fetches the current session.
// Calling Start again is a no op.
func (o *Observer) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.disposed {
		o.mu.Unlock()
		return ErrObserverClosed
	}
	if o.started {
		o.mu.Unlock()
		return nil
	}
	o.started = true
	o.mu.Unlock()

	unsubscribe := o.provider.Subscribe(o.handleAuthChange)

	o.mu.Lock()
	if o.disposed {
		o.mu.Unlock()
		if unsubscribe != nil {
			unsubscribe()
		}
		return ErrObserverClosed
	}
	o.unsubscribe = unsubscribe
	issued := o.generation
	o.mu.Unlock()

	go o.fetchInitialSession(ctx, issued)

	return nil
}

// Close unsubscribes from the provider. Late results are dropped.
func (o *Observer) Close() {
	o.mu.Lock()
	if o.disposed {
		o.mu.Unlock()
		return
	}
	o.disposed = true
	unsubscribe := o.unsubscribe
	o.unsubscribe = nil
	o.listeners = map[uint64]StateListener{}
	o.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// State returns a snapshot of the current state.
func (o *Observer) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.snapshot()
}

// CurrentUser returns the signed in user or nil.
func (o *Observer) CurrentUser() *UserRef {
	return o.State().User
}

// Ready is closed once loading turned false for the first time.
func (o *Observer) Ready() <-chan struct{} {
	return o.ready
}

// OnChange registers fn for state updates and returns its removal func.
func (o *Observer) OnChange(fn StateListener) (remove func()) {
	if fn == nil {
		return func() {}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.disposed {
		return func() {}
	}

	id := o.nextListener
	o.nextListener++
	o.listeners[id] = fn

	return func() {
		o.mu.Lock()
		delete(o.listeners, id)
		o.mu.Unlock()
	}
}

func (o *Observer) handleAuthChange(event AuthEvent, session *Session) {
	session = session.Clone()

	o.mu.Lock()
	if o.disposed {
		o.mu.Unlock()
		return
	}
	o.generation++
	previous := o.state.User
	o.state = stateFromSession(session)
	next := o.stampLocked()
	o.mu.Unlock()

	o.logger.Debug("auth state changed", "event", event, "authenticated", next.state.Authenticated())

	o.markReady()
	o.scheduleEffects(event, session, previous)
	o.deliver(next)
}

func (o *Observer) scheduleEffects(event AuthEvent, session *Session, previous *UserRef) {
	switch event {
	case AuthEventSignedIn:
		if session == nil || session.User == nil {
			return
		}
		userID := session.User.ID
		o.schedule(taskPresenceOnline, SetPresenceTask(o.profiles, userID, PresenceOnline))
		o.schedule(taskRecordActivity, RecordActivityTask(o.activities, userID, ActivitySignIn, descriptionSignIn, nil))
	case AuthEventSignedOut:
		previousID := ""
		if previous != nil {
			previousID = previous.ID
		}
		o.schedule(taskPresenceOffline, lastUserOfflineTask(o.provider, o.profiles, previousID, o.logger))
		if o.recordSignOut && previousID != "" {
			o.schedule(taskRecordActivity, RecordActivityTask(o.activities, previousID, ActivitySignOut, descriptionSignOut, nil))
		}
	}
}

func (o *Observer) schedule(name string, task Task) {
	if o.dispatcher == nil {
		return
	}
	if err := o.dispatcher.Schedule(name, task); err != nil {
		o.logger.Warn("side effect dropped", "task", name, "error", err)
	}
}

func (o *Observer) fetchInitialSession(ctx context.Context, issued uint64) {
	session, err := o.provider.GetCurrentSession(ctx)
	if err != nil {
		o.logger.Warn("initial session fetch failed", "error", err)
		session = nil
	}
	session = session.Clone()

	o.mu.Lock()
	if o.disposed {
		o.mu.Unlock()
		o.logger.Debug("initial session dropped, observer closed")
		return
	}
	if o.generation != issued {
		o.mu.Unlock()
		o.logger.Debug("initial session dropped, newer event applied", "issued", issued)
		return
	}
	o.state = stateFromSession(session)
	next := o.stampLocked()
	o.mu.Unlock()

	o.markReady()
	o.deliver(next)
}

func (o *Observer) markReady() {
	o.readyOnce.Do(func() {
		close(o.ready)
	})
}

func (o *Observer) snapshot() State {
	return State{
		User:    o.state.Session.userRef(),
		Session: o.state.Session.Clone(),
		Loading: o.state.Loading,
	}
}

type delivery struct {
	version   uint64
	state     State
	listeners []StateListener
}

func (o *Observer) stampLocked() *delivery {
	o.version++
	return &delivery{
		version:   o.version,
		state:     o.snapshot(),
		listeners: o.listenersLocked(),
	}
}

// deliver hands d to the running delivery loop or becomes that loop.
// Deliveries older than the last one handed out are dropped.
func (o *Observer) deliver(d *delivery) {
	o.deliverMu.Lock()
	if o.pending == nil || d.version > o.pending.version {
		o.pending = d
	}
	if o.delivering {
		o.deliverMu.Unlock()
		return
	}
	o.delivering = true

	for {
		next := o.pending
		o.pending = nil
		if next == nil || next.version <= o.delivered {
			break
		}
		o.delivered = next.version
		o.deliverMu.Unlock()

		o.notify(next)

		o.deliverMu.Lock()
	}

	o.delivering = false
	o.deliverMu.Unlock()
}

func (o *Observer) listenersLocked() []StateListener {
	out := make([]StateListener, 0, len(o.listeners))
	for _, l := range o.listeners {
		out = append(out, l)
	}
	return out
}

func stateFromSession(session *Session) State {
	return State{
		User:    session.userRef(),
		Session: session,
		Loading: false,
	}
}

func (s *Session) userRef() *UserRef {
	if s == nil || s.User == nil {
		return nil
	}
	u := *s.User
	return &u
}

func (o *Observer) notify(d *delivery) {
	for _, l := range d.listeners {
		o.callListener(l, d.state)
	}
}

func (o *Observer) callListener(l StateListener, state State) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("state listener panicked", "panic", r)
		}
	}()
	l(state)
}
