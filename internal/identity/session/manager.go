// Package session keeps the in-memory view of who is signed in and what
// their profile looks like.
//
// Two sources feed the Manager: the one-shot read of the persisted session
// at startup and the credential store's auth-event subscription. Both funnel
// into apply, and every apply is stamped with a generation number; a result
// whose generation is no longer current is dropped.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/talentmatch/internal/common"
	"github.com/dmitrijs2005/talentmatch/internal/identity"
	"github.com/dmitrijs2005/talentmatch/internal/identity/access"
	"github.com/dmitrijs2005/talentmatch/internal/logging"
)

var ErrAlreadyBootstrapped = errors.New("session already bootstrapped")

// Credentials is the credential store as seen by the Manager.
type Credentials interface {
	// CurrentSession returns the persisted session, or nil when signed out.
	CurrentSession(ctx context.Context) (*identity.Session, error)
	SignOut(ctx context.Context) error
	Subscribe(fn identity.Listener) identity.Subscription
}

// Profiles is the profile record store.
type Profiles interface {
	Get(ctx context.Context, identityID string) (*identity.Profile, error)
	Update(ctx context.Context, identityID string, patch identity.ProfilePatch) (*identity.Profile, error)
}

// State is a snapshot of the Manager.
type State struct {
	Session *identity.Session
	Profile *identity.Profile
	Loading bool
}

// SignedIn reports whether a session is present.
func (s State) SignedIn() bool { return s.Session != nil }

type Manager struct {
	credentials Credentials
	profiles    Profiles
	logger      logging.Logger
	device      identity.Device
	now         func() time.Time

	mu           sync.Mutex
	gen          uint64
	state        State
	sub          identity.Subscription
	bootstrapped bool
	closed       bool
}

type Option func(*Manager)

// WithDevice sets the last-seen metadata recorded on every sign-in.
func WithDevice(d identity.Device) Option { return func(m *Manager) { m.device = d } }

func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

func New(credentials Credentials, profiles Profiles, logger logging.Logger, opts ...Option) *Manager {
	m := &Manager{
		credentials: credentials,
		profiles:    profiles,
		logger:      logger.With("module", "session"),
		now:         time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Bootstrap subscribes to auth events and then reads the persisted session.
// It may be called once. A credential store failure leaves the Manager
// signed out and is logged, not returned. If anything panics the
// subscription is released before the panic continues.
func (m *Manager) Bootstrap(ctx context.Context) error {
	m.mu.Lock()
	if m.bootstrapped {
		m.mu.Unlock()
		return ErrAlreadyBootstrapped
	}
	m.bootstrapped = true
	m.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			m.Teardown()
			panic(r)
		}
	}()

	sub := m.credentials.Subscribe(m.onEvent)
	m.mu.Lock()
	m.sub = sub
	m.mu.Unlock()

	// Reserved before the read so that any event arriving while it is in
	// flight supersedes its result.
	gen := m.reserve()

	sess, err := m.credentials.CurrentSession(ctx)
	if err != nil {
		m.logger.Error(ctx, "restore session failed, continuing signed out", "error", err)
		m.commit(gen, State{})
		return nil
	}

	m.apply(ctx, gen, sess, false)
	return nil
}

// Teardown releases the auth-event subscription. Safe to call repeatedly.
func (m *Manager) Teardown() {
	m.mu.Lock()
	sub := m.sub
	m.sub = nil
	m.closed = true
	m.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}

// SignOut asks the credential store to invalidate the session and then
// clears local state whatever the store answered. A store that no longer
// knows the session is treated as success.
func (m *Manager) SignOut(ctx context.Context) error {
	err := m.credentials.SignOut(ctx)

	m.commit(m.reserve(), State{})

	if err == nil || alreadySignedOut(err) {
		return nil
	}
	m.logger.Warn(ctx, "sign-out not confirmed by credential store, local session cleared", "error", err)
	return common.Normalize(err, common.ErrStoreUnavailable)
}

// ApplySession installs sess, or clears the state when sess is nil, under a
// new generation. A result for an older generation still in flight is
// discarded when it completes.
func (m *Manager) ApplySession(ctx context.Context, sess *identity.Session) {
	m.apply(ctx, m.reserve(), sess, false)
}

// Snapshot returns the current state.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Profile returns the current profile or nil.
func (m *Manager) Profile() *identity.Profile {
	return m.Snapshot().Profile
}

// IsAdmin evaluates the access gate against the current profile.
func (m *Manager) IsAdmin() bool {
	return access.IsAdmin(m.Profile())
}

func (m *Manager) onEvent(ctx context.Context, ev identity.AuthEvent) {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return
	}

	gen := m.reserve()
	switch ev.Kind {
	case identity.EventSignedOut:
		m.commit(gen, State{})
	case identity.EventSignedIn:
		m.apply(ctx, gen, ev.Session, true)
	case identity.EventTokenRefreshed:
		m.apply(ctx, gen, ev.Session, false)
	default:
		m.logger.Debug(ctx, "ignoring auth event", "kind", ev.Kind)
	}
}

// reserve starts a new generation and marks the state as loading.
func (m *Manager) reserve() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.state.Loading = true
	return m.gen
}

// commit installs st if gen is still current. Loading is always cleared.
func (m *Manager) commit(gen uint64, st State) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return false
	}
	st.Loading = false
	m.state = st
	return true
}

func (m *Manager) apply(ctx context.Context, gen uint64, sess *identity.Session, signedIn bool) {
	if sess == nil {
		m.commit(gen, State{})
		return
	}

	id := sess.Identity.ID
	var (
		profile *identity.Profile
		err     error
	)
	if signedIn {
		profile, err = m.bookkeep(ctx, id)
	} else {
		profile, err = m.profiles.Get(ctx, id)
	}

	switch {
	case err == nil:
	case errors.Is(err, common.ErrorNotFound):
		m.logger.Warn(ctx, "provisioning inconsistency: no profile row for signed-in identity",
			"identity_id", id, "error", common.ErrProvisioningInconsistency)
		profile = nil
	default:
		m.logger.Error(ctx, "profile fetch failed", "identity_id", id, "error", err)
		profile = nil
	}

	if !m.commit(gen, State{Session: sess, Profile: profile}) {
		m.logger.Debug(ctx, "discarding superseded session result", "identity_id", id, "generation", gen)
	}
}

// bookkeep records the sign-in on the profile row and returns the updated
// row. When the update fails for any reason other than a missing row it
// falls back to a plain read.
func (m *Manager) bookkeep(ctx context.Context, identityID string) (*identity.Profile, error) {
	now := m.now().UTC()
	patch := identity.ProfilePatch{LastLoginAt: &now, LoginCountDelta: 1}
	if m.device != (identity.Device{}) {
		d := m.device
		patch.LastSeen = &d
	}

	p, err := m.profiles.Update(ctx, identityID, patch)
	if err == nil || errors.Is(err, common.ErrorNotFound) {
		return p, err
	}
	m.logger.Warn(ctx, "login bookkeeping failed", "identity_id", identityID, "error", err)
	return m.profiles.Get(ctx, identityID)
}

func alreadySignedOut(err error) bool {
	return errors.Is(err, common.ErrorNotFound) ||
		errors.Is(err, common.ErrInvalidToken) ||
		errors.Is(err, common.ErrTokenExpired) ||
		errors.Is(err, common.ErrRefreshTokenExpired)
}
