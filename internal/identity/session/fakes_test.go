package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/talentmatch/internal/common"
	"github.com/dmitrijs2005/talentmatch/internal/identity"
	"github.com/dmitrijs2005/talentmatch/internal/logging"
)

type fakeCredentials struct {
	*identity.Broker

	mu         sync.Mutex
	current    func(ctx context.Context) (*identity.Session, error)
	signOuts   int
	signOutErr []error
}

func newFakeCredentials() *fakeCredentials {
	return &fakeCredentials{Broker: identity.NewBroker()}
}

func (f *fakeCredentials) CurrentSession(ctx context.Context) (*identity.Session, error) {
	if f.current == nil {
		return nil, nil
	}
	return f.current(ctx)
}

func (f *fakeCredentials) SignOut(ctx context.Context) error {
	f.mu.Lock()
	f.signOuts++
	var err error
	if len(f.signOutErr) > 0 {
		err, f.signOutErr = f.signOutErr[0], f.signOutErr[1:]
	}
	f.mu.Unlock()

	f.Publish(ctx, identity.AuthEvent{Kind: identity.EventSignedOut})
	return err
}

type fakeProfiles struct {
	mu      sync.Mutex
	rows    map[string]*identity.Profile
	patches []identity.ProfilePatch
	gets    []string

	// gate, when set for an identity, blocks Get until it is closed; entered
	// is signalled when the Get starts.
	gate    map[string]chan struct{}
	entered map[string]chan struct{}

	updateErr error
}

func newFakeProfiles(rows ...*identity.Profile) *fakeProfiles {
	f := &fakeProfiles{
		rows:    map[string]*identity.Profile{},
		gate:    map[string]chan struct{}{},
		entered: map[string]chan struct{}{},
	}
	for _, r := range rows {
		f.rows[r.IdentityID] = r
	}
	return f
}

// block makes the next Get for id wait for release.
func (f *fakeProfiles) block(id string) (entered <-chan struct{}, release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := make(chan struct{})
	e := make(chan struct{})
	f.gate[id] = g
	f.entered[id] = e
	return e, func() { close(g) }
}

func (f *fakeProfiles) Get(_ context.Context, id string) (*identity.Profile, error) {
	f.mu.Lock()
	f.gets = append(f.gets, id)
	g, e := f.gate[id], f.entered[id]
	delete(f.gate, id)
	delete(f.entered, id)
	f.mu.Unlock()

	if g != nil {
		close(e)
		<-g
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) Update(_ context.Context, id string, patch identity.ProfilePatch) (*identity.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, patch)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	p, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	p.LoginCount += patch.LoginCountDelta
	if patch.LastLoginAt != nil {
		p.LastLoginAt = patch.LastLoginAt
	}
	if patch.LastSeen != nil {
		p.LastSeen = patch.LastSeen
	}
	cp := *p
	return &cp, nil
}

type captureLogger struct {
	mu    sync.Mutex
	warns []string
	errs  []string
}

func (c *captureLogger) Debug(context.Context, string, ...any) {}
func (c *captureLogger) Info(context.Context, string, ...any)  {}
func (c *captureLogger) Warn(_ context.Context, msg string, _ ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warns = append(c.warns, msg)
}
func (c *captureLogger) Error(_ context.Context, msg string, _ ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, msg)
}
func (c *captureLogger) With(...any) logging.Logger { return c }

func session(id string) *identity.Session {
	return &identity.Session{Identity: identity.Identity{ID: id, Email: id + "@example.com"}, AccessToken: "at-" + id}
}

func profile(id string, role identity.Role) *identity.Profile {
	return &identity.Profile{IdentityID: id, Email: id + "@example.com", DisplayName: id, Role: role}
}
