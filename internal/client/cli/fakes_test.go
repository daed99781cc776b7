package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	api "github.com/dmitrijs2005/talentmatch/internal/api/identityv1"
	"github.com/dmitrijs2005/talentmatch/internal/client/services"
	"github.com/dmitrijs2005/talentmatch/internal/common"
	"github.com/dmitrijs2005/talentmatch/internal/identity"
	"github.com/dmitrijs2005/talentmatch/internal/identity/session"
	"github.com/dmitrijs2005/talentmatch/internal/logging"
	"github.com/stretchr/testify/require"
)

func capturePrint(t *testing.T) *[]string {
	t.Helper()
	var mu sync.Mutex
	lines := &[]string{}
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		*lines = append(*lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return lines
}

// stubInputs feeds texts to successive getSimpleText calls and password to
// getPassword.
func stubInputs(t *testing.T, password string, texts ...string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(texts) == 0 {
			return "", io.EOF
		}
		s := texts[0]
		texts = texts[1:]
		return s, nil
	}
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte(password), nil }
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

type fakeAuth struct {
	*identity.Broker

	session   *identity.Session
	signInErr error

	registerResp *api.RegisterResponse
	registerErr  error
	regEmail     string
	regName      string
	regKind      identity.AccountKind
	regPass      string

	verifyErr error
	verified  []string

	resendIn  time.Duration
	resendErr error
	resent    []string

	mailResp *api.TestSendEmailResponse
	mailErr  error
	mailTo   []string

	signOutErr error
	signOuts   int
	pingErr    error
	closed     bool
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{Broker: identity.NewBroker()}
}

func (f *fakeAuth) CurrentSession(context.Context) (*identity.Session, error) {
	return f.session, nil
}

func (f *fakeAuth) SignIn(ctx context.Context, email string, _ []byte) (*identity.Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	f.session = &identity.Session{
		Identity:     identity.Identity{ID: "id-1", Email: identity.NormalizeEmail(email)},
		AccessToken:  "A",
		RefreshToken: "R",
	}
	f.Publish(ctx, identity.AuthEvent{Kind: identity.EventSignedIn, Session: f.session})
	return f.session, nil
}

func (f *fakeAuth) SignOut(ctx context.Context) error {
	f.signOuts++
	f.session = nil
	f.Publish(ctx, identity.AuthEvent{Kind: identity.EventSignedOut})
	return f.signOutErr
}

func (f *fakeAuth) Register(_ context.Context, email string, secret []byte, name string, kind identity.AccountKind) (*api.RegisterResponse, error) {
	f.regEmail, f.regName, f.regKind, f.regPass = email, name, kind, string(secret)
	return f.registerResp, f.registerErr
}

func (f *fakeAuth) VerifyCode(_ context.Context, email, code string) error {
	f.verified = append(f.verified, email+"/"+code)
	return f.verifyErr
}

func (f *fakeAuth) ResendCode(_ context.Context, email string) (time.Duration, error) {
	f.resent = append(f.resent, email)
	return f.resendIn, f.resendErr
}

func (f *fakeAuth) TestSendEmail(_ context.Context, to string) (*api.TestSendEmailResponse, error) {
	f.mailTo = append(f.mailTo, to)
	return f.mailResp, f.mailErr
}

func (f *fakeAuth) Ping(context.Context) error { return f.pingErr }

func (f *fakeAuth) Close(context.Context) error {
	f.closed = true
	return nil
}

type fakeProfiles struct {
	profile *identity.Profile
}

func (p *fakeProfiles) Get(context.Context, string) (*identity.Profile, error) {
	if p.profile == nil {
		return nil, common.ErrorNotFound
	}
	return p.profile, nil
}

func (p *fakeProfiles) Update(_ context.Context, _ string, patch identity.ProfilePatch) (*identity.Profile, error) {
	if p.profile == nil {
		return nil, common.ErrorNotFound
	}
	p.profile.LoginCount += patch.LoginCountDelta
	if patch.LastLoginAt != nil {
		p.profile.LastLoginAt = patch.LastLoginAt
	}
	return p.profile, nil
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// newTestApp builds an App over fakes with a bootstrapped session Manager.
func newTestApp(t *testing.T, auth *fakeAuth, profiles *fakeProfiles) *App {
	t.Helper()
	m := session.New(auth, profiles, logging.Nop())
	require.NoError(t, m.Bootstrap(context.Background()))
	t.Cleanup(m.Teardown)

	a := &App{
		auth:     auth,
		profiles: profiles,
		manager:  m,
		logger:   logging.Nop(),
		reader:   rdr(""),
		out:      io.Discard,
		now:      time.Now,
	}
	t.Cleanup(a.clearCountdown)
	return a
}

var _ services.AuthService = (*fakeAuth)(nil)
