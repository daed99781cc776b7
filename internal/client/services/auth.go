// Package services holds the CLI's application services: a credential store
// backed by the identity service and the local session cache, and a profile
// store that reads and patches the caller's profile remotely.
package services

import (
	"context"
	"time"

	api "github.com/dmitrijs2005/talentmatch/internal/api/identityv1"
	"github.com/dmitrijs2005/talentmatch/internal/client/client"
	"github.com/dmitrijs2005/talentmatch/internal/common"
	"github.com/dmitrijs2005/talentmatch/internal/identity"
	"github.com/dmitrijs2005/talentmatch/internal/logging"
)

// AuthService is everything the CLI does against the identity service.
// Implementations publish signed_in, token_refreshed and signed_out events
// to their subscribers.
type AuthService interface {
	CurrentSession(ctx context.Context) (*identity.Session, error)
	SignIn(ctx context.Context, email string, secret []byte) (*identity.Session, error)
	SignOut(ctx context.Context) error
	Subscribe(fn identity.Listener) identity.Subscription

	Register(ctx context.Context, email string, secret []byte, displayName string, kind identity.AccountKind) (*api.RegisterResponse, error)
	VerifyCode(ctx context.Context, email, code string) error
	ResendCode(ctx context.Context, email string) (time.Duration, error)
	TestSendEmail(ctx context.Context, to string) (*api.TestSendEmailResponse, error)

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// RemoteCredentials is the client-side credential store: the identity service
// holds the credentials, SessionCache keeps the tokens across restarts.
type RemoteCredentials struct {
	*identity.Broker

	client client.Client
	cache  *SessionCache
	logger logging.Logger
}

// NewRemoteCredentials wires c to the session cache. Token rotations
// performed by c are written to the cache and published as token_refreshed.
func NewRemoteCredentials(c client.Client, cache *SessionCache, logger logging.Logger) *RemoteCredentials {
	a := &RemoteCredentials{
		Broker: identity.NewBroker(),
		client: c,
		cache:  cache,
		logger: logger.With("module", "auth"),
	}
	c.OnRefresh(a.refreshed)
	return a
}

// CurrentSession restores the cached session and hands its tokens to the
// client. An expired access token is rotated on the first call that needs it.
func (a *RemoteCredentials) CurrentSession(ctx context.Context) (*identity.Session, error) {
	s, err := a.cache.Load(ctx)
	if err != nil {
		return nil, common.Normalize(err, common.ErrStoreUnavailable)
	}
	a.client.SetSession(s)
	return s, nil
}

func (a *RemoteCredentials) SignIn(ctx context.Context, email string, secret []byte) (*identity.Session, error) {
	s, err := a.client.SignIn(ctx, identity.NormalizeEmail(email), secret)
	if err != nil {
		return nil, err
	}

	if err := a.cache.Save(ctx, s); err != nil {
		a.logger.Warn(ctx, "session not cached, it will not survive a restart", "error", err)
	}
	a.Publish(ctx, identity.AuthEvent{Kind: identity.EventSignedIn, Session: s})
	return s, nil
}

// SignOut revokes the session remotely and always clears the local cache.
// The remote error, if any, is returned after signed_out is published.
func (a *RemoteCredentials) SignOut(ctx context.Context) error {
	err := a.client.SignOut(ctx)

	if cerr := a.cache.Clear(ctx); cerr != nil {
		a.logger.Warn(ctx, "session cache not cleared", "error", cerr)
	}
	a.Publish(ctx, identity.AuthEvent{Kind: identity.EventSignedOut})
	return err
}

func (a *RemoteCredentials) refreshed(ctx context.Context, s *identity.Session) {
	if err := a.cache.Save(ctx, s); err != nil {
		a.logger.Warn(ctx, "refreshed session not cached", "error", err)
	}
	a.Publish(ctx, identity.AuthEvent{Kind: identity.EventTokenRefreshed, Session: s})
}

func (a *RemoteCredentials) Register(ctx context.Context, email string, secret []byte, displayName string, kind identity.AccountKind) (*api.RegisterResponse, error) {
	return a.client.Register(ctx, identity.NormalizeEmail(email), secret, displayName, kind)
}

func (a *RemoteCredentials) VerifyCode(ctx context.Context, email, code string) error {
	return a.client.VerifyCode(ctx, identity.NormalizeEmail(email), code)
}

func (a *RemoteCredentials) ResendCode(ctx context.Context, email string) (time.Duration, error) {
	return a.client.ResendCode(ctx, identity.NormalizeEmail(email))
}

func (a *RemoteCredentials) TestSendEmail(ctx context.Context, to string) (*api.TestSendEmailResponse, error) {
	return a.client.TestSendEmail(ctx, to)
}

// Ping proxies a liveness check to the underlying client.
func (a *RemoteCredentials) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *RemoteCredentials) Close(ctx context.Context) error {
	return a.client.Close()
}

var _ AuthService = (*RemoteCredentials)(nil)
