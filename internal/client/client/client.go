package client

import (
	"context"
	"time"

	api "github.com/dmitrijs2005/talentmatch/internal/api/identityv1"
	"github.com/dmitrijs2005/talentmatch/internal/identity"
)

// RefreshFunc is called after the client silently rotated its tokens.
type RefreshFunc func(ctx context.Context, s *identity.Session)

type Client interface {
	Close() error
	Ping(ctx context.Context) error

	Register(ctx context.Context, email string, secret []byte, displayName string, kind identity.AccountKind) (*api.RegisterResponse, error)
	SignIn(ctx context.Context, email string, secret []byte) (*identity.Session, error)
	SignOut(ctx context.Context) error
	SetSession(s *identity.Session)
	OnRefresh(fn RefreshFunc)

	VerifyCode(ctx context.Context, email, code string) error
	ResendCode(ctx context.Context, email string) (time.Duration, error)

	GetProfile(ctx context.Context, identityID string) (*identity.Profile, error)
	UpdateLogin(ctx context.Context, patch identity.ProfilePatch) (*identity.Profile, error)
	TestSendEmail(ctx context.Context, to string) (*api.TestSendEmailResponse, error)
}
