package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/talentmatch/internal/common"
	"github.com/dmitrijs2005/talentmatch/internal/identity"
	"github.com/dmitrijs2005/talentmatch/internal/identity/registration"
	"github.com/dmitrijs2005/talentmatch/internal/server/mail"
	"github.com/dmitrijs2005/talentmatch/internal/server/services"
)

type fakeAccounts struct {
	registerReq registration.Request
	registerRes *services.RegisterResult
	err         error

	session *identity.Session
	profile *identity.Profile
	wait    time.Duration
	report  *mail.Report

	callerID   string
	identityID string
	patch      identity.ProfilePatch
	signedOut  string
}

func (f *fakeAccounts) Register(_ context.Context, req registration.Request) (*services.RegisterResult, error) {
	f.registerReq = req
	return f.registerRes, f.err
}
func (f *fakeAccounts) SignIn(context.Context, string, []byte) (*identity.Session, error) {
	return f.session, f.err
}
func (f *fakeAccounts) Refresh(context.Context, string) (*identity.Session, error) {
	return f.session, f.err
}
func (f *fakeAccounts) SignOut(_ context.Context, token string) error {
	f.signedOut = token
	return f.err
}
func (f *fakeAccounts) VerifyCode(context.Context, string, string) error { return f.err }
func (f *fakeAccounts) ResendCode(context.Context, string) (time.Duration, error) {
	return f.wait, f.err
}
func (f *fakeAccounts) GetProfile(_ context.Context, callerID, identityID string) (*identity.Profile, error) {
	f.callerID, f.identityID = callerID, identityID
	return f.profile, f.err
}
func (f *fakeAccounts) UpdateLogin(_ context.Context, callerID string, patch identity.ProfilePatch) (*identity.Profile, error) {
	f.callerID, f.patch = callerID, patch
	return f.profile, f.err
}
func (f *fakeAccounts) TestSendEmail(_ context.Context, callerID, _ string) (*mail.Report, error) {
	f.callerID = callerID
	return f.report, f.err
}

// fakeAuth accepts "good:<id>" and "expired".
type fakeAuth struct{}

func (fakeAuth) Authenticate(token string) (string, error) {
	switch {
	case token == "expired":
		return "", common.ErrTokenExpired
	case len(token) > 5 && token[:5] == "good:":
		return token[5:], nil
	default:
		return "", common.ErrInvalidToken
	}
}
