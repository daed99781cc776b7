package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/talentmatch/internal/common"
	"github.com/dmitrijs2005/talentmatch/internal/identity"
	"github.com/dmitrijs2005/talentmatch/internal/identity/access"
	"github.com/dmitrijs2005/talentmatch/internal/identity/registration"
	"github.com/dmitrijs2005/talentmatch/internal/identity/verification"
	"github.com/dmitrijs2005/talentmatch/internal/logging"
	"github.com/dmitrijs2005/talentmatch/internal/server/mail"
)

// RegistrationObserver counts registration outcomes.
type RegistrationObserver interface {
	Registered(result string)
}

type nopRegistrationObserver struct{}

func (nopRegistrationObserver) Registered(string) {}

// RegisterResult reports the new identity and whether its first code went
// out. ResendIn is how long the caller must wait before asking for another.
type RegisterResult struct {
	Identity *identity.Identity
	CodeSent bool
	ResendIn time.Duration
}

// AccountService is what the transport layer calls. It chains the
// registration workflow, the verification lifecycle and the credential and
// profile stores into the public account operations.
type AccountService struct {
	workflow    *registration.Workflow
	lifecycle   *verification.Lifecycle
	credentials *CredentialService
	profiles    *ProfileService
	mailer      verification.Mailer
	observer    RegistrationObserver
	logger      logging.Logger
}

func NewAccountService(
	workflow *registration.Workflow,
	lifecycle *verification.Lifecycle,
	credentials *CredentialService,
	profiles *ProfileService,
	mailer verification.Mailer,
	observer RegistrationObserver,
	logger logging.Logger,
) *AccountService {
	if observer == nil {
		observer = nopRegistrationObserver{}
	}
	return &AccountService{
		workflow:    workflow,
		lifecycle:   lifecycle,
		credentials: credentials,
		profiles:    profiles,
		mailer:      mailer,
		observer:    observer,
		logger:      logger.With("service", "accounts"),
	}
}

// Register creates the identity and sends the first verification code. A
// failed dispatch does not undo the registration; the user can resend.
func (s *AccountService) Register(ctx context.Context, req registration.Request) (*RegisterResult, error) {
	created, err := s.workflow.Register(ctx, req)
	if err != nil {
		s.observer.Registered(registrationResult(err))
		return nil, err
	}
	s.observer.Registered("ok")

	res := &RegisterResult{Identity: created, ResendIn: s.lifecycle.Cooldown()}
	if _, err := s.lifecycle.Send(ctx, created.ID, created.Email); err != nil {
		s.logger.Warn(ctx, "first verification code not sent", "identity_id", created.ID, "error", err)
		if !errors.Is(err, common.ErrDispatchFailure) {
			// no row was written, so resend is not throttled
			res.ResendIn = 0
		}
		return res, nil
	}
	res.CodeSent = true
	return res, nil
}

func (s *AccountService) SignIn(ctx context.Context, email string, secret []byte) (*identity.Session, error) {
	defer common.WipeByteArray(secret)

	id, pair, err := s.credentials.SignIn(ctx, email, secret)
	if err != nil {
		return nil, err
	}
	return session(id, pair), nil
}

func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (*identity.Session, error) {
	id, pair, err := s.credentials.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return session(id, pair), nil
}

func (s *AccountService) SignOut(ctx context.Context, refreshToken string) error {
	return s.credentials.SignOut(ctx, refreshToken)
}

// VerifyCode confirms the identity registered under email. Unknown emails
// are rejected exactly like a wrong code.
func (s *AccountService) VerifyCode(ctx context.Context, email, code string) error {
	id, err := s.credentials.Lookup(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidOrExpiredCode
		}
		return err
	}
	if id.Confirmed() {
		return common.ErrAlreadyConfirmed
	}
	return s.lifecycle.Validate(ctx, id.ID, code)
}

// ResendCode issues and mails a fresh code. Earlier codes stay valid until
// their own expiry. It returns the cool-down before the next resend.
func (s *AccountService) ResendCode(ctx context.Context, email string) (time.Duration, error) {
	id, err := s.credentials.Lookup(ctx, email)
	if err != nil {
		return 0, err
	}
	if id.Confirmed() {
		return 0, common.ErrAlreadyConfirmed
	}
	if _, err := s.lifecycle.Resend(ctx, id.ID, id.Email); err != nil {
		return 0, err
	}
	return s.lifecycle.Cooldown(), nil
}

// GetProfile returns the caller's own profile, or another identity's
// profile when the caller is an admin.
func (s *AccountService) GetProfile(ctx context.Context, callerID, identityID string) (*identity.Profile, error) {
	if identityID == "" || identityID == callerID {
		return s.profiles.Get(ctx, callerID)
	}
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	return s.profiles.Get(ctx, identityID)
}

// UpdateLogin applies the caller's post-sign-in bookkeeping patch.
func (s *AccountService) UpdateLogin(ctx context.Context, callerID string, patch identity.ProfilePatch) (*identity.Profile, error) {
	return s.profiles.Update(ctx, callerID, patch)
}

// TestSendEmail sends a diagnostic message. Admin only.
func (s *AccountService) TestSendEmail(ctx context.Context, callerID, to string) (*mail.Report, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	to = identity.NormalizeEmail(to)
	if to == "" {
		return nil, common.ErrInvalidInput
	}

	report := mail.Diagnose(ctx, s.mailer, to)
	if !report.Success {
		s.logger.Warn(ctx, "diagnostic mail failed", "to", to, "error_code", report.ErrorCode, "hint", report.Hint)
	}
	return &report, nil
}

// requireAdmin fails closed: a missing or unreadable profile is not an admin.
func (s *AccountService) requireAdmin(ctx context.Context, callerID string) error {
	p, err := s.profiles.Get(ctx, callerID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrForbidden
		}
		return err
	}
	return access.RequireAdmin(p)
}

func session(id *identity.Identity, pair *TokenPair) *identity.Session {
	return &identity.Session{
		Identity:     *id,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
	}
}

func registrationResult(err error) string {
	switch {
	case errors.Is(err, common.ErrDuplicateIdentity):
		return "duplicate"
	case errors.Is(err, common.ErrInvalidInput):
		return "invalid"
	default:
		return "error"
	}
}
