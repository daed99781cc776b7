// Package verification implements the one-time email code lifecycle:
// issue, validate, resend with cool-down, and time-derived expiry.
//
// A code is Issued when its row is inserted. It is Valid while it is unused
// and now < ExpiresAt, Consumed once the conditional mark-used update claims
// it, and Expired purely by time. Nothing here ever writes an expiry.
package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/talentmatch/internal/common"
	"github.com/dmitrijs2005/talentmatch/internal/cryptox"
	"github.com/dmitrijs2005/talentmatch/internal/identity"
	"github.com/dmitrijs2005/talentmatch/internal/logging"
	"github.com/google/uuid"
)

const (
	DefaultTTL      = 10 * time.Minute
	DefaultCooldown = 2 * time.Minute
)

// Store persists verification codes.
type Store interface {
	Insert(ctx context.Context, code *identity.VerificationCode) error

	// FindValid returns the unused, unexpired row for identityID and code, or
	// common.ErrorNotFound.
	FindValid(ctx context.Context, identityID, code string, now time.Time) (*identity.VerificationCode, error)

	// MarkUsed flips the used flag only if the row is still unused and
	// unexpired, and confirms the owning identity in the same commit. When
	// the conditional update matches nothing it returns
	// common.ErrInvalidOrExpiredCode.
	MarkUsed(ctx context.Context, codeID string, now time.Time) error

	// Latest returns the most recently created code for identityID, or
	// common.ErrorNotFound.
	Latest(ctx context.Context, identityID string) (*identity.VerificationCode, error)
}

type Mailer interface {
	Send(ctx context.Context, msg identity.Message) (identity.Delivery, error)
}

// Gate serializes concurrent resends for one identity. Acquire returns false
// while another caller holds key.
type Gate interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Observer receives lifecycle outcomes, typically for metrics.
type Observer interface {
	CodeIssued(reason string)
	Validated(result string)
	Resent(result string)
	DispatchFailed()
}

type Lifecycle struct {
	store    Store
	mailer   Mailer
	gate     Gate
	observer Observer
	logger   logging.Logger
	ttl      time.Duration
	cooldown time.Duration
	now      func() time.Time
	newCode  func() (string, error)
}

type Option func(*Lifecycle)

func WithTTL(d time.Duration) Option      { return func(l *Lifecycle) { l.ttl = d } }
func WithCooldown(d time.Duration) Option { return func(l *Lifecycle) { l.cooldown = d } }
func WithGate(g Gate) Option              { return func(l *Lifecycle) { l.gate = g } }
func WithObserver(o Observer) Option      { return func(l *Lifecycle) { l.observer = o } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(l *Lifecycle) { l.now = now } }

// WithCodeSource replaces the random code generator.
func WithCodeSource(fn func() (string, error)) Option { return func(l *Lifecycle) { l.newCode = fn } }

func New(store Store, mailer Mailer, logger logging.Logger, opts ...Option) *Lifecycle {
	l := &Lifecycle{
		store:    store,
		mailer:   mailer,
		observer: nopObserver{},
		logger:   logger.With("module", "verification"),
		ttl:      DefaultTTL,
		cooldown: DefaultCooldown,
		now:      time.Now,
		newCode:  func() (string, error) { return cryptox.NumericCode(common.CodeLength) },
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

func (l *Lifecycle) TTL() time.Duration      { return l.ttl }
func (l *Lifecycle) Cooldown() time.Duration { return l.cooldown }

// Issue inserts a fresh code for identityID. Older rows are left untouched.
func (l *Lifecycle) Issue(ctx context.Context, identityID string) (*identity.VerificationCode, error) {
	return l.issue(ctx, identityID, "issue")
}

// Send issues a code and mails it to email. When only the dispatch fails the
// stored code is returned together with common.ErrDispatchFailure.
func (l *Lifecycle) Send(ctx context.Context, identityID, email string) (*identity.VerificationCode, error) {
	code, err := l.issue(ctx, identityID, "signup")
	if err != nil {
		return nil, err
	}
	if err := l.dispatch(ctx, email, code); err != nil {
		return code, err
	}
	return code, nil
}

// Validate consumes code for identityID and confirms the identity. A code
// that never existed, expired, was already used, or was claimed by a
// concurrent call all yield common.ErrInvalidOrExpiredCode.
func (l *Lifecycle) Validate(ctx context.Context, identityID, code string) error {
	code = strings.TrimSpace(code)
	if !wellFormed(code) {
		l.observer.Validated("rejected")
		return common.ErrInvalidOrExpiredCode
	}

	now := l.now()

	row, err := l.store.FindValid(ctx, identityID, code, now)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			l.observer.Validated("rejected")
			return common.ErrInvalidOrExpiredCode
		}
		l.logger.Error(ctx, "code lookup failed", "identity_id", identityID, "error", err)
		return common.Normalize(err, common.ErrStoreUnavailable)
	}

	if err := l.store.MarkUsed(ctx, row.ID, now); err != nil {
		if errors.Is(err, common.ErrInvalidOrExpiredCode) || errors.Is(err, common.ErrorNotFound) {
			l.logger.Info(ctx, "code claimed concurrently", "identity_id", identityID, "code_id", row.ID)
			l.observer.Validated("rejected")
			return common.ErrInvalidOrExpiredCode
		}
		l.logger.Error(ctx, "mark used failed", "identity_id", identityID, "code_id", row.ID, "error", err)
		return common.Normalize(err, common.ErrStoreUnavailable)
	}

	l.observer.Validated("confirmed")
	l.logger.Info(ctx, "email confirmed", "identity_id", identityID, "code_id", row.ID)
	return nil
}

// Resend issues and mails a new code once the cool-down since the latest
// code has elapsed. The previous code is not revoked and stays valid until
// its own expiry. A failed dispatch keeps the new row and returns it with
// common.ErrDispatchFailure.
func (l *Lifecycle) Resend(ctx context.Context, identityID, email string) (*identity.VerificationCode, error) {
	now := l.now()

	latest, err := l.store.Latest(ctx, identityID)
	switch {
	case err == nil:
		if wait := l.ResendAvailableIn(latest, now); wait > 0 {
			l.observer.Resent("rate_limited")
			return nil, fmt.Errorf("%w: retry in %s", common.ErrRateLimited, wait)
		}
	case errors.Is(err, common.ErrorNotFound):
	default:
		l.logger.Error(ctx, "latest code lookup failed", "identity_id", identityID, "error", err)
		return nil, common.Normalize(err, common.ErrStoreUnavailable)
	}

	if l.gate != nil {
		ok, err := l.gate.Acquire(ctx, "resend:"+identityID, l.cooldown)
		if err != nil {
			// the store check above already enforced the cool-down
			l.logger.Warn(ctx, "resend gate unavailable", "identity_id", identityID, "error", err)
		} else if !ok {
			l.observer.Resent("rate_limited")
			return nil, common.ErrRateLimited
		}
	}

	code, err := l.issue(ctx, identityID, "resend")
	if err != nil {
		return nil, err
	}
	if err := l.dispatch(ctx, email, code); err != nil {
		l.observer.Resent("dispatch_failed")
		return code, err
	}

	l.observer.Resent("sent")
	return code, nil
}

// ResendAvailableIn is how long the caller must wait before Resend accepts a
// request, given the latest code. Zero means now.
func (l *Lifecycle) ResendAvailableIn(latest *identity.VerificationCode, now time.Time) time.Duration {
	if latest == nil {
		return 0
	}
	wait := latest.CreatedAt.Add(l.cooldown).Sub(now)
	if wait < 0 {
		return 0
	}
	return wait
}

func (l *Lifecycle) issue(ctx context.Context, identityID, reason string) (*identity.VerificationCode, error) {
	value, err := l.newCode()
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}

	now := l.now()
	code := &identity.VerificationCode{
		ID:         uuid.NewString(),
		IdentityID: identityID,
		Code:       value,
		CreatedAt:  now,
		ExpiresAt:  now.Add(l.ttl),
	}

	if err := l.store.Insert(ctx, code); err != nil {
		l.logger.Error(ctx, "code insert failed", "identity_id", identityID, "error", err)
		return nil, common.Normalize(err, common.ErrStoreUnavailable)
	}

	l.observer.CodeIssued(reason)
	l.logger.Info(ctx, "code issued", "identity_id", identityID, "code_id", code.ID, "reason", reason, "expires_at", code.ExpiresAt)
	return code, nil
}

func (l *Lifecycle) dispatch(ctx context.Context, email string, code *identity.VerificationCode) error {
	delivery, err := l.mailer.Send(ctx, l.message(email, code))
	if err == nil && delivery.Success {
		l.logger.Info(ctx, "code dispatched", "code_id", code.ID, "message_id", delivery.MessageID)
		return nil
	}

	l.observer.DispatchFailed()
	l.logger.Error(ctx, "code dispatch failed",
		"identity_id", code.IdentityID, "code_id", code.ID, "error_code", delivery.ErrorCode, "error", err)

	if err == nil {
		return common.ErrDispatchFailure
	}
	return errors.Join(common.ErrDispatchFailure, err)
}

func (l *Lifecycle) message(email string, code *identity.VerificationCode) identity.Message {
	minutes := int(l.ttl / time.Minute)
	return identity.Message{
		To:      email,
		Subject: "Your talentmatch verification code",
		BodyHTML: fmt.Sprintf(
			`<p>Your verification code is <strong>%s</strong>.</p><p>It expires in %d minutes. If you did not sign up, ignore this email.</p>`,
			code.Code, minutes),
	}
}

func wellFormed(code string) bool {
	if len(code) != common.CodeLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

type nopObserver struct{}

func (nopObserver) CodeIssued(string) {}
func (nopObserver) Validated(string)  {}
func (nopObserver) Resent(string)     {}
func (nopObserver) DispatchFailed()   {}
