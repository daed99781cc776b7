// Package verificationcodes stores one-time email verification codes. Rows
// are never deleted; expiry is evaluated in every query against the caller's
// clock.
package verificationcodes

import (
	"context"
	"time"

	"github.com/dmitrijs2005/talentmatch/internal/identity"
)

type Repository interface {
	Insert(ctx context.Context, code *identity.VerificationCode) error
	FindValid(ctx context.Context, identityID, code string, now time.Time) (*identity.VerificationCode, error)

	// MarkUsed claims the row with a conditional update and returns the
	// owning identity. common.ErrInvalidOrExpiredCode means another caller
	// got there first or the row expired.
	MarkUsed(ctx context.Context, codeID string, now time.Time) (string, error)
	Latest(ctx context.Context, identityID string) (*identity.VerificationCode, error)
}
