package common

import "errors"

var (
	// repository-level errors
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// service-level errors
	ErrorInternal   = errors.New("internal error")
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")

	// token errors
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// identity taxonomy: every store failure leaving the core is one of these
	ErrDuplicateIdentity         = errors.New("duplicate identity")
	ErrInvalidCredentials        = errors.New("invalid credentials")
	ErrUnconfirmedEmail          = errors.New("unconfirmed email")
	ErrAlreadyConfirmed          = errors.New("email already confirmed")
	ErrRateLimited               = errors.New("rate limited")
	ErrStoreUnavailable          = errors.New("store unavailable")
	ErrInvalidOrExpiredCode      = errors.New("invalid or expired code")
	ErrProvisioningInconsistency = errors.New("provisioning inconsistency")
	ErrDispatchFailure           = errors.New("dispatch failure")
)

// Normalize maps err onto a known sentinel. Errors already wrapping one of the
// shared sentinels collapse to it; anything else becomes fallback, joined with
// the original error so logs keep the cause.
func Normalize(err error, fallback error) error {
	if err == nil {
		return nil
	}
	for _, known := range catalog {
		if errors.Is(err, known.err) {
			return known.err
		}
	}
	return errors.Join(fallback, err)
}
