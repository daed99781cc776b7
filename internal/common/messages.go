package common

import "errors"

type entry struct {
	err     error
	code    string
	message string
}

// catalog holds the stable wire code and user-facing message of every shared
// sentinel. Order matters only for Normalize: the first match wins.
var catalog = []entry{
	{ErrDuplicateIdentity, "duplicate_identity", "An account with this email already exists."},
	{ErrInvalidCredentials, "invalid_credentials", "Email or password is incorrect."},
	{ErrUnconfirmedEmail, "unconfirmed_email", "Please confirm your email address before signing in."},
	{ErrAlreadyConfirmed, "already_confirmed", "This email address is already confirmed."},
	{ErrRateLimited, "rate_limited", "Please wait before requesting another code."},
	{ErrStoreUnavailable, "store_unavailable", "The service is temporarily unavailable. Please try again."},
	{ErrInvalidOrExpiredCode, "invalid_or_expired_code", "The code is invalid or has expired."},
	{ErrProvisioningInconsistency, "provisioning_inconsistency", "Your account is still being set up. Please try again shortly."},
	{ErrDispatchFailure, "dispatch_failure", "We could not send the email. Please retry."},
	{ErrInvalidInput, "invalid_input", "Some of the entered data is not valid."},
	{ErrForbidden, "forbidden", "You do not have access to this feature."},
	{ErrTokenExpired, "token_expired", "Your session has expired."},
	{ErrRefreshTokenExpired, "refresh_token_expired", "Your session has expired. Please sign in again."},
	{ErrInvalidToken, "invalid_token", "Your session is not valid. Please sign in again."},
	{ErrorNotFound, "not_found", "Nothing was found."},
	{ErrorAlreadyExists, "already_exists", "The record already exists."},
	{ErrorInternal, "internal", "Something went wrong."},
}

// Code returns the stable wire code for err, or "internal" when err carries
// none of the shared sentinels.
func Code(err error) string {
	for _, e := range catalog {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return "internal"
}

// FromCode is the inverse of Code. Unknown codes yield nil.
func FromCode(code string) error {
	for _, e := range catalog {
		if e.code == code {
			return e.err
		}
	}
	return nil
}

// UserMessage returns the single stable message shown to users for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	for _, e := range catalog {
		if errors.Is(err, e.err) {
			return e.message
		}
	}
	return "Something went wrong."
}
