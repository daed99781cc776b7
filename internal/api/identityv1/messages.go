// Package identityv1 is the wire contract of the talentmatch identity
// service: request and response messages, the gRPC service descriptor and a
// typed client. Messages travel as JSON over gRPC.
package identityv1

import (
	"time"

	"github.com/dmitrijs2005/talentmatch/internal/identity"
)

type RegisterRequest struct {
	Email       string `json:"email"`
	Secret      []byte `json:"secret"`
	DisplayName string `json:"display_name"`
	AccountKind string `json:"account_kind"`
}

type RegisterResponse struct {
	IdentityID      string `json:"identity_id"`
	Email           string `json:"email"`
	CodeSent        bool   `json:"code_sent"`
	ResendInSeconds int64  `json:"resend_in_seconds"`
}

type SignInRequest struct {
	Email  string `json:"email"`
	Secret []byte `json:"secret"`
}

// SessionResponse answers SignIn and Refresh.
type SessionResponse struct {
	Identity     identity.Identity `json:"identity"`
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
	ExpiresAt    time.Time         `json:"expires_at"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SignOutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SignOutResponse struct{}

type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type VerifyCodeResponse struct{}

type ResendCodeRequest struct {
	Email string `json:"email"`
}

type ResendCodeResponse struct {
	ResendInSeconds int64 `json:"resend_in_seconds"`
}

type GetProfileRequest struct {
	// IdentityID selects another identity's profile. Empty means the caller.
	IdentityID string `json:"identity_id,omitempty"`
}

type ProfileResponse struct {
	Profile *identity.Profile `json:"profile"`
}

type UpdateLoginRequest struct {
	Patch identity.ProfilePatch `json:"patch"`
}

type TestSendEmailRequest struct {
	To string `json:"to"`
}

type TestSendEmailResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
	Hint      string `json:"hint,omitempty"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

// Session converts the response into the domain session.
func (r *SessionResponse) Session() *identity.Session {
	return &identity.Session{
		Identity:     r.Identity,
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		ExpiresAt:    r.ExpiresAt,
	}
}
