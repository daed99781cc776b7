// Package identity holds the types shared by the account lifecycle: identities,
// profiles, sessions and verification codes, plus the auth-event broker that
// credential stores use to notify subscribers.
package identity

import (
	"strings"
	"time"
)

type AccountKind string

const (
	KindStudent AccountKind = "student"
	KindCompany AccountKind = "company"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Metadata is recorded with the credential at sign-up and copied into the
// profile row when it is provisioned.
type Metadata struct {
	DisplayName string      `json:"display_name"`
	AccountKind AccountKind `json:"account_kind"`
}

// Identity is the credential-store view of a user. The secret never leaves
// the store.
type Identity struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Metadata         Metadata   `json:"metadata"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Confirmed reports whether the email address has been verified.
func (i *Identity) Confirmed() bool {
	return i != nil && i.EmailConfirmedAt != nil
}

// Device is the last-seen network and client metadata kept on a profile.
type Device struct {
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	Platform  string `json:"platform,omitempty"`
}

// Profile is the one row per identity holding mutable account attributes.
type Profile struct {
	IdentityID  string      `json:"identity_id"`
	Email       string      `json:"email"`
	DisplayName string      `json:"display_name"`
	AccountKind AccountKind `json:"account_kind"`
	Role        Role        `json:"role"`
	CreatedAt   time.Time   `json:"created_at"`
	LastLoginAt *time.Time  `json:"last_login_at,omitempty"`
	LoginCount  int64       `json:"login_count"`
	LastSeen    *Device     `json:"last_seen,omitempty"`
}

// ProfilePatch is a partial profile update. Nil fields are left untouched;
// LoginCountDelta is added to the stored counter. Account kind and role are
// not patchable.
type ProfilePatch struct {
	DisplayName     *string    `json:"display_name,omitempty"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty"`
	LoginCountDelta int64      `json:"login_count_delta,omitempty"`
	LastSeen        *Device    `json:"last_seen,omitempty"`
}

// Session pairs a signed-in identity with its credential tokens.
type Session struct {
	Identity     Identity  `json:"identity"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// VerificationCode is one issued email verification code. Expiry is never
// written; it is derived from ExpiresAt at read time.
type VerificationCode struct {
	ID         string
	IdentityID string
	Code       string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	Used       bool
}

// ValidAt reports whether the code could still authorize verification at now.
func (c *VerificationCode) ValidAt(now time.Time) bool {
	return c != nil && !c.Used && now.Before(c.ExpiresAt)
}

// Message is an outbound email.
type Message struct {
	To       string
	Subject  string
	BodyHTML string
}

// Delivery is a mail provider's answer for one Message.
type Delivery struct {
	Success   bool
	MessageID string
	ErrorCode string
}

// NormalizeEmail trims and lower-cases an address for comparison and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
