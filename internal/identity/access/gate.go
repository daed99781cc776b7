// Package access derives authorization decisions from a profile snapshot.
// It owns no state and does no I/O.
package access

import (
	"github.com/dmitrijs2005/talentmatch/internal/common"
	"github.com/dmitrijs2005/talentmatch/internal/identity"
)

// IsAdmin reports whether p carries the admin role. An absent profile (not
// loaded yet, or signed out) is never an admin.
func IsAdmin(p *identity.Profile) bool {
	return p != nil && p.Role == identity.RoleAdmin
}

// RequireAdmin returns common.ErrForbidden unless IsAdmin(p).
func RequireAdmin(p *identity.Profile) error {
	if !IsAdmin(p) {
		return common.ErrForbidden
	}
	return nil
}
