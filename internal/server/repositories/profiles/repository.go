// Package profiles reads and patches the one profile row kept per identity.
// Rows are created by the database trigger on identities, never here.
package profiles

import (
	"context"

	"github.com/dmitrijs2005/talentmatch/internal/identity"
)

type Repository interface {
	Get(ctx context.Context, identityID string) (*identity.Profile, error)
	FindByEmail(ctx context.Context, email string) (*identity.Profile, error)

	// Update applies patch and returns the row as stored afterwards.
	Update(ctx context.Context, identityID string, patch identity.ProfilePatch) (*identity.Profile, error)
}
