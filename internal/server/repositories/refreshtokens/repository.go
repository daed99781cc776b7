// Package refreshtokens declares the repository contract for opaque refresh
// tokens.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/talentmatch/internal/server/models"
)

type Repository interface {
	// Create stores a refresh token for identityID expiring at now+validity.
	Create(ctx context.Context, identityID string, token string, validity time.Duration) error

	// Find returns common.ErrorNotFound when the token is absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes the token. Deleting an absent token is not an error.
	Delete(ctx context.Context, token string) error
}
