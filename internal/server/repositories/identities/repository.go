// Package identities stores credential records.
package identities

import (
	"context"
	"time"

	"github.com/dmitrijs2005/talentmatch/internal/server/models"
)

type Repository interface {
	// Create inserts the identity. A case-insensitive email clash returns
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, identity *models.Identity) (*models.Identity, error)
	GetByEmail(ctx context.Context, email string) (*models.Identity, error)
	GetByID(ctx context.Context, id string) (*models.Identity, error)

	// ConfirmEmail sets the confirmation timestamp unless one is already set.
	ConfirmEmail(ctx context.Context, id string, at time.Time) error
}
