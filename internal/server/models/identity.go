// Package models holds the server's database row types.
package models

import (
	"time"

	"github.com/dmitrijs2005/talentmatch/internal/identity"
)

// Identity is a row of the identities table.
type Identity struct {
	ID               string
	Email            string
	SecretHash       []byte
	Metadata         identity.Metadata
	EmailConfirmedAt *time.Time
	CreatedAt        time.Time
}

// Public drops the secret hash.
func (i *Identity) Public() *identity.Identity {
	return &identity.Identity{
		ID:               i.ID,
		Email:            i.Email,
		Metadata:         i.Metadata,
		EmailConfirmedAt: i.EmailConfirmedAt,
		CreatedAt:        i.CreatedAt,
	}
}
