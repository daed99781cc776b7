package services

import (
	"context"

	"github.com/dmitrijs2005/talentmatch/internal/client/client"
	"github.com/dmitrijs2005/talentmatch/internal/identity"
)

// RemoteProfiles reads and patches profiles through the identity service.
// Update always targets the caller; the service derives the identity from
// the access token.
type RemoteProfiles struct {
	client client.Client
}

func NewRemoteProfiles(c client.Client) *RemoteProfiles {
	return &RemoteProfiles{client: c}
}

func (p *RemoteProfiles) Get(ctx context.Context, identityID string) (*identity.Profile, error) {
	return p.client.GetProfile(ctx, identityID)
}

func (p *RemoteProfiles) Update(ctx context.Context, _ string, patch identity.ProfilePatch) (*identity.Profile, error) {
	return p.client.UpdateLogin(ctx, patch)
}
