package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/talentmatch/internal/common"
	"github.com/dmitrijs2005/talentmatch/internal/identity"
	"github.com/dmitrijs2005/talentmatch/internal/server/repositories/repomanager"
)

// ProfileService is the profile record store. common.ErrorNotFound passes
// through untouched so callers can tell a missing row from a failing store.
type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager) *ProfileService {
	return &ProfileService{db: db, repomanager: m}
}

func (s *ProfileService) Get(ctx context.Context, identityID string) (*identity.Profile, error) {
	p, err := s.repomanager.Profiles(s.db).Get(ctx, identityID)
	return p, normalizeLookup(err)
}

func (s *ProfileService) FindByEmail(ctx context.Context, email string) (*identity.Profile, error) {
	p, err := s.repomanager.Profiles(s.db).FindByEmail(ctx, identity.NormalizeEmail(email))
	return p, normalizeLookup(err)
}

// Update patches the row. Account kind and role are not part of a patch and
// cannot change here.
func (s *ProfileService) Update(ctx context.Context, identityID string, patch identity.ProfilePatch) (*identity.Profile, error) {
	if patch.LoginCountDelta < 0 {
		return nil, common.ErrInvalidInput
	}
	p, err := s.repomanager.Profiles(s.db).Update(ctx, identityID, patch)
	return p, normalizeLookup(err)
}

func normalizeLookup(err error) error {
	if err == nil || errors.Is(err, common.ErrorNotFound) {
		return err
	}
	return common.Normalize(err, common.ErrStoreUnavailable)
}
