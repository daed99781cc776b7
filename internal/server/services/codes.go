package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/talentmatch/internal/dbx"
	"github.com/dmitrijs2005/talentmatch/internal/identity"
	"github.com/dmitrijs2005/talentmatch/internal/server/repositories/repomanager"
)

// CodeStore backs the verification lifecycle with PostgreSQL.
type CodeStore struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewCodeStore(db *sql.DB, m repomanager.RepositoryManager) *CodeStore {
	return &CodeStore{db: db, repomanager: m}
}

func (s *CodeStore) Insert(ctx context.Context, code *identity.VerificationCode) error {
	return s.repomanager.VerificationCodes(s.db).Insert(ctx, code)
}

func (s *CodeStore) FindValid(ctx context.Context, identityID, code string, now time.Time) (*identity.VerificationCode, error) {
	return s.repomanager.VerificationCodes(s.db).FindValid(ctx, identityID, code, now)
}

// MarkUsed claims the code and confirms its identity in one transaction. The
// conditional update is the only point where a code counts as consumed.
func (s *CodeStore) MarkUsed(ctx context.Context, codeID string, now time.Time) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		identityID, err := s.repomanager.VerificationCodes(tx).MarkUsed(ctx, codeID, now)
		if err != nil {
			return err
		}
		return s.repomanager.Identities(tx).ConfirmEmail(ctx, identityID, now)
	})
}

func (s *CodeStore) Latest(ctx context.Context, identityID string) (*identity.VerificationCode, error) {
	return s.repomanager.VerificationCodes(s.db).Latest(ctx, identityID)
}
