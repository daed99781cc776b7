// Package services holds the server's application services. They own
// transactions, call repositories through the repomanager and normalize
// every store failure to the shared error taxonomy.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/talentmatch/internal/common"
	"github.com/dmitrijs2005/talentmatch/internal/cryptox"
	"github.com/dmitrijs2005/talentmatch/internal/dbx"
	"github.com/dmitrijs2005/talentmatch/internal/identity"
	"github.com/dmitrijs2005/talentmatch/internal/logging"
	"github.com/dmitrijs2005/talentmatch/internal/server/auth"
	"github.com/dmitrijs2005/talentmatch/internal/server/config"
	"github.com/dmitrijs2005/talentmatch/internal/server/models"
	"github.com/dmitrijs2005/talentmatch/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// CredentialService is the credential store: it owns secrets, confirmation
// state and tokens.
type CredentialService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	jwtSecret   []byte
	accessTTL   time.Duration
	refreshTTL  time.Duration
	now         func() time.Time
}

func NewCredentialService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *CredentialService {
	return &CredentialService{
		db:          db,
		repomanager: m,
		logger:      logger.With("service", "credentials"),
		jwtSecret:   []byte(cfg.SecretKey),
		accessTTL:   cfg.AccessTokenValidityDuration,
		refreshTTL:  cfg.RefreshTokenValidityDuration,
		now:         time.Now,
	}
}

// SignUp hashes secret and inserts the identity. The unique email index
// turns a concurrent duplicate into common.ErrDuplicateIdentity.
func (s *CredentialService) SignUp(ctx context.Context, email string, secret []byte, meta identity.Metadata) (*identity.Identity, error) {
	hash, err := cryptox.HashSecret(secret)
	if err != nil {
		if errors.Is(err, cryptox.ErrSecretTooLong) {
			return nil, fmt.Errorf("%w: secret is too long", common.ErrInvalidInput)
		}
		return nil, fmt.Errorf("hash secret: %w", err)
	}

	row := &models.Identity{
		ID:         uuid.NewString(),
		Email:      identity.NormalizeEmail(email),
		SecretHash: hash,
		Metadata:   meta,
	}

	created, err := s.repomanager.Identities(s.db).Create(ctx, row)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrDuplicateIdentity
		}
		s.logger.Error(ctx, "identity insert failed", "error", err)
		return nil, common.Normalize(err, common.ErrStoreUnavailable)
	}
	return created.Public(), nil
}

// SignIn checks email and secret and issues a token pair. Unknown emails and
// wrong secrets both yield common.ErrInvalidCredentials after a comparable
// amount of work. A correct secret for an unconfirmed identity yields
// common.ErrUnconfirmedEmail.
func (s *CredentialService) SignIn(ctx context.Context, email string, secret []byte) (*identity.Identity, *TokenPair, error) {
	row, err := s.repomanager.Identities(s.db).GetByEmail(ctx, identity.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			cryptox.CheckSecret(nil, secret)
			return nil, nil, common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "identity lookup failed", "error", err)
		return nil, nil, common.Normalize(err, common.ErrStoreUnavailable)
	}

	if !cryptox.CheckSecret(row.SecretHash, secret) {
		return nil, nil, common.ErrInvalidCredentials
	}
	if row.EmailConfirmedAt == nil {
		return nil, nil, common.ErrUnconfirmedEmail
	}

	pair, err := s.issue(ctx, s.db, row.ID)
	if err != nil {
		return nil, nil, err
	}
	return row.Public(), pair, nil
}

// Refresh rotates refreshToken: the old token is deleted and a new pair is
// stored in the same transaction.
func (s *CredentialService) Refresh(ctx context.Context, refreshToken string) (*identity.Identity, *TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrInvalidToken
		}
		return nil, nil, common.Normalize(err, common.ErrStoreUnavailable)
	}
	if token.Expires.Before(s.now()) {
		return nil, nil, common.ErrRefreshTokenExpired
	}

	row, err := s.repomanager.Identities(s.db).GetByID(ctx, token.IdentityID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrInvalidToken
		}
		return nil, nil, common.Normalize(err, common.ErrStoreUnavailable)
	}

	pair, err := dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (*TokenPair, error) {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return nil, err
		}
		return s.issue(ctx, tx, token.IdentityID)
	})
	if err != nil {
		s.logger.Error(ctx, "refresh rotation failed", "identity_id", token.IdentityID, "error", err)
		return nil, nil, common.Normalize(err, common.ErrStoreUnavailable)
	}
	return row.Public(), pair, nil
}

// SignOut revokes refreshToken. Revoking an unknown token succeeds.
func (s *CredentialService) SignOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.repomanager.RefreshTokens(s.db).Delete(ctx, refreshToken); err != nil {
		return common.Normalize(err, common.ErrStoreUnavailable)
	}
	return nil
}

// Authenticate resolves an access token to its identity id.
func (s *CredentialService) Authenticate(accessToken string) (string, error) {
	return auth.IdentityFromToken(accessToken, s.jwtSecret)
}

// Lookup returns the identity registered under email.
func (s *CredentialService) Lookup(ctx context.Context, email string) (*identity.Identity, error) {
	row, err := s.repomanager.Identities(s.db).GetByEmail(ctx, identity.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.Normalize(err, common.ErrStoreUnavailable)
	}
	return row.Public(), nil
}

func (s *CredentialService) issue(ctx context.Context, db dbx.DBTX, identityID string) (*TokenPair, error) {
	access, err := auth.GenerateToken(identityID, s.jwtSecret, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.repomanager.RefreshTokens(db).Create(ctx, identityID, refresh, s.refreshTTL); err != nil {
		return nil, common.Normalize(err, common.ErrStoreUnavailable)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    s.now().Add(s.accessTTL),
	}, nil
}
