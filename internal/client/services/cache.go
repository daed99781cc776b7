package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/talentmatch/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/talentmatch/internal/dbx"
	"github.com/dmitrijs2005/talentmatch/internal/identity"
)

const (
	keyIdentity     = "identity"
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyExpiresAt    = "expires_at"
)

// SessionCache persists the signed-in session in the local metadata table.
type SessionCache struct {
	db *sql.DB
}

func NewSessionCache(db *sql.DB) *SessionCache {
	return &SessionCache{db: db}
}

// Load returns the cached session, or nil when nothing is cached.
func (c *SessionCache) Load(ctx context.Context) (*identity.Session, error) {
	values, err := metadata.NewSQLiteRepository(c.db).List(ctx)
	if err != nil {
		return nil, err
	}

	refresh, ok := values[keyRefreshToken]
	if !ok || len(refresh) == 0 {
		return nil, nil
	}

	s := &identity.Session{
		AccessToken:  string(values[keyAccessToken]),
		RefreshToken: string(refresh),
	}
	if err := json.Unmarshal(values[keyIdentity], &s.Identity); err != nil {
		return nil, fmt.Errorf("decode cached identity: %w", err)
	}
	if raw := values[keyExpiresAt]; len(raw) > 0 {
		if s.ExpiresAt, err = time.Parse(time.RFC3339Nano, string(raw)); err != nil {
			return nil, fmt.Errorf("decode cached expiry: %w", err)
		}
	}
	return s, nil
}

// Save replaces the cached session in one transaction.
func (c *SessionCache) Save(ctx context.Context, s *identity.Session) error {
	id, err := json.Marshal(s.Identity)
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Clear(ctx); err != nil {
			return err
		}
		pairs := []struct {
			key   string
			value []byte
		}{
			{keyIdentity, id},
			{keyAccessToken, []byte(s.AccessToken)},
			{keyRefreshToken, []byte(s.RefreshToken)},
			{keyExpiresAt, []byte(s.ExpiresAt.UTC().Format(time.RFC3339Nano))},
		}
		for _, p := range pairs {
			if err := repo.Set(ctx, p.key, p.value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *SessionCache) Clear(ctx context.Context) error {
	return metadata.NewSQLiteRepository(c.db).Clear(ctx)
}
