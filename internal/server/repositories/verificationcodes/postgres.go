package verificationcodes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/talentmatch/internal/common"
	"github.com/dmitrijs2005/talentmatch/internal/dbx"
	"github.com/dmitrijs2005/talentmatch/internal/identity"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, c *identity.VerificationCode) error {
	query := `
		INSERT INTO verification_codes (id, identity_id, code, created_at, expires_at, used)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.ExecContext(ctx, query, c.ID, c.IdentityID, c.Code, c.CreatedAt, c.ExpiresAt, c.Used); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindValid(ctx context.Context, identityID, code string, now time.Time) (*identity.VerificationCode, error) {
	query := `
		SELECT id, identity_id, code, created_at, expires_at, used
		FROM verification_codes
		WHERE identity_id = $1 AND code = $2 AND used = false AND expires_at > $3
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanCode(r.db.QueryRowContext(ctx, query, identityID, code, now))
}

func (r *PostgresRepository) MarkUsed(ctx context.Context, codeID string, now time.Time) (string, error) {
	query := `
		UPDATE verification_codes
		SET used = true
		WHERE id = $1 AND used = false AND expires_at > $2
		RETURNING identity_id
	`
	var identityID string
	if err := r.db.QueryRowContext(ctx, query, codeID, now).Scan(&identityID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrInvalidOrExpiredCode
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return identityID, nil
}

func (r *PostgresRepository) Latest(ctx context.Context, identityID string) (*identity.VerificationCode, error) {
	query := `
		SELECT id, identity_id, code, created_at, expires_at, used
		FROM verification_codes
		WHERE identity_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanCode(r.db.QueryRowContext(ctx, query, identityID))
}

func scanCode(row *sql.Row) (*identity.VerificationCode, error) {
	c := &identity.VerificationCode{}
	if err := row.Scan(&c.ID, &c.IdentityID, &c.Code, &c.CreatedAt, &c.ExpiresAt, &c.Used); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}
