package identities

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/talentmatch/internal/common"
	"github.com/dmitrijs2005/talentmatch/internal/dbx"
	"github.com/dmitrijs2005/talentmatch/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, identity *models.Identity) (*models.Identity, error) {
	meta, err := json.Marshal(identity.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	query := `
		INSERT INTO identities (id, email, secret_hash, metadata)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err = r.db.QueryRowContext(ctx, query, identity.ID, identity.Email, identity.SecretHash, meta).
		Scan(&identity.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return identity, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	query := `
		SELECT id, email, secret_hash, metadata, email_confirmed_at, created_at
		FROM identities
		WHERE lower(email) = lower($1)
	`
	return scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Identity, error) {
	query := `
		SELECT id, email, secret_hash, metadata, email_confirmed_at, created_at
		FROM identities
		WHERE id = $1
	`
	return scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) ConfirmEmail(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE identities
		SET email_confirmed_at = COALESCE(email_confirmed_at, $2)
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func scanOne(row *sql.Row) (*models.Identity, error) {
	var (
		identity  models.Identity
		meta      []byte
		confirmed sql.NullTime
	)
	err := row.Scan(&identity.ID, &identity.Email, &identity.SecretHash, &meta, &confirmed, &identity.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &identity.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	if confirmed.Valid {
		t := confirmed.Time
		identity.EmailConfirmedAt = &t
	}
	return &identity, nil
}
