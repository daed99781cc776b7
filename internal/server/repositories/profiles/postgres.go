package profiles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/talentmatch/internal/common"
	"github.com/dmitrijs2005/talentmatch/internal/dbx"
	"github.com/dmitrijs2005/talentmatch/internal/identity"
)

const columns = `identity_id, email, display_name, account_kind, role, created_at, last_login_at, login_count, last_seen`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, identityID string) (*identity.Profile, error) {
	query := `SELECT ` + columns + ` FROM profiles WHERE identity_id = $1`
	return scanProfile(r.db.QueryRowContext(ctx, query, identityID))
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*identity.Profile, error) {
	query := `SELECT ` + columns + ` FROM profiles WHERE lower(email) = lower($1) LIMIT 1`
	return scanProfile(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) Update(ctx context.Context, identityID string, patch identity.ProfilePatch) (*identity.Profile, error) {
	var (
		name      sql.NullString
		lastLogin sql.NullTime
		lastSeen  any
	)
	if patch.DisplayName != nil {
		name = sql.NullString{String: *patch.DisplayName, Valid: true}
	}
	if patch.LastLoginAt != nil {
		lastLogin = sql.NullTime{Time: *patch.LastLoginAt, Valid: true}
	}
	if patch.LastSeen != nil {
		b, err := json.Marshal(patch.LastSeen)
		if err != nil {
			return nil, fmt.Errorf("encode last_seen: %w", err)
		}
		lastSeen = b
	}

	query := `
		UPDATE profiles
		SET display_name  = COALESCE($2, display_name),
		    last_login_at = COALESCE($3, last_login_at),
		    login_count   = login_count + $4,
		    last_seen     = COALESCE($5, last_seen)
		WHERE identity_id = $1
		RETURNING ` + columns

	return scanProfile(r.db.QueryRowContext(ctx, query, identityID, name, lastLogin, patch.LoginCountDelta, lastSeen))
}

func scanProfile(row *sql.Row) (*identity.Profile, error) {
	var (
		p         identity.Profile
		lastLogin sql.NullTime
		lastSeen  []byte
	)
	err := row.Scan(&p.IdentityID, &p.Email, &p.DisplayName, &p.AccountKind, &p.Role,
		&p.CreatedAt, &lastLogin, &p.LoginCount, &lastSeen)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if lastLogin.Valid {
		t := lastLogin.Time
		p.LastLoginAt = &t
	}
	if len(lastSeen) > 0 {
		var d identity.Device
		if err := json.Unmarshal(lastSeen, &d); err != nil {
			return nil, fmt.Errorf("decode last_seen: %w", err)
		}
		p.LastSeen = &d
	}
	return &p, nil
}
