// Package repomanager vends PostgreSQL repositories bound to a connection or
// transaction and applies the embedded goose migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/talentmatch/internal/dbx"
	"github.com/dmitrijs2005/talentmatch/internal/server/repositories/identities"
	"github.com/dmitrijs2005/talentmatch/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/talentmatch/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/talentmatch/internal/server/repositories/verificationcodes"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Identities(db dbx.DBTX) identities.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	VerificationCodes(db dbx.DBTX) verificationcodes.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
