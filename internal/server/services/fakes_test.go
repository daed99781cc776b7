package services

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/talentmatch/internal/common"
	"github.com/dmitrijs2005/talentmatch/internal/dbx"
	"github.com/dmitrijs2005/talentmatch/internal/identity"
	"github.com/dmitrijs2005/talentmatch/internal/server/models"
	"github.com/dmitrijs2005/talentmatch/internal/server/repositories/identities"
	"github.com/dmitrijs2005/talentmatch/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/talentmatch/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/talentmatch/internal/server/repositories/verificationcodes"
)

// memDB plays the Postgres schema, including the profile trigger.
type memDB struct {
	mu         sync.Mutex
	identities map[string]*models.Identity
	profiles   map[string]*identity.Profile
	codes      []*identity.VerificationCode
	tokens     map[string]*models.RefreshToken
	now        func() time.Time

	lookupErr error
}

func newMemDB(now func() time.Time) *memDB {
	return &memDB{
		identities: map[string]*models.Identity{},
		profiles:   map[string]*identity.Profile{},
		tokens:     map[string]*models.RefreshToken{},
		now:        now,
	}
}

type memRepos struct{ db *memDB }

func (m *memRepos) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memRepos) Identities(dbx.DBTX) identities.Repository  { return identitiesRepo{m.db} }
func (m *memRepos) Profiles(dbx.DBTX) profiles.Repository      { return profilesRepo{m.db} }
func (m *memRepos) VerificationCodes(dbx.DBTX) verificationcodes.Repository {
	return codesRepo{m.db}
}
func (m *memRepos) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return tokensRepo{m.db} }

type identitiesRepo struct{ *memDB }

func (r identitiesRepo) Create(_ context.Context, in *models.Identity) (*models.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.identities {
		if strings.EqualFold(row.Email, in.Email) {
			return nil, common.ErrorAlreadyExists
		}
	}
	row := *in
	row.CreatedAt = r.now()
	r.identities[row.ID] = &row
	r.profiles[row.ID] = &identity.Profile{
		IdentityID:  row.ID,
		Email:       row.Email,
		DisplayName: row.Metadata.DisplayName,
		AccountKind: row.Metadata.AccountKind,
		Role:        identity.RoleUser,
		CreatedAt:   row.CreatedAt,
	}
	out := row
	return &out, nil
}

func (r identitiesRepo) GetByEmail(_ context.Context, email string) (*models.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	for _, row := range r.identities {
		if strings.EqualFold(row.Email, email) {
			out := *row
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r identitiesRepo) GetByID(_ context.Context, id string) (*models.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.identities[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *row
	return &out, nil
}

func (r identitiesRepo) ConfirmEmail(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.identities[id]
	if !ok {
		return common.ErrorNotFound
	}
	if row.EmailConfirmedAt == nil {
		row.EmailConfirmedAt = &at
	}
	return nil
}

type profilesRepo struct{ *memDB }

func (r profilesRepo) Get(_ context.Context, id string) (*identity.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *p
	return &out, nil
}

func (r profilesRepo) FindByEmail(_ context.Context, email string) (*identity.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if strings.EqualFold(p.Email, email) {
			out := *p
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r profilesRepo) Update(_ context.Context, id string, patch identity.ProfilePatch) (*identity.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if patch.DisplayName != nil {
		p.DisplayName = *patch.DisplayName
	}
	if patch.LastLoginAt != nil {
		p.LastLoginAt = patch.LastLoginAt
	}
	if patch.LastSeen != nil {
		p.LastSeen = patch.LastSeen
	}
	p.LoginCount += patch.LoginCountDelta
	out := *p
	return &out, nil
}

type codesRepo struct{ *memDB }

func (r codesRepo) Insert(_ context.Context, c *identity.VerificationCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row := *c
	r.codes = append(r.codes, &row)
	return nil
}

func (r codesRepo) FindValid(_ context.Context, identityID, code string, now time.Time) (*identity.VerificationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.codes) - 1; i >= 0; i-- {
		c := r.codes[i]
		if c.IdentityID == identityID && c.Code == code && c.ValidAt(now) {
			out := *c
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r codesRepo) MarkUsed(_ context.Context, codeID string, now time.Time) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.codes {
		if c.ID == codeID && c.ValidAt(now) {
			c.Used = true
			return c.IdentityID, nil
		}
	}
	return "", common.ErrInvalidOrExpiredCode
}

func (r codesRepo) Latest(_ context.Context, identityID string) (*identity.VerificationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.codes) - 1; i >= 0; i-- {
		if r.codes[i].IdentityID == identityID {
			out := *r.codes[i]
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

type tokensRepo struct{ *memDB }

func (r tokensRepo) Create(_ context.Context, identityID, token string, validity time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = &models.RefreshToken{IdentityID: identityID, Token: token, Expires: r.now().Add(validity), CreatedAt: r.now()}
	return nil
}

func (r tokensRepo) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *t
	return &out, nil
}

func (r tokensRepo) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
	return nil
}

// outbox captures mailed codes.
type outbox struct {
	mu   sync.Mutex
	sent []identity.Message
	fail bool
}

func (o *outbox) Send(_ context.Context, msg identity.Message) (identity.Delivery, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fail {
		return identity.Delivery{ErrorCode: "403"}, nil
	}
	o.sent = append(o.sent, msg)
	return identity.Delivery{Success: true, MessageID: "m"}, nil
}

func (o *outbox) last() identity.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sent[len(o.sent)-1]
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock { return &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}
