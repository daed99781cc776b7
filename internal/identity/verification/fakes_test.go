package verification

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/talentmatch/internal/common"
	"github.com/dmitrijs2005/talentmatch/internal/identity"
)

// memStore mirrors the SQL semantics: FindValid filters on identity, code,
// used and expiry; MarkUsed is a conditional single-row update.
type memStore struct {
	mu        sync.Mutex
	rows      []*identity.VerificationCode
	confirmed map[string]bool

	// findBarrier, when set, holds every FindValid caller until all of them
	// have found their row.
	findBarrier *sync.WaitGroup

	insertErr error
	latestErr error
}

func newMemStore() *memStore {
	return &memStore{confirmed: map[string]bool{}}
}

func (s *memStore) Insert(_ context.Context, c *identity.VerificationCode) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.rows = append(s.rows, &cp)
	return nil
}

func (s *memStore) FindValid(_ context.Context, identityID, code string, now time.Time) (*identity.VerificationCode, error) {
	s.mu.Lock()
	var found *identity.VerificationCode
	for _, r := range s.rows {
		if r.IdentityID == identityID && r.Code == code && r.ValidAt(now) {
			cp := *r
			found = &cp
			break
		}
	}
	s.mu.Unlock()

	if s.findBarrier != nil && found != nil {
		s.findBarrier.Done()
		s.findBarrier.Wait()
	}
	if found == nil {
		return nil, common.ErrorNotFound
	}
	return found, nil
}

func (s *memStore) MarkUsed(_ context.Context, codeID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.ID == codeID && !r.Used && now.Before(r.ExpiresAt) {
			r.Used = true
			s.confirmed[r.IdentityID] = true
			return nil
		}
	}
	return common.ErrInvalidOrExpiredCode
}

func (s *memStore) Latest(_ context.Context, identityID string) (*identity.VerificationCode, error) {
	if s.latestErr != nil {
		return nil, s.latestErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var mine []*identity.VerificationCode
	for _, r := range s.rows {
		if r.IdentityID == identityID {
			mine = append(mine, r)
		}
	}
	if len(mine) == 0 {
		return nil, common.ErrorNotFound
	}
	sort.SliceStable(mine, func(i, j int) bool { return mine[i].CreatedAt.After(mine[j].CreatedAt) })
	cp := *mine[0]
	return &cp, nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []identity.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg identity.Message) (identity.Delivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return identity.Delivery{ErrorCode: "403"}, m.err
	}
	m.sent = append(m.sent, msg)
	return identity.Delivery{Success: true, MessageID: "msg-1"}, nil
}

type fakeGate struct {
	held  map[string]bool
	err   error
	calls int
}

func (g *fakeGate) Acquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	g.calls++
	if g.err != nil {
		return false, g.err
	}
	if g.held == nil {
		g.held = map[string]bool{}
	}
	if g.held[key] {
		return false, nil
	}
	g.held[key] = true
	return true, nil
}

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, s)
}

func (r *recorder) CodeIssued(reason string) { r.add("issued:" + reason) }
func (r *recorder) Validated(result string)  { r.add("validated:" + result) }
func (r *recorder) Resent(result string)     { r.add("resent:" + result) }
func (r *recorder) DispatchFailed()          { r.add("dispatch_failed") }

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

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

func codes(values ...string) func() (string, error) {
	var mu sync.Mutex
	i := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if i >= len(values) {
			return "", errors.New("out of codes")
		}
		v := values[i]
		i++
		return v, nil
	}
}
