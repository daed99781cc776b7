package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/talentmatch/internal/common"
	"github.com/dmitrijs2005/talentmatch/internal/identity"
	"github.com/dmitrijs2005/talentmatch/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrap_RestoresPersistedSession(t *testing.T) {
	creds := newFakeCredentials()
	creds.current = func(context.Context) (*identity.Session, error) { return session("a"), nil }
	m := New(creds, newFakeProfiles(profile("a", identity.RoleUser)), logging.Nop())

	require.NoError(t, m.Bootstrap(context.Background()))

	st := m.Snapshot()
	assert.True(t, st.SignedIn())
	assert.False(t, st.Loading)
	require.NotNil(t, st.Profile)
	assert.Equal(t, "a", st.Profile.IdentityID)
}

func TestBootstrap_SignedOut(t *testing.T) {
	m := New(newFakeCredentials(), newFakeProfiles(), logging.Nop())

	require.NoError(t, m.Bootstrap(context.Background()))
	assert.Equal(t, State{}, m.Snapshot())
}

func TestBootstrap_OnlyOnce(t *testing.T) {
	m := New(newFakeCredentials(), newFakeProfiles(), logging.Nop())
	ctx := context.Background()

	require.NoError(t, m.Bootstrap(ctx))
	assert.ErrorIs(t, m.Bootstrap(ctx), ErrAlreadyBootstrapped)
}

func TestBootstrap_StoreErrorFailsOpenToSignedOut(t *testing.T) {
	creds := newFakeCredentials()
	creds.current = func(context.Context) (*identity.Session, error) { return nil, errors.New("connection refused") }
	log := &captureLogger{}
	m := New(creds, newFakeProfiles(), log)

	require.NoError(t, m.Bootstrap(context.Background()))
	assert.Equal(t, State{}, m.Snapshot())
	assert.Len(t, log.errs, 1)
}

func TestBootstrap_NoLostWakeup(t *testing.T) {
	creds := newFakeCredentials()
	profiles := newFakeProfiles(profile("b", identity.RoleUser))

	creds.current = func(ctx context.Context) (*identity.Session, error) {
		// the subscription is already live when the read starts
		assert.Equal(t, 1, creds.Len())
		creds.Publish(ctx, identity.AuthEvent{Kind: identity.EventSignedIn, Session: session("b")})
		return nil, nil
	}
	m := New(creds, profiles, logging.Nop())

	require.NoError(t, m.Bootstrap(context.Background()))

	st := m.Snapshot()
	require.True(t, st.SignedIn())
	assert.Equal(t, "b", st.Session.Identity.ID)
	assert.Equal(t, "b", st.Profile.IdentityID)
	assert.False(t, st.Loading)
}

func TestApply_LaterGenerationWins_StaleResolvesLast(t *testing.T) {
	creds := newFakeCredentials()
	creds.current = func(context.Context) (*identity.Session, error) { return session("a"), nil }
	profiles := newFakeProfiles(profile("a", identity.RoleUser), profile("b", identity.RoleAdmin))
	m := New(creds, profiles, logging.Nop())

	enteredA, releaseA := profiles.block("a")

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = m.Bootstrap(context.Background())
	}()

	<-enteredA
	assert.True(t, m.Snapshot().Loading)

	creds.Publish(context.Background(), identity.AuthEvent{Kind: identity.EventTokenRefreshed, Session: session("b")})
	assert.Equal(t, "b", m.Snapshot().Profile.IdentityID)

	releaseA()
	<-done

	st := m.Snapshot()
	assert.Equal(t, "b", st.Session.Identity.ID)
	assert.Equal(t, "b", st.Profile.IdentityID)
	assert.False(t, st.Loading)
}

func TestApply_LaterGenerationWins_StaleResolvesFirst(t *testing.T) {
	creds := newFakeCredentials()
	creds.current = func(context.Context) (*identity.Session, error) { return session("a"), nil }
	profiles := newFakeProfiles(profile("a", identity.RoleUser), profile("b", identity.RoleAdmin))
	m := New(creds, profiles, logging.Nop())
	ctx := context.Background()

	enteredA, releaseA := profiles.block("a")
	enteredB, releaseB := profiles.block("b")

	bootDone := make(chan struct{})
	go func() {
		defer close(bootDone)
		_ = m.Bootstrap(ctx)
	}()
	<-enteredA

	eventDone := make(chan struct{})
	go func() {
		defer close(eventDone)
		creds.Publish(ctx, identity.AuthEvent{Kind: identity.EventTokenRefreshed, Session: session("b")})
	}()
	<-enteredB

	releaseA()
	<-bootDone
	assert.True(t, m.Snapshot().Loading, "stale result must not clear loading for the newer generation")
	assert.Nil(t, m.Snapshot().Session)

	releaseB()
	<-eventDone

	st := m.Snapshot()
	assert.Equal(t, "b", st.Session.Identity.ID)
	assert.False(t, st.Loading)
}

func TestApply_MissingProfileIsLoggedNotReturned(t *testing.T) {
	creds := newFakeCredentials()
	creds.current = func(context.Context) (*identity.Session, error) { return session("ghost"), nil }
	log := &captureLogger{}
	m := New(creds, newFakeProfiles(), log)

	require.NoError(t, m.Bootstrap(context.Background()))

	st := m.Snapshot()
	assert.True(t, st.SignedIn())
	assert.Nil(t, st.Profile)
	assert.False(t, st.Loading)
	require.Len(t, log.warns, 1)
	assert.Contains(t, log.warns[0], "provisioning inconsistency")
}

func TestSignedInEvent_RecordsLoginBookkeeping(t *testing.T) {
	creds := newFakeCredentials()
	profiles := newFakeProfiles(profile("a", identity.RoleUser))
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	device := identity.Device{IP: "10.1.2.3", Platform: "linux"}
	m := New(creds, profiles, logging.Nop(), WithClock(func() time.Time { return now }), WithDevice(device))
	ctx := context.Background()
	require.NoError(t, m.Bootstrap(ctx))

	creds.Publish(ctx, identity.AuthEvent{Kind: identity.EventSignedIn, Session: session("a")})

	require.Len(t, profiles.patches, 1)
	patch := profiles.patches[0]
	assert.Equal(t, int64(1), patch.LoginCountDelta)
	assert.Equal(t, now, *patch.LastLoginAt)
	assert.Equal(t, device, *patch.LastSeen)

	st := m.Snapshot()
	assert.Equal(t, int64(1), st.Profile.LoginCount)
}

func TestSignedInEvent_BookkeepingFailureFallsBackToRead(t *testing.T) {
	creds := newFakeCredentials()
	profiles := newFakeProfiles(profile("a", identity.RoleUser))
	profiles.updateErr = errors.New("deadlock detected")
	m := New(creds, profiles, logging.Nop())
	ctx := context.Background()
	require.NoError(t, m.Bootstrap(ctx))

	creds.Publish(ctx, identity.AuthEvent{Kind: identity.EventSignedIn, Session: session("a")})

	require.NotNil(t, m.Profile())
	assert.Equal(t, "a", m.Profile().IdentityID)
}

func TestSignOut_Idempotent(t *testing.T) {
	creds := newFakeCredentials()
	creds.current = func(context.Context) (*identity.Session, error) { return session("a"), nil }
	creds.signOutErr = []error{nil, common.ErrInvalidToken}
	m := New(creds, newFakeProfiles(profile("a", identity.RoleUser)), logging.Nop())
	ctx := context.Background()
	require.NoError(t, m.Bootstrap(ctx))

	assert.NoError(t, m.SignOut(ctx))
	assert.NoError(t, m.SignOut(ctx))

	assert.Equal(t, State{}, m.Snapshot())
	assert.Equal(t, 2, creds.signOuts)
}

func TestSignOut_ClearsEvenWhenStoreFails(t *testing.T) {
	creds := newFakeCredentials()
	creds.current = func(context.Context) (*identity.Session, error) { return session("a"), nil }
	creds.signOutErr = []error{errors.New("503 service unavailable")}
	m := New(creds, newFakeProfiles(profile("a", identity.RoleUser)), logging.Nop())
	ctx := context.Background()
	require.NoError(t, m.Bootstrap(ctx))

	err := m.SignOut(ctx)
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
	assert.Equal(t, State{}, m.Snapshot())
}

func TestTeardown_ReleasesSubscription(t *testing.T) {
	creds := newFakeCredentials()
	m := New(creds, newFakeProfiles(profile("a", identity.RoleUser)), logging.Nop())
	ctx := context.Background()
	require.NoError(t, m.Bootstrap(ctx))
	require.Equal(t, 1, creds.Len())

	m.Teardown()
	m.Teardown()
	assert.Equal(t, 0, creds.Len())

	creds.Publish(ctx, identity.AuthEvent{Kind: identity.EventSignedIn, Session: session("a")})
	assert.False(t, m.Snapshot().SignedIn())
}

func TestBootstrap_PanicReleasesSubscription(t *testing.T) {
	creds := newFakeCredentials()
	creds.current = func(context.Context) (*identity.Session, error) { panic("driver bug") }
	m := New(creds, newFakeProfiles(), logging.Nop())

	assert.PanicsWithValue(t, "driver bug", func() { _ = m.Bootstrap(context.Background()) })
	assert.Equal(t, 0, creds.Len())
}

func TestIsAdmin_FollowsProfile(t *testing.T) {
	creds := newFakeCredentials()
	profiles := newFakeProfiles(profile("u", identity.RoleUser), profile("adm", identity.RoleAdmin))
	m := New(creds, profiles, logging.Nop())
	ctx := context.Background()
	require.NoError(t, m.Bootstrap(ctx))

	assert.False(t, m.IsAdmin(), "signed out")

	creds.Publish(ctx, identity.AuthEvent{Kind: identity.EventTokenRefreshed, Session: session("u")})
	assert.False(t, m.IsAdmin())

	creds.Publish(ctx, identity.AuthEvent{Kind: identity.EventTokenRefreshed, Session: session("adm")})
	assert.True(t, m.IsAdmin())

	creds.Publish(ctx, identity.AuthEvent{Kind: identity.EventSignedOut})
	assert.False(t, m.IsAdmin())
}

func TestApplySession_InstallsAndClears(t *testing.T) {
	m := New(newFakeCredentials(), newFakeProfiles(profile("c", identity.RoleUser)), logging.Nop())
	ctx := context.Background()

	m.ApplySession(ctx, session("c"))
	st := m.Snapshot()
	require.True(t, st.SignedIn())
	require.NotNil(t, st.Profile)
	assert.Equal(t, "c", st.Profile.IdentityID)
	assert.False(t, st.Loading)

	m.ApplySession(ctx, nil)
	assert.Equal(t, State{}, m.Snapshot())
}
