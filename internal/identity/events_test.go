package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroker_DeliversInOrder(t *testing.T) {
	b := NewBroker()
	var got []string

	b.Subscribe(func(_ context.Context, ev AuthEvent) { got = append(got, "first:"+string(ev.Kind)) })
	b.Subscribe(func(_ context.Context, ev AuthEvent) { got = append(got, "second:"+string(ev.Kind)) })

	b.Publish(context.Background(), AuthEvent{Kind: EventSignedIn, Session: &Session{}})

	assert.Equal(t, []string{"first:signed_in", "second:signed_in"}, got)
}

func TestBroker_UnsubscribeIsIdempotent(t *testing.T) {
	b := NewBroker()
	calls := 0
	sub := b.Subscribe(func(context.Context, AuthEvent) { calls++ })
	require.Equal(t, 1, b.Len())

	sub.Unsubscribe()
	sub.Unsubscribe()
	b.Publish(context.Background(), AuthEvent{Kind: EventSignedOut})

	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, b.Len())
}

func TestBroker_ListenerMayUnsubscribeDuringPublish(t *testing.T) {
	b := NewBroker()
	var sub Subscription
	calls := 0
	sub = b.Subscribe(func(context.Context, AuthEvent) {
		calls++
		sub.Unsubscribe()
	})

	b.Publish(context.Background(), AuthEvent{Kind: EventSignedIn})
	b.Publish(context.Background(), AuthEvent{Kind: EventSignedIn})

	assert.Equal(t, 1, calls)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "bob@x.com", NormalizeEmail("  Bob@X.com \n"))
}

func TestVerificationCode_ValidAt(t *testing.T) {
	c := &VerificationCode{Code: "482913"}
	c.ExpiresAt = c.CreatedAt.Add(10 * time.Minute)

	assert.True(t, c.ValidAt(c.ExpiresAt.Add(-time.Second)))
	assert.False(t, c.ValidAt(c.ExpiresAt))
	assert.False(t, c.ValidAt(c.ExpiresAt.Add(time.Second)))

	c.Used = true
	assert.False(t, c.ValidAt(c.CreatedAt))

	var none *VerificationCode
	assert.False(t, none.ValidAt(c.CreatedAt))
}
