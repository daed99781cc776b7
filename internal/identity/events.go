package identity

import (
	"context"
	"sync"
)

type EventKind string

const (
	EventSignedIn       EventKind = "signed_in"
	EventSignedOut      EventKind = "signed_out"
	EventTokenRefreshed EventKind = "token_refreshed"
)

// AuthEvent is delivered to subscribers on every credential state change.
// Session is nil for EventSignedOut.
type AuthEvent struct {
	Kind    EventKind
	Session *Session
}

type Listener func(ctx context.Context, ev AuthEvent)

// Subscription is the handle returned by Subscribe. Unsubscribe is safe to
// call more than once.
type Subscription interface {
	Unsubscribe()
}

// Broker fans auth events out to listeners. Publish delivers synchronously on
// the caller's goroutine, in subscription order, to a snapshot of the
// listeners registered when Publish was called.
type Broker struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]Listener
	order  []int
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[int]Listener)}
}

func (b *Broker) Subscribe(fn Listener) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.order = append(b.order, id)

	return &subscription{broker: b, id: id}
}

func (b *Broker) Publish(ctx context.Context, ev AuthEvent) {
	b.mu.Lock()
	listeners := make([]Listener, 0, len(b.order))
	for _, id := range b.order {
		listeners = append(listeners, b.subs[id])
	}
	b.mu.Unlock()

	for _, fn := range listeners {
		fn(ctx, ev)
	}
}

// Len returns the number of active subscriptions.
func (b *Broker) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Broker) remove(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[id]; !ok {
		return
	}
	delete(b.subs, id)
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

type subscription struct {
	broker *Broker
	id     int
	once   sync.Once
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() { s.broker.remove(s.id) })
}
