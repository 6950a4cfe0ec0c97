// Package events is the in-process change notification bus. Views subscribe to learn that
// the active store changed and re-fetch their own data.
package events

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/martory/go-tenant-session/stores"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// StoreChanged is published after the active store has been persisted
type StoreChanged struct {
	Store stores.Store `json:"store"`
}

// Handler receives events. A returned error is logged and does not stop delivery.
type Handler func(StoreChanged) error

type subscription struct {
	id      uint64
	handler Handler
	active  atomic.Bool
}

// Bus dispatches synchronously, in registration order, on the publisher's goroutine.
type Bus struct {
	mu     sync.Mutex
	subs   []*subscription
	nextID uint64
	logger zerolog.Logger
}

// Option configures a Bus
type Option func(*Bus)

func WithLogger(l zerolog.Logger) Option {
	return func(b *Bus) { b.logger = l }
}

func NewBus(opts ...Option) *Bus {
	b := &Bus{logger: log.Logger}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Subscribe registers h and returns a function removing it. Calling the returned
// function more than once is harmless.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	sub := &subscription{id: b.nextID, handler: h}
	sub.active.Store(true)
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(sub) })
	}
}

// SubscribeFunc registers a handler that cannot fail
func (b *Bus) SubscribeFunc(fn func(StoreChanged)) (unsubscribe func()) {
	return b.Subscribe(func(ev StoreChanged) error {
		fn(ev)
		return nil
	})
}

// Publish delivers ev to every current subscriber. A subscriber removed during the
// dispatch is skipped if it has not been reached yet. Publish never panics because of a
// subscriber.
func (b *Bus) Publish(ev StoreChanged) {
	b.mu.Lock()
	snapshot := make([]*subscription, len(b.subs))
	copy(snapshot, b.subs)
	b.mu.Unlock()

	for _, sub := range snapshot {
		if !sub.active.Load() {
			continue
		}
		if err := b.deliver(sub, ev); err != nil {
			b.logger.Error().Err(err).
				Uint64("subscriber", sub.id).
				Int64("store_id", ev.Store.ID).
				Msg("store changed subscriber failed")
		}
	}
}

// Len returns the number of subscribers
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Bus) deliver(sub *subscription, ev StoreChanged) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return sub.handler(ev)
}

func (b *Bus) remove(sub *subscription) {
	sub.active.Store(false)
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s == sub {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}
