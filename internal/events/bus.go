package events

import (
	"context"
	"reflect"
	"sync"

	tberrors "git.home.luguber.info/inful/texbuilder/internal/errors"
)

// Bus is a typed, in-process event bus connecting the file watcher, the
// debouncer and the rebuild worker.
//
// Delivery is by exact event type. Publish blocks until every subscriber of
// that type accepted the event, unsubscribed, or ctx is canceled.
//
// Shutdown contract: unsubscribing or closing the bus may happen while a
// Publish is in flight. A subscription's channel is closed only after every
// pending send to it has returned, so publishers never observe a closed
// channel.
type Bus struct {
	mu     sync.RWMutex
	subs   map[reflect.Type]map[uint64]endpoint
	nextID uint64
	closed bool
}

// ErrBusClosed is returned by Publish after Close.
var ErrBusClosed = tberrors.New(tberrors.CategoryInternal, tberrors.SeverityWarning, "event bus is closed")

type endpoint interface {
	deliver(ctx context.Context, evt any) error
	shutdown()
}

// subscription owns its channel. senders hold mu for reading while they
// wait; shutdown closes done to wake them and then takes mu for writing
// before closing ch.
type subscription[T any] struct {
	ch       chan T
	done     chan struct{}
	mu       sync.RWMutex
	isClosed bool
	once     sync.Once
}

func (s *subscription[T]) deliver(ctx context.Context, evt any) error {
	v, ok := evt.(T)
	if !ok {
		return tberrors.InternalError("event type mismatch", nil).
			WithContext("expected", reflect.TypeFor[T]().String()).
			WithContext("actual", reflect.TypeOf(evt).String())
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.isClosed {
		return nil
	}
	select {
	case s.ch <- v:
		return nil
	case <-s.done:
		return nil
	case <-ctx.Done():
		return tberrors.Wrap(ctx.Err(), tberrors.CategoryInterrupted, tberrors.SeverityInfo, "event publish canceled").
			WithContext("event_type", reflect.TypeFor[T]().String())
	}
}

func (s *subscription[T]) shutdown() {
	s.once.Do(func() {
		close(s.done)
		s.mu.Lock()
		s.isClosed = true
		close(s.ch)
		s.mu.Unlock()
	})
}

// NewBus returns an open bus with no subscribers.
func NewBus() *Bus {
	return &Bus{subs: make(map[reflect.Type]map[uint64]endpoint)}
}

// Subscribe registers a subscription for events of type T and returns the
// channel plus an unsubscribe func. The channel is closed by unsubscribe or
// Close; on a closed bus it is returned already closed.
func Subscribe[T any](b *Bus, buffer int) (<-chan T, func()) {
	eventType := reflect.TypeFor[T]()
	sub := &subscription[T]{ch: make(chan T, buffer), done: make(chan struct{})}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		sub.shutdown()
		return sub.ch, func() {}
	}
	b.nextID++
	id := b.nextID
	if b.subs[eventType] == nil {
		b.subs[eventType] = make(map[uint64]endpoint)
	}
	b.subs[eventType][id] = sub
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		if typeSubs, ok := b.subs[eventType]; ok {
			delete(typeSubs, id)
			if len(typeSubs) == 0 {
				delete(b.subs, eventType)
			}
		}
		b.mu.Unlock()
		sub.shutdown()
	}
	return sub.ch, unsubscribe
}

// Publish delivers evt to every subscriber of its concrete type.
func (b *Bus) Publish(ctx context.Context, evt any) error {
	if evt == nil {
		return tberrors.ValidationFailed("event", "must not be nil")
	}
	if ctx == nil {
		return tberrors.ValidationFailed("context", "must not be nil")
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	typeSubs := b.subs[reflect.TypeOf(evt)]
	targets := make([]endpoint, 0, len(typeSubs))
	for _, s := range typeSubs {
		targets = append(targets, s)
	}
	b.mu.RUnlock()

	for _, s := range targets {
		if err := s.deliver(ctx, evt); err != nil {
			return err
		}
	}
	return nil
}

// Close shuts down every subscription. Later Publish calls return
// ErrBusClosed.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	var all []endpoint
	for _, typeSubs := range b.subs {
		for _, s := range typeSubs {
			all = append(all, s)
		}
	}
	b.subs = make(map[reflect.Type]map[uint64]endpoint)
	b.mu.Unlock()

	for _, s := range all {
		s.shutdown()
	}
}
