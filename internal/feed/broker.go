package feed

import (
	"context"
	"errors"
	"sync"
)

// ErrBrokerClosed is returned when subscribing to a closed broker.
var ErrBrokerClosed = errors.New("broker closed")

// Broker fans out raw payloads published on a channel to its subscribers.
type Broker interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (Subscription, error)
}

// Subscription delivers the payloads of one channel until closed.
type Subscription interface {
	Messages() <-chan []byte
	Close() error
}

// MemoryBroker is an in-process Broker for single-instance deployments.
// Slow subscribers drop messages rather than block publishers.
type MemoryBroker struct {
	mu     sync.Mutex
	subs   map[string]map[*memorySubscription]struct{}
	buffer int
	closed bool
}

// NewMemoryBroker creates a MemoryBroker whose subscriptions buffer up to
// buffer messages.
func NewMemoryBroker(buffer int) *MemoryBroker {
	return &MemoryBroker{
		subs:   make(map[string]map[*memorySubscription]struct{}),
		buffer: buffer,
	}
}

func (b *MemoryBroker) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs[channel] {
		select {
		case sub.ch <- payload:
		default:
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(_ context.Context, channel string) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBrokerClosed
	}
	sub := &memorySubscription{broker: b, channel: channel, ch: make(chan []byte, b.buffer)}
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[*memorySubscription]struct{})
	}
	b.subs[channel][sub] = struct{}{}
	return sub, nil
}

// Close ends every subscription.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for channel, subs := range b.subs {
		for sub := range subs {
			close(sub.ch)
		}
		delete(b.subs, channel)
	}
	return nil
}

func (b *MemoryBroker) remove(sub *memorySubscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.subs[sub.channel]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	close(sub.ch)
	if len(subs) == 0 {
		delete(b.subs, sub.channel)
	}
}

type memorySubscription struct {
	broker  *MemoryBroker
	channel string
	ch      chan []byte
	once    sync.Once
}

func (s *memorySubscription) Messages() <-chan []byte { return s.ch }

func (s *memorySubscription) Close() error {
	s.once.Do(func() { s.broker.remove(s) })
	return nil
}
