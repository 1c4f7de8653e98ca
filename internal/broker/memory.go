package broker

import (
	"context"
	"sync"

	"docvault/internal/model"
)

// MemoryBroker delivers within the process only
type MemoryBroker struct {
	mu     sync.RWMutex
	subs   map[string]map[chan *model.Notification]struct{}
	closed bool
}

var _ Broker = (*MemoryBroker)(nil)

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[string]map[chan *model.Notification]struct{})}
}

func (b *MemoryBroker) Publish(_ context.Context, n *model.Notification) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs[n.UserID.Hex()] {
		copied := *n
		select {
		case ch <- &copied:
		default:
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(_ context.Context, userID string) (<-chan *model.Notification, func(), error) {
	ch := make(chan *model.Notification, subscriberBuffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}, nil
	}
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[chan *model.Notification]struct{})
	}
	b.subs[userID][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[userID][ch]; ok {
				delete(b.subs[userID], ch)
				if len(b.subs[userID]) == 0 {
					delete(b.subs, userID)
				}
				close(ch)
			}
		})
	}
	return ch, cancel, nil
}

// Close ends every subscription
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for userID, chans := range b.subs {
		for ch := range chans {
			close(ch)
		}
		delete(b.subs, userID)
	}
	return nil
}
