package server

import (
	"encoding/json"
	"sync"

	"github.com/playperu/bollyquiz/internal/game"
)

// Broker is an in-process pub/sub for engine events, keyed by game ID.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for the game.
// The channel is closed when the game is removed.
func (b *Broker) Subscribe(gameID string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[gameID] == nil {
		b.subs[gameID] = make(map[chan []byte]struct{})
	}
	b.subs[gameID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the game's subscribers.
func (b *Broker) Unsubscribe(gameID string, ch chan []byte) {
	b.mu.Lock()
	if _, ok := b.subs[gameID][ch]; ok {
		delete(b.subs[gameID], ch)
		close(ch)
	}
	if len(b.subs[gameID]) == 0 {
		delete(b.subs, gameID)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers of the game.
func (b *Broker) Publish(gameID string, e game.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	b.mu.RLock()
	for ch := range b.subs[gameID] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}

// Notifier publishes a session's events under gameID.
func (b *Broker) Notifier(gameID string) game.Notifier {
	return game.NotifierFunc(func(e game.Event) { b.Publish(gameID, e) })
}

// CloseTopic ends every subscription of the game.
func (b *Broker) CloseTopic(gameID string) {
	b.mu.Lock()
	for ch := range b.subs[gameID] {
		close(ch)
	}
	delete(b.subs, gameID)
	b.mu.Unlock()
}

func (b *Broker) Subscribers(gameID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[gameID])
}
