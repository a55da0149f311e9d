package events

import (
	"encoding/json"
	"sync"
)

// Kind names a topic family on the bus.
type Kind string

const (
	KindScan           Kind = "scan"
	KindLeaderboard    Kind = "leaderboard"
	KindChat           Kind = "chat"
	KindGameStatus     Kind = "game-status"
	KindTeamJoined     Kind = "team-joined"
	KindTeamConnection Kind = "team-connection"
)

// Envelope is what subscribers receive: the kind plus the JSON-encoded payload.
type Envelope struct {
	Kind Kind
	Data []byte
}

type topic struct {
	slug string
	kind Kind
}

// Bus is an in-process pub/sub keyed by (game slug, event kind). It is
// constructed explicitly and passed to whoever publishes or subscribes;
// there is no package-level instance.
type Bus struct {
	mu   sync.RWMutex
	subs map[topic]map[chan Envelope]struct{}
}

func NewBus() *Bus {
	return &Bus{
		subs: make(map[topic]map[chan Envelope]struct{}),
	}
}

// Subscription is a single receiver registered under one or more kinds for a
// game. All matching events arrive on C.
type Subscription struct {
	C      chan Envelope
	topics []topic
}

// Subscribe registers a buffered channel under every given kind for the game.
func (b *Bus) Subscribe(slug string, kinds ...Kind) *Subscription {
	sub := &Subscription{C: make(chan Envelope, 16)}
	b.mu.Lock()
	for _, k := range kinds {
		t := topic{slug: slug, kind: k}
		if b.subs[t] == nil {
			b.subs[t] = make(map[chan Envelope]struct{})
		}
		b.subs[t][sub.C] = struct{}{}
		sub.topics = append(sub.topics, t)
	}
	b.mu.Unlock()
	return sub
}

// Unsubscribe removes the subscription from every topic it was registered
// under. Safe to call more than once.
func (b *Bus) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	for _, t := range sub.topics {
		delete(b.subs[t], sub.C)
		if len(b.subs[t]) == 0 {
			delete(b.subs, t)
		}
	}
	b.mu.Unlock()
}

// Publish sends the JSON-encoded payload to every subscriber of
// (slug, kind). It never blocks: slow subscribers lose events.
func (b *Bus) Publish(slug string, kind Kind, payload any) {
	data, _ := json.Marshal(payload)
	env := Envelope{Kind: kind, Data: data}
	b.mu.RLock()
	for ch := range b.subs[topic{slug: slug, kind: kind}] {
		select {
		case ch <- env:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}

// SubscriberCount reports the current number of subscribers for a topic.
func (b *Bus) SubscriberCount(slug string, kind Kind) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic{slug: slug, kind: kind}])
}
