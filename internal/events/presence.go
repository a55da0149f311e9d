package events

import (
	"sync"
	"time"
)

// ConnectionEvent is published on the team-connection topic, once per
// transition.
type ConnectionEvent struct {
	TeamID    string `json:"teamId"`
	Connected bool   `json:"connected"`
}

type teamPresence struct {
	slug      string
	lastBeat  time.Time
	connected bool
}

// Presence tracks per-team heartbeats and publishes a team-connection event
// when a team connects or times out. A missed heartbeat alone does nothing;
// only the connected/disconnected transition is reported.
type Presence struct {
	bus     *Bus
	timeout time.Duration
	now     func() time.Time

	mu    sync.Mutex
	teams map[string]*teamPresence
}

func NewPresence(bus *Bus, timeout time.Duration) *Presence {
	return &Presence{
		bus:     bus,
		timeout: timeout,
		now:     time.Now,
		teams:   make(map[string]*teamPresence),
	}
}

// Heartbeat records a beat for the team. The first beat, or a beat after a
// timeout, publishes a connected event.
func (p *Presence) Heartbeat(slug, teamID string) {
	p.mu.Lock()
	tp, ok := p.teams[teamID]
	if !ok {
		tp = &teamPresence{slug: slug}
		p.teams[teamID] = tp
	}
	tp.lastBeat = p.now()
	wasConnected := tp.connected
	tp.connected = true
	p.mu.Unlock()

	if !wasConnected {
		p.bus.Publish(slug, KindTeamConnection, ConnectionEvent{TeamID: teamID, Connected: true})
	}
}

// CheckTimeouts marks teams whose last beat is older than the timeout as
// disconnected. Meant to run periodically.
func (p *Presence) CheckTimeouts() {
	cutoff := p.now().Add(-p.timeout)

	p.mu.Lock()
	var gone []struct{ slug, teamID string }
	for id, tp := range p.teams {
		if tp.connected && tp.lastBeat.Before(cutoff) {
			tp.connected = false
			gone = append(gone, struct{ slug, teamID string }{tp.slug, id})
		}
	}
	p.mu.Unlock()

	for _, g := range gone {
		p.bus.Publish(g.slug, KindTeamConnection, ConnectionEvent{TeamID: g.teamID, Connected: false})
	}
}

// Connected reports whether the team is currently considered connected.
func (p *Presence) Connected(teamID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	tp, ok := p.teams[teamID]
	return ok && tp.connected
}
