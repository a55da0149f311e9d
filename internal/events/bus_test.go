package events

import (
	"encoding/json"
	"testing"
	"time"
)

func TestPublishReachesSubscribers(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe("demo", KindScan)
	defer bus.Unsubscribe(sub)

	bus.Publish("demo", KindScan, map[string]string{"teamId": "t1"})

	select {
	case env := <-sub.C:
		if env.Kind != KindScan {
			t.Errorf("expected kind scan, got %q", env.Kind)
		}
		var payload map[string]string
		json.Unmarshal(env.Data, &payload)
		if payload["teamId"] != "t1" {
			t.Errorf("unexpected payload: %s", env.Data)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestPublishIsScopedByGameAndKind(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe("demo", KindScan)
	defer bus.Unsubscribe(sub)

	bus.Publish("other", KindScan, "x")
	bus.Publish("demo", KindChat, "x")

	select {
	case env := <-sub.C:
		t.Fatalf("unexpected event: %+v", env)
	default:
	}
}

func TestSubscribeMultipleKinds(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe("demo", KindScan, KindLeaderboard)
	defer bus.Unsubscribe(sub)

	bus.Publish("demo", KindScan, 1)
	bus.Publish("demo", KindLeaderboard, 2)

	got := map[Kind]bool{}
	for i := 0; i < 2; i++ {
		select {
		case env := <-sub.C:
			got[env.Kind] = true
		case <-time.After(time.Second):
			t.Fatal("missing event")
		}
	}
	if !got[KindScan] || !got[KindLeaderboard] {
		t.Errorf("expected both kinds, got %v", got)
	}
}

func TestUnsubscribeRemovesListener(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe("demo", KindScan)
	bus.Unsubscribe(sub)

	if n := bus.SubscriberCount("demo", KindScan); n != 0 {
		t.Errorf("expected 0 subscribers, got %d", n)
	}
	// Double unsubscribe must not panic.
	bus.Unsubscribe(sub)
}

func TestPublishNeverBlocksOnSlowSubscriber(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe("demo", KindScan)
	defer bus.Unsubscribe(sub)

	// Nobody drains sub.C; publishing past the buffer must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			bus.Publish("demo", KindScan, i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestPresenceTransitions(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe("demo", KindTeamConnection)
	defer bus.Unsubscribe(sub)

	now := time.Now()
	p := NewPresence(bus, 15*time.Second)
	p.now = func() time.Time { return now }

	p.Heartbeat("demo", "t1")
	if !p.Connected("t1") {
		t.Fatal("expected t1 connected after heartbeat")
	}

	// Repeated beats within the window publish nothing new.
	p.Heartbeat("demo", "t1")
	p.CheckTimeouts()

	// Time out.
	now = now.Add(20 * time.Second)
	p.CheckTimeouts()
	if p.Connected("t1") {
		t.Fatal("expected t1 disconnected after timeout")
	}
	// A second check must not repeat the disconnect event.
	p.CheckTimeouts()

	// Reconnect.
	p.Heartbeat("demo", "t1")

	var got []ConnectionEvent
	for {
		select {
		case env := <-sub.C:
			var ev ConnectionEvent
			json.Unmarshal(env.Data, &ev)
			got = append(got, ev)
			continue
		default:
		}
		break
	}

	want := []ConnectionEvent{
		{TeamID: "t1", Connected: true},
		{TeamID: "t1", Connected: false},
		{TeamID: "t1", Connected: true},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d transition events, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}
