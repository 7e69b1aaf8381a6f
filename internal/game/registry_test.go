package game

import (
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

func newTestRegistry() (*Registry, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClock()
	return NewRegistry(NewWordBank([]string{"boat"}), DefaultTimings(), clock, zerolog.Nop()), clock
}

func TestRegistryCreateStartsSession(t *testing.T) {
	r, _ := newTestRegistry()
	ann := newTestPlayer("sa", "ua", "ann")
	bob := newTestPlayer("sb", "ub", "bob")

	s, err := r.Create("room", []*Player{ann.player, bob.player}, 1, 60)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if s.State() != StateGameStart {
		t.Fatalf("expected GameStart, got %v", s.State())
	}
	if ann.conn.count(EventGameStarting) != 1 {
		t.Fatal("roster should receive game:starting on create")
	}
	if !r.Has("room") {
		t.Fatal("registry should report the room")
	}
	if got, ok := r.Get("room"); !ok || got != s {
		t.Fatal("lookup returned a different session")
	}
}

func TestRegistryRejectsDuplicateRoom(t *testing.T) {
	r, _ := newTestRegistry()
	ann := newTestPlayer("sa", "ua", "ann")
	if _, err := r.Create("room", []*Player{ann.player}, 1, 60); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := r.Create("room", []*Player{ann.player}, 1, 60); err != ErrSessionExists {
		t.Fatalf("expected ErrSessionExists, got %v", err)
	}
}

func TestRegistryRemoveClosesSession(t *testing.T) {
	r, clock := newTestRegistry()
	ann := newTestPlayer("sa", "ua", "ann")
	bob := newTestPlayer("sb", "ub", "bob")
	s, err := r.Create("room", []*Player{ann.player, bob.player}, 1, 60)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := r.Remove("room"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if r.Has("room") {
		t.Fatal("removed room still registered")
	}
	if err := r.Remove("room"); err != ErrNoSession {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}

	clock.Advance(DefaultTimings().GameStartDelay)
	if s.State() != StateGameStart {
		t.Fatalf("removed session must not keep running, got %v", s.State())
	}
}
