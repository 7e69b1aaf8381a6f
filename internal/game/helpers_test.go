package game

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// recordConn captures everything a session sends to one participant.
type recordConn struct {
	mu     sync.Mutex
	events []Event
}

func (c *recordConn) Send(event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *recordConn) named(name string) []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Event
	for _, event := range c.events {
		if event.Name == name {
			out = append(out, event)
		}
	}
	return out
}

func (c *recordConn) count(name string) int {
	return len(c.named(name))
}

func (c *recordConn) last(name string) (Event, bool) {
	events := c.named(name)
	if len(events) == 0 {
		return Event{}, false
	}
	return events[len(events)-1], true
}

type testPlayer struct {
	player *Player
	conn   *recordConn
}

func newTestPlayer(sessionID, userID, username string) testPlayer {
	conn := &recordConn{}
	return testPlayer{
		player: &Player{SessionID: sessionID, UserID: userID, Username: username, Conn: conn},
		conn:   conn,
	}
}

func newTestSession(words []string, rounds, secondsPerRound int, players ...testPlayer) (*Session, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClock()
	s := newSession("room", rounds, secondsPerRound, NewWordBank(words), DefaultTimings(), clock, zerolog.Nop())
	for _, p := range players {
		s.AddPlayer(p.player)
	}
	return s, clock
}

// waitForState polls for a phase transition; timer callbacks fire on their
// own goroutines, so transitions land shortly after the clock advances.
func waitForState(t *testing.T, s *Session, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.State() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for state %v, still in %v", want, s.State())
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func (s *Session) currentWord() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.word
}

func (s *Session) currentDrawer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawer
}
