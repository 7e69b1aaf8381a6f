package game

import (
	"errors"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

var (
	ErrSessionExists = errors.New("game: session already exists for room")
	ErrNoSession     = errors.New("game: no session for room")
)

// Registry owns the live sessions, one per room. It is the only place
// sessions are created or torn down; everything it needs is injected so
// tests can drive it with a fake clock.
type Registry struct {
	mu      sync.Mutex
	log     zerolog.Logger
	clock   clockwork.Clock
	words   *WordBank
	timings Timings

	sessions map[string]*Session
}

func NewRegistry(words *WordBank, timings Timings, clock clockwork.Clock, logger zerolog.Logger) *Registry {
	return &Registry{
		log:      logger,
		clock:    clock,
		words:    words,
		timings:  timings,
		sessions: make(map[string]*Session),
	}
}

// Create builds a session for the room, seats the roster, and starts the
// phase clock. The roster must be final; late arrivals reattach through
// Session.AddPlayer but never join the drawer rotation mid-round.
func (r *Registry) Create(roomID string, roster []*Player, rounds, secondsPerRound int) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[roomID]; ok {
		return nil, ErrSessionExists
	}
	s := newSession(roomID, rounds, secondsPerRound, r.words, r.timings, r.clock, r.log)
	for _, p := range roster {
		s.AddPlayer(p)
	}
	r.sessions[roomID] = s
	r.log.Info().Str("room_id", roomID).Int("players", len(roster)).Msg("session created")
	s.Start()
	return s, nil
}

func (r *Registry) Get(roomID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[roomID]
	return s, ok
}

func (r *Registry) Has(roomID string) bool {
	_, ok := r.Get(roomID)
	return ok
}

// Remove closes the room's session and forgets it.
func (r *Registry) Remove(roomID string) error {
	r.mu.Lock()
	s, ok := r.sessions[roomID]
	delete(r.sessions, roomID)
	r.mu.Unlock()
	if !ok {
		return ErrNoSession
	}
	s.Close()
	r.log.Info().Str("room_id", roomID).Msg("session removed")
	return nil
}
