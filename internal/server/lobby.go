package server

import (
	"crypto/rand"
	"errors"
	"sync"
)

var (
	errNoLobby       = errors.New("lobby not found")
	errNotLobbyOwner = errors.New("only the lobby owner can start the game")
	errNotAttached   = errors.New("no socket attached")
)

// lobby is a pre-game room: players gather under a join code until the
// owner starts the game, at which point the member list becomes the
// session roster.
type lobby struct {
	code    string
	owner   string // owner's session id
	order   []string
	members map[string]*client
	started bool
}

type lobbyStore struct {
	mu      sync.Mutex
	lobbies map[string]*lobby
}

func newLobbyStore() *lobbyStore {
	return &lobbyStore{lobbies: make(map[string]*lobby)}
}

func (s *lobbyStore) Create(owner *client) *lobby {
	s.mu.Lock()
	defer s.mu.Unlock()
	code := newJoinCode()
	for s.lobbies[code] != nil {
		code = newJoinCode()
	}
	l := &lobby{
		code:    code,
		owner:   owner.ident.SessionID,
		order:   []string{owner.ident.SessionID},
		members: map[string]*client{owner.ident.SessionID: owner},
	}
	s.lobbies[code] = l
	return l
}

// Join seats the client in the lobby, or reseats them if their session id
// is already a member. The second return reports whether the lobby's game
// has already started.
func (s *lobbyStore) Join(code string, c *client) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lobbies[code]
	if !ok {
		return false, errNoLobby
	}
	if _, seated := l.members[c.ident.SessionID]; !seated {
		l.order = append(l.order, c.ident.SessionID)
	}
	l.members[c.ident.SessionID] = c
	return l.started, nil
}

func (s *lobbyStore) Get(code string) (*lobby, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lobbies[code]
	return l, ok
}

func (s *lobbyStore) Owner(code string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lobbies[code]
	if !ok {
		return "", false
	}
	return l.owner, true
}

// Leave detaches the client. An emptied lobby is dropped; an abandoned
// owner seat passes to the next member in join order.
func (s *lobbyStore) Leave(code string, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lobbies[code]
	if !ok {
		return
	}
	delete(l.members, sessionID)
	for i, id := range l.order {
		if id == sessionID {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	if len(l.members) == 0 {
		delete(s.lobbies, code)
		return
	}
	if l.owner == sessionID {
		l.owner = l.order[0]
	}
}

func (s *lobbyStore) Remove(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lobbies, code)
}

// MarkStarted flips the lobby into its in-game phase. Only the owner may
// start, and only once.
func (s *lobbyStore) MarkStarted(code string, sessionID string) (*lobby, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lobbies[code]
	if !ok {
		return nil, errNoLobby
	}
	if l.owner != sessionID {
		return nil, errNotLobbyOwner
	}
	if l.started {
		return nil, errors.New("game already started")
	}
	l.started = true
	return l, nil
}

// Roster returns the seated clients in join order.
func (s *lobbyStore) Roster(code string) []*client {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lobbies[code]
	if !ok {
		return nil
	}
	out := make([]*client, 0, len(l.order))
	for _, id := range l.order {
		if c, seated := l.members[id]; seated {
			out = append(out, c)
		}
	}
	return out
}

func newJoinCode() string {
	const alphabet = "abcdefghjkmnpqrstuvwxyz23456789"
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		return "aaaaa"
	}
	for i := range buf {
		buf[i] = alphabet[int(buf[i])%len(alphabet)]
	}
	return string(buf)
}
