package server

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"skroodle/internal/db"
)

const sessionCookie = "sk_session"

// Identity is the durable player identity resolved from a browser session.
// SessionID names the browser, UserID the person; game state keys off both
// so a reconnect lands back on the same seat.
type Identity struct {
	SessionID string
	UserID    string
	Username  string
}

// sessionStore persists identities in Postgres when a handle is available
// and falls back to process memory when it is not.
type sessionStore struct {
	db       *gorm.DB
	mu       sync.Mutex
	sessions map[string]Identity
}

func newSessionStore(conn *gorm.DB) *sessionStore {
	return &sessionStore{
		db:       conn,
		sessions: make(map[string]Identity),
	}
}

// Resolve returns the request's identity, minting one on first contact.
func (s *sessionStore) Resolve(w http.ResponseWriter, r *http.Request) Identity {
	id := s.ensureSessionID(w, r)
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		ident, ok := s.sessions[id]
		if !ok {
			ident = Identity{SessionID: id, UserID: uuid.NewString()}
			s.sessions[id] = ident
		}
		return ident
	}
	var record db.Session
	if err := s.db.Where("id = ?", id).First(&record).Error; err != nil {
		record = db.Session{ID: id, UserID: uuid.NewString()}
		_ = s.db.Save(&record).Error
	}
	return Identity{SessionID: record.ID, UserID: record.UserID, Username: record.Username}
}

// SetUsername stores the display name against the session.
func (s *sessionStore) SetUsername(ident Identity, username string) {
	if username == "" {
		return
	}
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		ident.Username = username
		s.sessions[ident.SessionID] = ident
		return
	}
	record := db.Session{ID: ident.SessionID, UserID: ident.UserID, Username: username}
	_ = s.db.Save(&record).Error
}

func (s *sessionStore) ensureSessionID(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(sessionCookie)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
