package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"skroodle/internal/config"
	"skroodle/internal/game"
)

type Server struct {
	log      zerolog.Logger
	cfg      config.Config
	sessions *sessionStore
	lobbies  *lobbyStore
	games    *game.Registry
	upgrader websocket.Upgrader
}

func New(conn *gorm.DB, cfg config.Config, games *game.Registry, logger zerolog.Logger) *Server {
	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		allowed[origin] = struct{}{}
	}
	return &Server{
		log:      logger,
		cfg:      cfg,
		sessions: newSessionStore(conn),
		lobbies:  newLobbyStore(),
		games:    games,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("POST /lobby", s.handleCreateLobby)
	mux.HandleFunc("GET /ws", s.handleWebsocket)

	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodHead, http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(mux)
}

// handleCreateLobby reserves a room over plain HTTP. The creator holds the
// owner seat but has no socket until they join over /ws with the same
// session cookie.
func (s *Server) handleCreateLobby(w http.ResponseWriter, r *http.Request) {
	ident := s.sessions.Resolve(w, r)
	var body struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.Username != "" {
		ident.Username = body.Username
		s.sessions.SetUsername(ident, body.Username)
	}

	l := s.lobbies.Create(&client{ident: ident})
	s.log.Info().Str("lobby", l.code).Str("session_id", ident.SessionID).Msg("lobby created over http")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"code": l.code})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
