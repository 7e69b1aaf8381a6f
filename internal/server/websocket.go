package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"skroodle/internal/game"
)

// client is one websocket attachment of an identity. The write mutex keeps
// concurrent broadcasts from interleaving frames on the wire.
type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	ident   Identity

	mu        sync.Mutex
	lobbyCode string
	roomID    string
}

// Send satisfies game.Conn. A lobby seat created over HTTP has no socket
// yet; sends to it fail until the member attaches.
func (c *client) Send(event game.Event) error {
	if c.conn == nil {
		return errNotAttached
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *client) sendError(message string) {
	_ = c.Send(game.Event{Name: "lobby:error", Data: map[string]string{"message": message}})
}

// setUsername records the name under mu; lobby broadcasts read other
// members' names from their own goroutines.
func (c *client) setUsername(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ident.Username = name
}

func (c *client) username() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ident.Username
}

func (c *client) setRoom(lobbyCode, roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lobbyCode = lobbyCode
	c.roomID = roomID
}

func (c *client) room() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lobbyCode, c.roomID
}

// frame is the envelope every websocket message travels in.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	ident := s.sessions.Resolve(w, r)
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}
	c := &client{conn: conn, ident: ident}
	s.log.Info().Str("session_id", ident.SessionID).Str("remote", r.RemoteAddr).Msg("ws connected")
	_ = c.Send(game.Event{Name: "session", Data: map[string]string{
		"sessionId": ident.SessionID,
		"userId":    ident.UserID,
		"username":  ident.Username,
	}})
	go s.readLoop(c)
}

func (s *Server) readLoop(c *client) {
	defer s.detach(c)
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			s.log.Debug().Err(err).Str("session_id", c.ident.SessionID).Msg("ws disconnected")
			return
		}
		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			c.sendError("malformed message")
			continue
		}
		s.dispatch(c, f)
	}
}

// detach drops the client from its lobby and leaves its game seat empty.
// The game session keeps the player's durable identity so a later
// connection with the same session cookie reattaches to the seat.
func (s *Server) detach(c *client) {
	_ = c.conn.Close()
	lobbyCode, roomID := c.room()
	if roomID != "" {
		if session, ok := s.games.Get(roomID); ok {
			session.UpdatePlayerConn(c.ident.SessionID, nil)
		}
	} else if lobbyCode != "" {
		s.lobbies.Leave(lobbyCode, c.ident.SessionID)
		s.broadcastLobby(lobbyCode)
	}
}

func (s *Server) dispatch(c *client, f frame) {
	switch f.Event {
	case "lobby:create":
		s.handleLobbyCreate(c, f.Data)
	case "lobby:join":
		s.handleLobbyJoin(c, f.Data)
	case "lobby:leave":
		s.handleLobbyLeave(c)
	case "lobby:startGame":
		s.handleLobbyStart(c, f.Data)
	case "turn:choose":
		var data struct {
			Index int `json:"index"`
		}
		if json.Unmarshal(f.Data, &data) == nil {
			s.forward(c, game.ChooseWord{Index: data.Index})
		}
	case "chat:guess":
		var data struct {
			Text string `json:"text"`
		}
		if json.Unmarshal(f.Data, &data) == nil {
			s.forward(c, game.Guess{Text: data.Text})
		}
	case "canvas:stroke":
		s.handleStroke(c, f.Data)
	case "canvas:clear":
		s.forward(c, game.ClearCanvas{})
	case "canvas:undo":
		s.forward(c, game.Undo{})
	case "game:state":
		s.forward(c, game.RequestState{})
	default:
		c.sendError("unknown event")
	}
}

func (s *Server) forward(c *client, action game.Action) {
	_, roomID := c.room()
	if roomID == "" {
		return
	}
	session, ok := s.games.Get(roomID)
	if !ok {
		return
	}
	session.HandleAction(c.ident.SessionID, action)
}

// handleStroke feeds a segment of drawer points into the stroke log,
// simplifying it first when an epsilon is configured.
func (s *Server) handleStroke(c *client, raw json.RawMessage) {
	var data struct {
		Stroke int          `json:"stroke"`
		Points []game.Point `json:"points"`
	}
	if err := json.Unmarshal(raw, &data); err != nil || len(data.Points) == 0 {
		return
	}
	points := data.Points
	if s.cfg.StrokeEpsilon > 0 {
		points = simplifyStroke(points, s.cfg.StrokeEpsilon)
	}
	for _, p := range points {
		s.forward(c, game.Draw{Stroke: data.Stroke, Point: p})
	}
}

func (s *Server) handleLobbyCreate(c *client, raw json.RawMessage) {
	var data struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		c.sendError("malformed message")
		return
	}
	username := strings.TrimSpace(data.Username)
	if username == "" {
		c.sendError("username is required")
		return
	}
	c.setUsername(username)
	s.sessions.SetUsername(c.ident, username)

	l := s.lobbies.Create(c)
	c.setRoom(l.code, "")
	s.log.Info().Str("lobby", l.code).Str("session_id", c.ident.SessionID).Msg("lobby created")
	_ = c.Send(game.Event{Name: "lobby:created", Data: map[string]any{
		"code":    l.code,
		"players": s.lobbyPlayers(l.code),
	}})
}

func (s *Server) handleLobbyJoin(c *client, raw json.RawMessage) {
	var data struct {
		Code     string `json:"code"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		c.sendError("malformed message")
		return
	}
	username := strings.TrimSpace(data.Username)
	if username == "" {
		c.sendError("username is required")
		return
	}
	code := strings.ToLower(strings.TrimSpace(data.Code))
	c.setUsername(username)
	s.sessions.SetUsername(c.ident, username)

	started, err := s.lobbies.Join(code, c)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	// joining a lobby whose game is live is a reattach
	if started {
		if session, ok := s.games.Get(code); ok {
			c.setRoom(code, code)
			session.AddPlayer(&game.Player{
				SessionID: c.ident.SessionID,
				UserID:    c.ident.UserID,
				Username:  username,
				Conn:      c,
			})
			session.HandleAction(c.ident.SessionID, game.RequestState{})
			return
		}
	}

	c.setRoom(code, "")
	s.log.Info().Str("lobby", code).Str("session_id", c.ident.SessionID).Msg("lobby joined")
	s.broadcastLobby(code)
}

func (s *Server) handleLobbyLeave(c *client) {
	lobbyCode, _ := c.room()
	if lobbyCode == "" {
		return
	}
	s.lobbies.Leave(lobbyCode, c.ident.SessionID)
	c.setRoom("", "")
	s.broadcastLobby(lobbyCode)
}

func (s *Server) handleLobbyStart(c *client, raw json.RawMessage) {
	lobbyCode, _ := c.room()
	if lobbyCode == "" {
		c.sendError("not in a lobby")
		return
	}
	var data struct {
		Rounds          int `json:"rounds"`
		SecondsPerRound int `json:"secondsPerRound"`
	}
	_ = json.Unmarshal(raw, &data)
	rounds := data.Rounds
	if rounds <= 0 {
		rounds = s.cfg.Rounds
	}
	seconds := data.SecondsPerRound
	if seconds <= 0 {
		seconds = s.cfg.SecondsPerRound
	}

	l, err := s.lobbies.MarkStarted(lobbyCode, c.ident.SessionID)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	roster := s.lobbies.Roster(l.code)
	players := make([]*game.Player, 0, len(roster))
	for _, member := range roster {
		member.setRoom(l.code, l.code)
		players = append(players, &game.Player{
			SessionID: member.ident.SessionID,
			UserID:    member.ident.UserID,
			Username:  member.username(),
			Conn:      member,
		})
		_ = member.Send(game.Event{Name: "game:loading"})
	}

	if _, err := s.games.Create(l.code, players, rounds, seconds); err != nil {
		c.sendError(err.Error())
		return
	}
	s.log.Info().Str("lobby", l.code).Int("players", len(players)).Msg("game started")
}

func (s *Server) broadcastLobby(code string) {
	players := s.lobbyPlayers(code)
	if players == nil {
		return
	}
	event := game.Event{Name: "lobby:players", Data: map[string]any{"players": players}}
	for _, member := range s.lobbies.Roster(code) {
		_ = member.Send(event)
	}
}

func (s *Server) lobbyPlayers(code string) []map[string]string {
	owner, ok := s.lobbies.Owner(code)
	if !ok {
		return nil
	}
	roster := s.lobbies.Roster(code)
	players := make([]map[string]string, 0, len(roster))
	for _, member := range roster {
		entry := map[string]string{"username": member.username()}
		if member.ident.SessionID == owner {
			entry["role"] = "owner"
		}
		players = append(players, entry)
	}
	return players
}
