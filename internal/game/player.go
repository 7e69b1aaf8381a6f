package game

// Conn is the volatile delivery handle for one participant. Delivery is
// best-effort: the session never waits on acknowledgement and a failed send
// is not a session error. Implementations must be safe for concurrent use.
type Conn interface {
	Send(event Event) error
}

// Player is one participant in a session. SessionID is the durable identity
// issued at handshake and keys the session's roster; UserID keys scores so
// they survive reconnects; Conn is swapped on reattach and may be nil while
// the player is disconnected.
type Player struct {
	SessionID string
	UserID    string
	Username  string
	Conn      Conn
}

func (p *Player) info() PlayerInfo {
	return PlayerInfo{UserID: p.UserID, Username: p.Username}
}
