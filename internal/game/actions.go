package game

// Action is the closed set of player inputs a session accepts. Each variant
// carries its own typed payload and is dispatched by an exhaustive type
// switch in HandleAction; unknown actors or wrong-phase actions are silent
// no-ops.
type Action interface {
	isAction()
}

// ChooseWord picks one of the offered word candidates. Drawer only, during
// TurnSetup.
type ChooseWord struct {
	Index int
}

// Guess submits a guess for scoring during TurnStart; misses are relayed to
// chat.
type Guess struct {
	Text string
}

// Draw appends one point to the identified stroke. Drawer only, during
// TurnStart.
type Draw struct {
	Stroke int
	Point  Point
}

// ClearCanvas discards the whole canvas. Drawer only, during TurnStart.
type ClearCanvas struct{}

// Undo removes the most recent stroke. Drawer only, during TurnStart.
type Undo struct{}

// RequestState asks for a snapshot of the session; the word comes back
// masked unless the caller is the drawer.
type RequestState struct{}

func (ChooseWord) isAction()   {}
func (Guess) isAction()        {}
func (Draw) isAction()         {}
func (ClearCanvas) isAction()  {}
func (Undo) isAction()         {}
func (RequestState) isAction() {}

// HandleAction validates the actor and routes the action into the session.
// It is the single entry point for player input; phase validation happens in
// the per-action handlers.
func (s *Session) HandleAction(sessionID string, action Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	player, ok := s.players[sessionID]
	if !ok {
		return
	}
	switch a := action.(type) {
	case ChooseWord:
		s.handleChooseWord(player, a.Index)
	case Guess:
		s.handleGuess(player, a.Text)
	case Draw:
		s.handleDraw(player, a.Stroke, a.Point)
	case ClearCanvas:
		s.handleClearCanvas(player)
	case Undo:
		s.handleUndo(player)
	case RequestState:
		s.handleRequestState(player)
	}
}
