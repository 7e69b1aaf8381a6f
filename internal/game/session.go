package game

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Timings are the fixed delays between phases plus the stroke sync period.
type Timings struct {
	GameStartDelay time.Duration
	ChoiceTimeout  time.Duration
	TurnEndDelay   time.Duration
	RoundEndDelay  time.Duration
	GameEndGrace   time.Duration
	SyncInterval   time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		GameStartDelay: 1500 * time.Millisecond,
		ChoiceTimeout:  10 * time.Second,
		TurnEndDelay:   8 * time.Second,
		RoundEndDelay:  5 * time.Second,
		GameEndGrace:   60 * time.Second,
		SyncInterval:   100 * time.Millisecond,
	}
}

// Session is the authoritative state machine for one room's game. All state
// is guarded by mu; the only writers are the phase timer callback and the
// action handlers, so every mutation is one atomic step on the session's
// timeline. Fan-out to participants is fire-and-forget.
type Session struct {
	mu    sync.Mutex
	log   zerolog.Logger
	clock clockwork.Clock
	rng   *rand.Rand

	roomID          string
	rounds          int
	secondsPerRound int
	timings         Timings
	words           *WordBank

	players map[string]*Player
	joined  []string // session identities in join order, drives drawer rotation

	state            State
	epoch            uint64
	currentRound     int
	remainingDrawers []string
	drawer           string
	wordChoices      []string
	word             string
	deadline         time.Time

	scores          *ScoreBoard
	correctGuessers map[string]int // userId -> points awarded this turn
	strokes         *StrokeLog

	timer    clockwork.Timer
	syncStop chan struct{}
	closed   bool
}

func newSession(roomID string, rounds, secondsPerRound int, words *WordBank, timings Timings, clock clockwork.Clock, logger zerolog.Logger) *Session {
	return &Session{
		log:             logger.With().Str("room_id", roomID).Logger(),
		clock:           clock,
		rng:             rand.New(rand.NewSource(clock.Now().UnixNano())),
		roomID:          roomID,
		rounds:          rounds,
		secondsPerRound: secondsPerRound,
		timings:         timings,
		words:           words,
		players:         make(map[string]*Player),
		scores:          NewScoreBoard(),
		correctGuessers: make(map[string]int),
		strokes:         NewStrokeLog(),
	}
}

func (s *Session) RoomID() string {
	return s.roomID
}

// State reports the session's current phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Scores reports the cumulative scoreboard keyed by userId.
func (s *Session) Scores() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scores.Totals()
}

// AddPlayer registers a participant, or reattaches one: a player rejoining
// with the same session identity just gets their connection handle swapped,
// keeping score and rotation keyed to the durable identity.
func (s *Session) AddPlayer(p *Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.players[p.SessionID]; ok {
		existing.Conn = p.Conn
		if p.Username != "" {
			existing.Username = p.Username
		}
		s.log.Debug().Str("player_id", p.UserID).Msg("player reattached")
		return
	}
	joined := *p
	s.players[p.SessionID] = &joined
	s.joined = append(s.joined, p.SessionID)
	s.scores.Touch(p.UserID)
}

// UpdatePlayerConn swaps (or, with nil, detaches) a player's connection
// handle without touching any game state.
func (s *Session) UpdatePlayerConn(sessionID string, conn Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.players[sessionID]; ok {
		p.Conn = conn
	}
}

// Start enters GameStart and begins the phase clock.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enterGameStart()
}

// Close cancels the phase timer and the stroke sync loop. The session emits
// nothing after Close; a timer that already fired finds the session closed
// and does nothing.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.cancelTimer()
	s.stopStrokeSync()
	s.log.Info().Stringer("state", s.state).Msg("session closed")
}

// ---- phase machinery ----

// setState bumps the epoch so any timer scheduled for an earlier phase,
// even one already waiting on mu, becomes a no-op.
func (s *Session) setState(state State) {
	s.state = state
	s.epoch++
}

func (s *Session) cancelTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// schedule arms the single phase timer. Any previously scheduled timer is
// cancelled first; two live timers for one session would double-fire a
// transition.
func (s *Session) schedule(d time.Duration) {
	s.cancelTimer()
	s.deadline = s.clock.Now().Add(d)
	from, epoch := s.state, s.epoch
	s.timer = s.clock.AfterFunc(d, func() {
		s.advance(from, epoch)
	})
}

// advance is the sole timer entry point.
func (s *Session) advance(from State, epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.epoch != epoch || s.state != from {
		return
	}
	switch from {
	case StateGameStart:
		s.enterRoundSetup()
	case StateTurnSetup:
		s.autoChooseWord()
	case StateTurnStart:
		s.enterTurnEnd()
	case StateTurnEnd:
		s.enterTurnSetup()
	case StateRoundEnd:
		s.enterRoundSetup()
	}
}

func (s *Session) enterGameStart() {
	s.setState(StateGameStart)
	s.schedule(s.timings.GameStartDelay)
	s.log.Info().Int("rounds", s.rounds).Int("players", len(s.players)).Msg("game starting")
	s.broadcast(Event{Name: EventGameStarting, Data: GameStartingData{Deadline: unixMilli(s.deadline)}})
}

func (s *Session) enterRoundSetup() {
	s.setState(StateRoundSetup)
	if s.currentRound == s.rounds {
		s.enterGameEnd()
		return
	}
	s.currentRound++
	s.rebuildDrawerQueue()
	s.log.Info().Int("round", s.currentRound).Msg("round setup")
	s.broadcast(Event{Name: EventRoundStart, Data: RoundStartData{Round: s.currentRound, Rounds: s.rounds}})
	s.enterTurnSetup()
}

// rebuildDrawerQueue rebuilds the rotation from the current roster in join
// order. A player who disconnects later keeps their slot in an already-built
// queue; their turn plays out through the choice timeout with an idle canvas.
func (s *Session) rebuildDrawerQueue() {
	s.remainingDrawers = s.remainingDrawers[:0]
	for _, id := range s.joined {
		if _, ok := s.players[id]; ok {
			s.remainingDrawers = append(s.remainingDrawers, id)
		}
	}
}

func (s *Session) enterTurnSetup() {
	s.setState(StateTurnSetup)
	s.correctGuessers = make(map[string]int)
	s.word = ""
	s.wordChoices = nil
	s.drawer = ""
	if len(s.remainingDrawers) == 0 {
		s.enterRoundEnd()
		return
	}
	s.drawer = s.remainingDrawers[0]
	s.remainingDrawers = s.remainingDrawers[1:]
	s.wordChoices = s.words.Draw(3)
	s.schedule(s.timings.ChoiceTimeout)

	drawer := s.players[s.drawer]
	s.log.Info().Int("round", s.currentRound).Str("drawer", drawer.UserID).Msg("turn setup")
	s.broadcast(Event{Name: EventTurnSetup, Data: TurnSetupData{Drawer: drawer.info(), Deadline: unixMilli(s.deadline)}})
	s.sendTo(s.drawer, Event{Name: EventTurnChoices, Data: TurnChoicesData{Choices: s.wordChoices, Deadline: unixMilli(s.deadline)}})
}

// autoChooseWord fires when the choice deadline expires: pick one candidate
// uniformly at random so the turn is still playable.
func (s *Session) autoChooseWord() {
	if len(s.wordChoices) == 0 {
		// empty bank; the turn proceeds with an empty word
		s.enterTurnStart("")
		return
	}
	s.enterTurnStart(s.wordChoices[s.rng.Intn(len(s.wordChoices))])
}

func (s *Session) enterTurnStart(word string) {
	s.setState(StateTurnStart)
	s.word = word
	s.wordChoices = nil
	s.schedule(time.Duration(s.secondsPerRound) * time.Second)

	drawer := s.players[s.drawer]
	s.log.Info().Str("drawer", drawer.UserID).Int("word_len", len(word)).Msg("turn started")
	s.broadcastExcept(s.drawer, Event{Name: EventTurnStart, Data: TurnStartData{
		Word:     Mask(word),
		Drawer:   drawer.info(),
		Deadline: unixMilli(s.deadline),
	}})
	s.sendTo(s.drawer, Event{Name: EventTurnWord, Data: TurnWordData{Word: word, Deadline: unixMilli(s.deadline)}})
	s.startStrokeSync()
}

func (s *Session) enterTurnEnd() {
	s.setState(StateTurnEnd)
	s.stopStrokeSync()
	s.strokes.Clear()

	turnScores := make(map[string]int, len(s.players))
	award := drawerPoints(len(s.correctGuessers), len(s.players))
	for _, p := range s.players {
		points := 0
		switch {
		case p.SessionID == s.drawer:
			points = award
		default:
			points = s.correctGuessers[p.UserID]
		}
		s.scores.Add(p.UserID, points)
		turnScores[p.Username] = points
	}

	s.schedule(s.timings.TurnEndDelay)
	s.log.Info().Int("correct", len(s.correctGuessers)).Int("drawer_points", award).Msg("turn ended")
	s.broadcast(Event{Name: EventTurnEnd, Data: TurnEndData{
		Word:       s.word,
		TurnScores: turnScores,
		Scores:     s.scoresByName(),
		Deadline:   unixMilli(s.deadline),
	}})
}

func (s *Session) enterRoundEnd() {
	s.setState(StateRoundEnd)
	s.schedule(s.timings.RoundEndDelay)
	s.log.Info().Int("round", s.currentRound).Msg("round ended")
	s.broadcast(Event{Name: EventRoundEnd, Data: RoundEndData{Round: s.currentRound, Deadline: unixMilli(s.deadline)}})
}

// enterGameEnd is terminal: the deadline is a grace period for clients to
// show final results, and nothing further is scheduled. Teardown is the
// registry's call.
func (s *Session) enterGameEnd() {
	s.setState(StateGameEnd)
	s.cancelTimer()
	s.deadline = s.clock.Now().Add(s.timings.GameEndGrace)
	s.log.Info().Msg("game ended")
	s.broadcast(Event{Name: EventGameEnd, Data: GameEndData{Scores: s.scoresByName(), Deadline: unixMilli(s.deadline)}})
}

// ---- player actions (called with mu held) ----

func (s *Session) handleChooseWord(p *Player, index int) {
	if s.state != StateTurnSetup || p.SessionID != s.drawer {
		return
	}
	if index < 0 || index >= len(s.wordChoices) {
		return
	}
	s.enterTurnStart(s.wordChoices[index])
}

func (s *Session) handleGuess(p *Player, text string) {
	if s.state != StateTurnStart || p.SessionID == s.drawer {
		return
	}
	guess := strings.TrimSpace(text)
	matched := s.word != "" && strings.EqualFold(guess, s.word)
	if _, done := s.correctGuessers[p.UserID]; done {
		// a solved player keeps chatting, but the word itself is never
		// echoed back and the score is never re-awarded
		if !matched {
			s.broadcast(Event{Name: EventChatGuess, Data: ChatGuessData{Username: p.Username, Text: guess}})
		}
		return
	}
	if !matched {
		s.broadcast(Event{Name: EventChatGuess, Data: ChatGuessData{Username: p.Username, Text: guess}})
		return
	}

	remaining := s.deadline.Sub(s.clock.Now())
	points := guessPoints(remaining, s.secondsPerRound, len(s.correctGuessers) == 0)
	s.correctGuessers[p.UserID] = points
	s.log.Info().Str("player_id", p.UserID).Int("points", points).Msg("correct guess")
	s.broadcast(Event{Name: EventChatCorrect, Data: ChatCorrectData{Username: p.Username}})

	if s.everyoneGuessed() {
		// quorum short-circuit: pull the deadline to now and end the turn
		s.deadline = s.clock.Now()
		s.enterTurnEnd()
	}
}

func (s *Session) everyoneGuessed() bool {
	guessers := 0
	for _, p := range s.players {
		if p.SessionID == s.drawer {
			continue
		}
		if _, ok := s.correctGuessers[p.UserID]; !ok {
			return false
		}
		guessers++
	}
	return guessers > 0
}

func (s *Session) handleDraw(p *Player, stroke int, point Point) {
	if s.state != StateTurnStart || p.SessionID != s.drawer {
		return
	}
	if err := s.strokes.AddPoint(stroke, point); err != nil {
		s.log.Debug().Err(err).Int("stroke", stroke).Msg("draw point dropped")
	}
}

func (s *Session) handleClearCanvas(p *Player) {
	if s.state != StateTurnStart || p.SessionID != s.drawer {
		return
	}
	s.strokes.Clear()
	s.broadcast(Event{Name: EventCanvasClear})
}

func (s *Session) handleUndo(p *Player) {
	if s.state != StateTurnStart || p.SessionID != s.drawer {
		return
	}
	if s.strokes.Undo() {
		s.broadcast(Event{Name: EventCanvasUndo})
	}
}

func (s *Session) handleRequestState(p *Player) {
	word := s.word
	if s.state == StateTurnStart && p.SessionID != s.drawer {
		word = Mask(word)
	}
	snap := StateData{
		State:    s.state.String(),
		Round:    s.currentRound,
		Rounds:   s.rounds,
		Word:     word,
		Deadline: unixMilli(s.deadline),
		Scores:   s.scoresByName(),
		Strokes:  s.strokes.Strokes(),
		Players:  s.playerInfos(),
	}
	if drawer, ok := s.players[s.drawer]; ok {
		info := drawer.info()
		snap.Drawer = &info
	}
	s.sendTo(p.SessionID, Event{Name: EventGameState, Data: snap})
}

// ---- stroke sync ----

// startStrokeSync begins the periodic diff broadcast. The loop lives only
// while the turn does; enterTurnEnd stops it before scoring.
func (s *Session) startStrokeSync() {
	stop := make(chan struct{})
	s.syncStop = stop
	ticker := s.clock.NewTicker(s.timings.SyncInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.Chan():
				s.flushStrokes()
			case <-stop:
				return
			}
		}
	}()
}

func (s *Session) stopStrokeSync() {
	if s.syncStop != nil {
		close(s.syncStop)
		s.syncStop = nil
	}
}

// flushStrokes sends the log delta to everyone but the drawer, who already
// has authoritative local state.
func (s *Session) flushStrokes() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state != StateTurnStart {
		return
	}
	delta := s.strokes.Diff()
	if delta.Empty() {
		return
	}
	s.broadcastExcept(s.drawer, Event{Name: EventCanvasStroke, Data: delta})
}

// ---- fan-out (called with mu held) ----

func (s *Session) broadcast(event Event) {
	s.broadcastExcept("", event)
}

func (s *Session) broadcastExcept(skip string, event Event) {
	for id, p := range s.players {
		if id == skip || p.Conn == nil {
			continue
		}
		if err := p.Conn.Send(event); err != nil {
			s.log.Debug().Err(err).Str("player_id", p.UserID).Str("event", event.Name).Msg("send failed")
		}
	}
}

func (s *Session) sendTo(sessionID string, event Event) {
	p, ok := s.players[sessionID]
	if !ok || p.Conn == nil {
		return
	}
	if err := p.Conn.Send(event); err != nil {
		s.log.Debug().Err(err).Str("player_id", p.UserID).Str("event", event.Name).Msg("send failed")
	}
}

func (s *Session) scoresByName() map[string]int {
	out := make(map[string]int, len(s.players))
	for _, p := range s.players {
		out[p.Username] = s.scores.Total(p.UserID)
	}
	return out
}

func (s *Session) playerInfos() []PlayerInfo {
	out := make([]PlayerInfo, 0, len(s.joined))
	for _, id := range s.joined {
		if p, ok := s.players[id]; ok {
			out = append(out, p.info())
		}
	}
	return out
}

func unixMilli(t time.Time) int64 {
	return t.UnixMilli()
}
