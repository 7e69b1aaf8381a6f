package game

import (
	"testing"
	"time"
)

func TestSessionFullGameFlow(t *testing.T) {
	ann := newTestPlayer("sa", "ua", "ann")
	bob := newTestPlayer("sb", "ub", "bob")
	s, clock := newTestSession([]string{"cat"}, 1, 60, ann, bob)

	s.Start()
	if s.State() != StateGameStart {
		t.Fatalf("expected GameStart, got %v", s.State())
	}
	if ann.conn.count(EventGameStarting) != 1 || bob.conn.count(EventGameStarting) != 1 {
		t.Fatal("expected game:starting broadcast to both players")
	}

	clock.Advance(1500 * time.Millisecond)
	waitForState(t, s, StateTurnSetup)
	if got := s.currentDrawer(); got != "sa" {
		t.Fatalf("first drawer should follow join order, got %q", got)
	}
	if bob.conn.count(EventTurnChoices) != 0 {
		t.Fatal("word choices must go to the drawer only")
	}
	if ann.conn.count(EventTurnChoices) != 1 {
		t.Fatal("drawer did not receive word choices")
	}

	s.HandleAction("sa", ChooseWord{Index: 0})
	if s.State() != StateTurnStart {
		t.Fatalf("expected TurnStart after choice, got %v", s.State())
	}
	if event, ok := bob.conn.last(EventTurnStart); !ok {
		t.Fatal("guesser did not receive turn:start")
	} else if data := event.Data.(TurnStartData); data.Word != "___" {
		t.Fatalf("guesser must see the masked word, got %q", data.Word)
	}
	if event, ok := ann.conn.last(EventTurnWord); !ok {
		t.Fatal("drawer did not receive the word")
	} else if data := event.Data.(TurnWordData); data.Word != "cat" {
		t.Fatalf("drawer word = %q, want cat", data.Word)
	}

	s.HandleAction("sb", Guess{Text: "dog"})
	if ann.conn.count(EventChatGuess) != 1 {
		t.Fatal("incorrect guess should be broadcast as chat")
	}

	// ten seconds in, fifty remaining of sixty: 50 + ceil(500*50/60) + 100
	clock.Advance(10 * time.Second)
	s.HandleAction("sb", Guess{Text: "  CAT "})
	if s.State() != StateTurnEnd {
		t.Fatalf("all guessers done, expected TurnEnd, got %v", s.State())
	}
	if ann.conn.count(EventChatCorrect) != 1 {
		t.Fatal("correct guess should be announced")
	}
	scores := s.Scores()
	if scores["ub"] != 567 {
		t.Fatalf("guesser score = %d, want 567", scores["ub"])
	}
	if scores["ua"] != 500 {
		t.Fatalf("drawer score = %d, want 500", scores["ua"])
	}

	clock.Advance(8 * time.Second)
	waitForState(t, s, StateTurnSetup)
	if got := s.currentDrawer(); got != "sb" {
		t.Fatalf("second drawer = %q, want sb", got)
	}

	// let the choice clock expire; the single bank word gets auto-picked
	clock.Advance(10 * time.Second)
	waitForState(t, s, StateTurnStart)
	if got := s.currentWord(); got != "cat" {
		t.Fatalf("auto-chosen word = %q, want cat", got)
	}

	s.HandleAction("sa", Guess{Text: "cat"})
	if s.State() != StateTurnEnd {
		t.Fatalf("expected TurnEnd, got %v", s.State())
	}

	clock.Advance(8 * time.Second)
	waitForState(t, s, StateRoundEnd)
	clock.Advance(5 * time.Second)
	waitForState(t, s, StateGameEnd)

	event, ok := bob.conn.last(EventGameEnd)
	if !ok {
		t.Fatal("expected game:end broadcast")
	}
	final := event.Data.(GameEndData).Scores
	if final["ann"] != 1150 || final["bob"] != 1067 {
		t.Fatalf("final scores = %v, want ann=1150 bob=1067", final)
	}

	// terminal: the grace deadline passing schedules nothing further
	clock.Advance(2 * time.Minute)
	if s.State() != StateGameEnd {
		t.Fatalf("GameEnd must be terminal, got %v", s.State())
	}
}

func TestSessionTurnEndsAtDeadlineWithPartialGuessers(t *testing.T) {
	ann := newTestPlayer("sa", "ua", "ann")
	bob := newTestPlayer("sb", "ub", "bob")
	cat := newTestPlayer("sc", "uc", "cathy")
	s, clock := newTestSession([]string{"boat"}, 1, 60, ann, bob, cat)

	s.Start()
	clock.Advance(1500 * time.Millisecond)
	waitForState(t, s, StateTurnSetup)
	s.HandleAction("sa", ChooseWord{Index: 0})

	clock.Advance(10 * time.Second)
	s.HandleAction("sb", Guess{Text: "boat"})
	if s.State() != StateTurnStart {
		t.Fatalf("one guesser outstanding, expected TurnStart, got %v", s.State())
	}

	clock.Advance(50 * time.Second)
	waitForState(t, s, StateTurnEnd)

	scores := s.Scores()
	if scores["ua"] != 250 {
		t.Fatalf("drawer = %d, want ceil(500*1/2)=250", scores["ua"])
	}
	if scores["ub"] != 567 {
		t.Fatalf("guesser = %d, want 567", scores["ub"])
	}
	if scores["uc"] != 0 {
		t.Fatalf("non-guesser = %d, want 0", scores["uc"])
	}

	event, ok := cat.conn.last(EventTurnEnd)
	if !ok {
		t.Fatal("expected turn:end broadcast")
	}
	data := event.Data.(TurnEndData)
	if data.Word != "boat" {
		t.Fatalf("turn:end must reveal the word, got %q", data.Word)
	}
	if data.TurnScores["cathy"] != 0 || data.TurnScores["bob"] != 567 {
		t.Fatalf("turn scores keyed by name = %v", data.TurnScores)
	}
}

func TestSessionRepeatCorrectGuessIgnored(t *testing.T) {
	ann := newTestPlayer("sa", "ua", "ann")
	bob := newTestPlayer("sb", "ub", "bob")
	cat := newTestPlayer("sc", "uc", "cathy")
	s, clock := newTestSession([]string{"boat"}, 1, 60, ann, bob, cat)

	s.Start()
	clock.Advance(1500 * time.Millisecond)
	waitForState(t, s, StateTurnSetup)
	s.HandleAction("sa", ChooseWord{Index: 0})

	s.HandleAction("sb", Guess{Text: "boat"})
	s.HandleAction("sb", Guess{Text: "boat"})
	if s.State() != StateTurnStart {
		t.Fatalf("one guesser outstanding, expected TurnStart, got %v", s.State())
	}
	if got := ann.conn.count(EventChatCorrect); got != 1 {
		t.Fatalf("expected one correct announcement, got %d", got)
	}

	s.HandleAction("sc", Guess{Text: "boat"})
	if s.State() != StateTurnEnd {
		t.Fatalf("expected quorum TurnEnd, got %v", s.State())
	}
	scores := s.Scores()
	if scores["ub"] != 650 {
		t.Fatalf("first guesser = %d, want 650", scores["ub"])
	}
	if scores["uc"] != 550 {
		t.Fatalf("second guesser = %d, want 550", scores["uc"])
	}
	if scores["ua"] != 500 {
		t.Fatalf("drawer = %d, want ceil(500*2/2)=500", scores["ua"])
	}
}

func TestSessionSolvedGuesserKeepsChatting(t *testing.T) {
	ann := newTestPlayer("sa", "ua", "ann")
	bob := newTestPlayer("sb", "ub", "bob")
	cat := newTestPlayer("sc", "uc", "cathy")
	s, clock := newTestSession([]string{"boat"}, 1, 60, ann, bob, cat)

	s.Start()
	clock.Advance(1500 * time.Millisecond)
	waitForState(t, s, StateTurnSetup)
	s.HandleAction("sa", ChooseWord{Index: 0})

	s.HandleAction("sb", Guess{Text: "boat"})
	s.HandleAction("sb", Guess{Text: "nice one"})

	event, ok := cat.conn.last(EventChatGuess)
	if !ok {
		t.Fatal("expected the solved player's chat to reach the room")
	}
	if data := event.Data.(ChatGuessData); data.Username != "bob" || data.Text != "nice one" {
		t.Fatalf("relayed chat = %#v, want bob's message", data)
	}

	// re-sending the word must stay silent so the answer never leaks
	relayed := cat.conn.count(EventChatGuess)
	s.HandleAction("sb", Guess{Text: "boat"})
	if got := cat.conn.count(EventChatGuess); got != relayed {
		t.Fatalf("resubmitted word was relayed, chat count %d, want %d", got, relayed)
	}
	if got := cat.conn.count(EventChatCorrect); got != 1 {
		t.Fatalf("expected one correct announcement, got %d", got)
	}
	if scores := s.Scores(); scores["ub"] != 650 {
		t.Fatalf("first guesser = %d, want 650", scores["ub"])
	}
}

func TestSessionDrawerCannotGuess(t *testing.T) {
	ann := newTestPlayer("sa", "ua", "ann")
	bob := newTestPlayer("sb", "ub", "bob")
	s, clock := newTestSession([]string{"boat"}, 1, 60, ann, bob)

	s.Start()
	clock.Advance(1500 * time.Millisecond)
	waitForState(t, s, StateTurnSetup)
	s.HandleAction("sa", ChooseWord{Index: 0})

	s.HandleAction("sa", Guess{Text: "boat"})
	if s.State() != StateTurnStart {
		t.Fatalf("drawer guess must not end the turn, got %v", s.State())
	}
	if bob.conn.count(EventChatCorrect) != 0 || bob.conn.count(EventChatGuess) != 0 {
		t.Fatal("drawer guess must not reach chat")
	}
}

func TestSessionGuessOutsideTurnIgnored(t *testing.T) {
	ann := newTestPlayer("sa", "ua", "ann")
	bob := newTestPlayer("sb", "ub", "bob")
	s, _ := newTestSession([]string{"boat"}, 1, 60, ann, bob)

	s.Start()
	s.HandleAction("sb", Guess{Text: "boat"})
	if got := s.Scores()["ub"]; got != 0 {
		t.Fatalf("guess before TurnStart must not score, got %d", got)
	}
}

func TestSessionCanvasActions(t *testing.T) {
	ann := newTestPlayer("sa", "ua", "ann")
	bob := newTestPlayer("sb", "ub", "bob")
	s, clock := newTestSession([]string{"boat"}, 1, 60, ann, bob)

	s.Start()
	clock.Advance(1500 * time.Millisecond)
	waitForState(t, s, StateTurnSetup)
	s.HandleAction("sa", ChooseWord{Index: 0})

	s.HandleAction("sa", Draw{Stroke: 0, Point: Point{1, 2, 0.5}})
	s.HandleAction("sb", Draw{Stroke: 0, Point: Point{9, 9, 9}})
	if got := len(s.strokes.Strokes()); got != 1 {
		t.Fatalf("only the drawer may draw, log has %d strokes", got)
	}

	clock.Advance(100 * time.Millisecond)
	waitFor(t, "stroke broadcast", func() bool {
		return bob.conn.count(EventCanvasStroke) > 0
	})
	if ann.conn.count(EventCanvasStroke) != 0 {
		t.Fatal("drawer must not receive stroke sync")
	}

	s.HandleAction("sb", Undo{})
	if bob.conn.count(EventCanvasUndo) != 0 {
		t.Fatal("only the drawer may undo")
	}
	s.HandleAction("sa", Undo{})
	if bob.conn.count(EventCanvasUndo) != 1 {
		t.Fatal("undo was not broadcast")
	}
	if got := len(s.strokes.Strokes()); got != 0 {
		t.Fatalf("undo should remove the stroke, %d remain", got)
	}

	s.HandleAction("sa", Draw{Stroke: 1, Point: Point{3, 3, 1}})
	s.HandleAction("sa", ClearCanvas{})
	if bob.conn.count(EventCanvasClear) != 1 {
		t.Fatal("clear was not broadcast")
	}
	if got := len(s.strokes.Strokes()); got != 0 {
		t.Fatalf("clear should empty the log, %d remain", got)
	}
}

func TestSessionReattachKeepsSeat(t *testing.T) {
	ann := newTestPlayer("sa", "ua", "ann")
	bob := newTestPlayer("sb", "ub", "bob")
	s, clock := newTestSession([]string{"boat"}, 1, 60, ann, bob)

	s.Start()
	clock.Advance(1500 * time.Millisecond)
	waitForState(t, s, StateTurnSetup)
	s.HandleAction("sa", ChooseWord{Index: 0})
	s.HandleAction("sb", Guess{Text: "boat"})

	s.UpdatePlayerConn("sb", nil)
	rejoined := newTestPlayer("sb", "ub", "bobby")
	s.AddPlayer(rejoined.player)

	s.mu.Lock()
	seats := len(s.players)
	name := s.players["sb"].Username
	s.mu.Unlock()
	if seats != 2 {
		t.Fatalf("reattach must not add a seat, have %d", seats)
	}
	if name != "bobby" {
		t.Fatalf("reattach should refresh the username, got %q", name)
	}
	if got := s.Scores()["ub"]; got != 650 {
		t.Fatalf("score must survive reconnect, got %d", got)
	}

	s.HandleAction("sb", RequestState{})
	event, ok := rejoined.conn.last(EventGameState)
	if !ok {
		t.Fatal("expected a state snapshot on the new connection")
	}
	snap := event.Data.(StateData)
	if snap.State != "turn-end" {
		t.Fatalf("snapshot state = %q, want turn-end", snap.State)
	}
	if len(snap.Players) != 2 {
		t.Fatalf("snapshot players = %d, want 2", len(snap.Players))
	}
}

func TestSessionSnapshotMasksWordForGuessers(t *testing.T) {
	ann := newTestPlayer("sa", "ua", "ann")
	bob := newTestPlayer("sb", "ub", "bob")
	s, clock := newTestSession([]string{"boat"}, 1, 60, ann, bob)

	s.Start()
	clock.Advance(1500 * time.Millisecond)
	waitForState(t, s, StateTurnSetup)
	s.HandleAction("sa", ChooseWord{Index: 0})

	s.HandleAction("sb", RequestState{})
	event, _ := bob.conn.last(EventGameState)
	if got := event.Data.(StateData).Word; got != "____" {
		t.Fatalf("guesser snapshot word = %q, want masked", got)
	}

	s.HandleAction("sa", RequestState{})
	event, _ = ann.conn.last(EventGameState)
	if got := event.Data.(StateData).Word; got != "boat" {
		t.Fatalf("drawer snapshot word = %q, want boat", got)
	}
}

func TestSessionEarlyChoiceCancelsChoiceTimer(t *testing.T) {
	ann := newTestPlayer("sa", "ua", "ann")
	bob := newTestPlayer("sb", "ub", "bob")
	s, clock := newTestSession([]string{"boat"}, 1, 60, ann, bob)

	s.Start()
	clock.Advance(1500 * time.Millisecond)
	waitForState(t, s, StateTurnSetup)
	s.HandleAction("sa", ChooseWord{Index: 0})

	// the choice deadline passing must not re-enter TurnStart
	clock.Advance(10 * time.Second)
	time.Sleep(10 * time.Millisecond)
	if s.State() != StateTurnStart {
		t.Fatalf("expected TurnStart, got %v", s.State())
	}
	if got := bob.conn.count(EventTurnStart); got != 1 {
		t.Fatalf("turn:start fired %d times, want 1", got)
	}
}

func TestSessionCloseStopsTimers(t *testing.T) {
	ann := newTestPlayer("sa", "ua", "ann")
	bob := newTestPlayer("sb", "ub", "bob")
	s, clock := newTestSession([]string{"boat"}, 1, 60, ann, bob)

	s.Start()
	s.Close()
	clock.Advance(time.Hour)
	time.Sleep(10 * time.Millisecond)
	if s.State() != StateGameStart {
		t.Fatalf("closed session must not advance, got %v", s.State())
	}
	s.HandleAction("sb", Guess{Text: "boat"})
	if bob.conn.count(EventChatGuess) != 0 {
		t.Fatal("closed session must drop actions")
	}
}
