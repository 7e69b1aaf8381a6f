package game

// Event is one outbound frame to a participant. Name follows the wire
// convention "namespace:verb"; Data is the JSON payload for that event.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data,omitempty"`
}

const (
	EventGameStarting = "game:starting"
	EventGameEnd      = "game:end"
	EventGameState    = "game:state"
	EventRoundStart   = "round:start"
	EventRoundEnd     = "round:end"
	EventTurnSetup    = "turn:setup"
	EventTurnChoices  = "turn:choices"
	EventTurnStart    = "turn:start"
	EventTurnWord     = "turn:word"
	EventTurnEnd      = "turn:end"
	EventCanvasStroke = "canvas:stroke"
	EventCanvasClear  = "canvas:clear"
	EventCanvasUndo   = "canvas:undo"
	EventChatGuess    = "chat:guess"
	EventChatCorrect  = "chat:correct"
)

// PlayerInfo is the public view of a participant.
type PlayerInfo struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type GameStartingData struct {
	Deadline int64 `json:"deadline"`
}

type RoundStartData struct {
	Round  int `json:"round"`
	Rounds int `json:"rounds"`
}

type TurnSetupData struct {
	Drawer   PlayerInfo `json:"drawer"`
	Deadline int64      `json:"deadline"`
}

// TurnChoicesData is sent to the drawer only.
type TurnChoicesData struct {
	Choices  []string `json:"choices"`
	Deadline int64    `json:"deadline"`
}

// TurnStartData carries the masked word; the drawer receives TurnWordData
// with the real word instead.
type TurnStartData struct {
	Word     string     `json:"word"`
	Drawer   PlayerInfo `json:"drawer"`
	Deadline int64      `json:"deadline"`
}

type TurnWordData struct {
	Word     string `json:"word"`
	Deadline int64  `json:"deadline"`
}

type TurnEndData struct {
	Word       string         `json:"word"`
	TurnScores map[string]int `json:"turnScores"`
	Scores     map[string]int `json:"scores"`
	Deadline   int64          `json:"deadline"`
}

type RoundEndData struct {
	Round    int   `json:"round"`
	Deadline int64 `json:"deadline"`
}

type GameEndData struct {
	Scores   map[string]int `json:"scores"`
	Deadline int64          `json:"deadline"`
}

type ChatGuessData struct {
	Username string `json:"username"`
	Text     string `json:"text"`
}

// ChatCorrectData announces a correct guess without echoing the guess text.
type ChatCorrectData struct {
	Username string `json:"username"`
}

// StateData is the reply to a RequestState action. Word is masked unless the
// caller is the drawer or the turn is already over.
type StateData struct {
	State    string         `json:"state"`
	Round    int            `json:"round"`
	Rounds   int            `json:"rounds"`
	Drawer   *PlayerInfo    `json:"drawer,omitempty"`
	Word     string         `json:"word,omitempty"`
	Deadline int64          `json:"deadline"`
	Scores   map[string]int `json:"scores"`
	Strokes  [][]Point      `json:"strokes,omitempty"`
	Players  []PlayerInfo   `json:"players"`
}
