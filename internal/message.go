package internal

type Message[T any] struct {
	Type string `json:"type"`
	Data T      `json:"data"`
}

func NewMessage(eventType string, data any) Message[any] {
	return Message[any]{Type: eventType, Data: data}
}

// Protocol events. Names match what the browser client listens for.
const (
	EventJoin        = "join"
	EventPlayers     = "players"
	EventLeave       = "leave"
	EventRoundStart  = "round_start"
	EventChoose      = "choose"
	EventChoice      = "choice"
	EventDrawer      = "drawer"
	EventRound       = "round"
	EventTime        = "time"
	EventRoundEnd    = "round_end"
	EventChatMessage = "chat_message"
	EventGuessed     = "guessed"
	EventClose       = "close"
	EventContains    = "contains"

	EventMouseDown   = "mouse_down"
	EventMouseMove   = "mouse_move"
	EventMouseUp     = "mouse_up"
	EventColour      = "colour"
	EventBrushSize   = "brush_size"
	EventFill        = "fill"
	EventClearCanvas = "clear_canvas"
)

var DrawingEvents = map[string]struct{}{
	EventMouseDown:   {},
	EventMouseMove:   {},
	EventMouseUp:     {},
	EventColour:      {},
	EventBrushSize:   {},
	EventFill:        {},
	EventClearCanvas: {},
}

type JoinRequest struct {
	Room     string `json:"room"`
	Nick     string `json:"nick"`
	Password string `json:"password,omitempty"`
}

type PlayersData struct {
	Players  []Player `json:"players"`
	DrawerId string   `json:"drawer_id,omitempty"`
	Drawing  bool     `json:"drawing"`
	MaxTime  int      `json:"max_time"`
	Time     int      `json:"time"`
	Paused   bool     `json:"paused"`
}

type RoundStartData struct {
	DrawerId string `json:"drawer_id"`
	MaxTime  int    `json:"max_time"`
}

type HintData struct {
	Category string `json:"category"`
	Word     string `json:"word"`
}

type ChatData struct {
	Player string `json:"player"`
	Text   string `json:"text"`
}

type CreateRoomRequest struct {
	Name       string   `json:"name"`
	Password   string   `json:"password"`
	Time       int      `json:"time"`
	Categories []string `json:"categories"`
}

type CreateRoomResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
