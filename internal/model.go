package internal

import "time"

const (
	ChoicesPerRound    = 3
	MinPlayersForRound = 2
	DefaultNickname    = "Anonymous"
)

// WordChoice is a reference into the word store. Rooms keep a pool of these.
type WordChoice struct {
	Id       string `json:"id"`
	Category string `json:"category"`
}

// WordData is the resolved content of a word. Parent and Key are only
// populated by categories that hang off a champion (spells, skins).
type WordData struct {
	Id       string `json:"id"`
	Word     string `json:"word"`
	Image    string `json:"image"`
	Category string `json:"category"`
	Subtext  string `json:"subtext"`

	Parent string `json:"-"`
	Key    string `json:"-"`
}

func (w WordData) Choice() WordChoice {
	return WordChoice{Id: w.Id, Category: w.Category}
}

type Response struct {
	StatusCode    int   `json:"status_code"`
	RespStartTime int64 `json:"resp_time_start_ms"`
	RespEndTime   int64 `json:"resp_time_end_ms"`
	NetRespTime   int64 `json:"net_resp_time_ms"`
	Data          any   `json:"data"`
}

// NewResponse stamps the start time; Finish fills the rest.
func NewResponse(statusCode int, start time.Time, data any) Response {
	return Response{
		StatusCode:    statusCode,
		RespStartTime: start.UnixMilli(),
		Data:          data,
	}
}

func (r *Response) Finish() {
	r.RespEndTime = time.Now().UnixMilli()
	r.NetRespTime = r.RespEndTime - r.RespStartTime
}
