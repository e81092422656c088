package internal

type Player struct {
	Id     string `json:"id"`
	Name   string `json:"name"`
	Points int    `json:"points"`
}

func NewPlayer(id, name string) *Player {
	if name == "" {
		name = DefaultNickname
	}
	return &Player{Id: id, Name: name}
}

// AddPoints never lets a score go down.
func (p *Player) AddPoints(points int) {
	if points <= 0 {
		return
	}
	p.Points += points
}

func (p *Player) Snapshot() Player {
	return Player{Id: p.Id, Name: p.Name, Points: p.Points}
}

func SnapshotPlayers(players []*Player) []Player {
	out := make([]Player, 0, len(players))
	for _, p := range players {
		out = append(out, p.Snapshot())
	}
	return out
}
