package internal

type RoomState string

const (
	// StateIdle: no drawer yet, or the last drawer left a lone player behind.
	StateIdle     RoomState = "idle"
	StateChoosing RoomState = "choosing"
	StateDrawing  RoomState = "drawing"
	// StateClosed rooms are gone from the registry and reject every operation.
	StateClosed RoomState = "closed"
)

// RoomSettings is what the room creation flow hands to the registry.
type RoomSettings struct {
	Name     string
	Password string
	Words    []WordChoice
	MaxTime  int
}
