package game

import "errors"

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrDuplicateRoom = errors.New("room already exists")
	ErrInvalidRoom   = errors.New("invalid room settings")
	ErrNotAuthorized = errors.New("not authorized")
	ErrWrongState    = errors.New("action not valid in current room state")
	ErrNoRoom        = errors.New("connection has not joined a room")
	ErrWrongPassword = errors.New("wrong room password")
	ErrAlreadyJoined = errors.New("already in a room")
	ErrNotInRoom     = errors.New("player is not in this room")
	ErrUnknownEvent  = errors.New("unknown event")
	ErrWordLookup    = errors.New("word lookup failed")
)
