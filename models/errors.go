package models

import "errors"

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrCapacityExceeded   = errors.New("room is full")
	ErrRoomStarted        = errors.New("room already started")
	ErrWrongStage         = errors.New("operation not allowed in current stage")
	ErrInvalidRoomType    = errors.New("invalid room type")
	ErrInvalidRoomCode    = errors.New("invalid room code")
	ErrInvalidPreferences = errors.New("invalid preferences")
	ErrInvalidSwipe       = errors.New("invalid swipe")
)
