/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package games

import "errors"

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
	ErrRoomStarted  = errors.New("room has already started")
)
