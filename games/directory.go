/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package games

import (
	"encoding/json"
	"slices"
)

// Conn is a live client connection. Send must not block; a closed or
// backed-up connection simply drops the message.
type Conn interface {
	Send(data []byte)
}

// JoinResult is what a successful join reports back to the caller.
type JoinResult struct {
	Code       string
	Users      []string
	GamesCount int
}

// Join binds c to username inside the room at code. The joining connection
// receives a "joined" ack, then the room hears "userJoined".
func (e *Engine) Join(c Conn, code, username string) (JoinResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, ok := e.rooms[code]
	if !ok {
		return JoinResult{}, ErrRoomNotFound
	}

	prev, bound := e.bindings[c]
	moving := bound && (prev.room != r || prev.username != username)

	// The previous binding is only dropped once the new room is known to
	// have space, so a refused join leaves the connection where it was.
	var vacating string
	if moving && prev.room == r {
		vacating = prev.username
	}

	r.mu.Lock()
	full := r.fullLocked(username, vacating)
	r.mu.Unlock()

	if full {
		return JoinResult{}, ErrRoomFull
	}

	if moving {
		e.leaveLocked(c, prev)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.hasUserLocked(username) {
		r.users = append(r.users, username)
	}
	r.conns[c] = username
	r.ensureScoreLocked(username)
	r.touchLocked()

	e.bindings[c] = binding{room: r, username: username}

	users := r.usersLocked()

	e.sendTo(c, Joined{
		envelope:   tag(EventJoined),
		Code:       r.code,
		Users:      users,
		GamesCount: r.gamesCount,
	})

	e.broadcastLocked(r, UserJoined{
		envelope: tag(EventUserJoined),
		Username: username,
		Users:    users,
	})

	e.logf("ROOMS: Player %q joined %s", username, r.code)

	return JoinResult{Code: r.code, Users: users, GamesCount: r.gamesCount}, nil
}

// Leave unbinds c from whatever room it joined. The username leaves the
// user list but keeps its score.
func (e *Engine) Leave(c Conn) {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, ok := e.bindings[c]
	if !ok {
		return
	}

	e.leaveLocked(c, b)
}

func (e *Engine) leaveLocked(c Conn, b binding) {
	delete(e.bindings, c)

	r := b.room
	if e.rooms[r.code] != r {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.conns, c)
	r.users = slices.DeleteFunc(r.users, func(u string) bool {
		return u == b.username
	})
	r.touchLocked()

	e.broadcastLocked(r, UserLeft{
		envelope: tag(EventUserLeft),
		Username: b.username,
		Users:    r.usersLocked(),
	})

	e.logf("ROOMS: Player %q left %s", b.username, r.code)
}

// Broadcast delivers ev to every connection in the room at code.
func (e *Engine) Broadcast(code string, ev Event) {
	r, ok := e.Room(code)
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e.broadcastLocked(r, ev)
}

// broadcastLocked assumes r.mu is held.
func (e *Engine) broadcastLocked(r *Room, ev Event) {
	if len(r.conns) == 0 {
		return
	}

	data := e.encode(ev)
	if data == nil {
		return
	}

	for c := range r.conns {
		c.Send(data)
	}
}

func (e *Engine) sendTo(c Conn, ev Event) {
	if data := e.encode(ev); data != nil {
		c.Send(data)
	}
}

func (e *Engine) encode(ev Event) []byte {
	data, err := json.Marshal(ev)
	if err != nil {
		e.logf("ERROR: encoding %s event: %v", ev.Kind(), err)
		return nil
	}

	return data
}
