/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package games

import (
	"context"
	"crypto/rand"
	"sync"
	"time"
)

// Scheduler runs f once after d. It exists so tests can drive time.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// Timing holds the sequencer's fixed delays.
type Timing struct {
	MinSpin        time.Duration
	QuestionWindow time.Duration
	QuestionPause  time.Duration
	MaxQuestions   int
}

// DefaultTiming matches what the browser client animates against.
var DefaultTiming = Timing{
	MinSpin:        3500 * time.Millisecond,
	QuestionWindow: 10 * time.Second,
	QuestionPause:  3 * time.Second,
	MaxQuestions:   10,
}

type Options struct {
	Bank      []Question
	Scheduler Scheduler
	Timing    Timing
	Logf      func(format string, args ...any)
}

type binding struct {
	room     *Room
	username string
}

// Engine owns every room in the process and the connection bindings into
// them. Lock order is always Engine.mu before Room.mu.
type Engine struct {
	mu       sync.RWMutex
	rooms    map[string]*Room
	bindings map[Conn]binding

	bank   []Question
	sched  Scheduler
	timing Timing
	logf   func(format string, args ...any)
}

func NewEngine(opts Options) *Engine {
	e := &Engine{
		rooms:    make(map[string]*Room),
		bindings: make(map[Conn]binding),
		bank:     opts.Bank,
		sched:    opts.Scheduler,
		timing:   opts.Timing,
		logf:     opts.Logf,
	}

	if e.bank == nil {
		e.bank = DefaultBank()
	}
	if e.sched == nil {
		e.sched = realScheduler{}
	}
	if e.timing == (Timing{}) {
		e.timing = DefaultTiming
	}
	if e.timing.MaxQuestions <= 0 {
		e.timing.MaxQuestions = DefaultTiming.MaxQuestions
	}
	if e.logf == nil {
		e.logf = func(string, ...any) {}
	}

	return e
}

// CreateRoom registers a room under code, replacing whatever was there.
// An empty code gets a freshly generated one.
func (e *Engine) CreateRoom(code string, cfg RoomConfig) *Room {
	e.mu.Lock()
	defer e.mu.Unlock()

	if code == "" {
		code = e.newCodeLocked()
	}

	r := newRoom(code, cfg)
	e.rooms[code] = r

	e.logf("ROOMS: Created room %s (%d games)", code, r.limit())

	return r
}

func (e *Engine) Room(code string) (*Room, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	r, ok := e.rooms[code]

	return r, ok
}

func (e *Engine) RoomExists(code string) bool {
	_, ok := e.Room(code)

	return ok
}

// Snapshot returns the state of the room at code, if it exists.
func (e *Engine) Snapshot(code string) (RoomState, bool) {
	r, ok := e.Room(code)
	if !ok {
		return RoomState{}, false
	}

	return r.Snapshot(), true
}

// DeleteAllRooms drops every room. Connected clients are not told; pending
// timers for the dropped rooms find nothing when they fire.
func (e *Engine) DeleteAllRooms() {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := len(e.rooms)
	e.rooms = make(map[string]*Room)
	e.bindings = make(map[Conn]binding)

	e.logf("ROOMS: Deleted %d rooms", n)
}

// current reports whether r is still the room registered under its code.
func (e *Engine) current(r *Room) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.rooms[r.code] == r
}

// Reap removes rooms that are not mid-game, have no connection bound to
// them and have been idle for longer than maxIdle. It returns how many were
// removed.
func (e *Engine) Reap(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	e.mu.Lock()
	defer e.mu.Unlock()

	removed := 0
	for code, r := range e.rooms {
		r.mu.Lock()
		idle := len(r.conns) == 0 &&
			r.lastActive.Before(cutoff) &&
			(r.phase == PhaseIdle || r.phase == PhaseFinished)
		r.mu.Unlock()

		if !idle {
			continue
		}

		delete(e.rooms, code)
		removed++

		e.logf("ROOMS: Reaped idle room %s", code)
	}

	return removed
}

// ReapLoop calls Reap every maxIdle/2 until ctx is done.
func (e *Engine) ReapLoop(ctx context.Context, maxIdle time.Duration) {
	if maxIdle <= 0 {
		return
	}

	ticker := time.NewTicker(maxIdle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Reap(maxIdle)
		}
	}
}

func (e *Engine) newCodeLocked() string {
	const letters = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	for {
		buf := make([]byte, 6)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, len(buf))
		for i := range out {
			out[i] = letters[int(buf[i])%len(letters)]
		}
		code := string(out)

		if _, exists := e.rooms[code]; !exists {
			return code
		}
	}
}
