/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package games

import (
	"maps"
	"slices"
	"sync"
	"time"
)

const (
	defaultGamesCount = 1
	defaultTimeBefore = 10
)

// Phase is where a room is in its game sequence.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseCountdown
	PhaseInGame
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCountdown:
		return "countdown"
	case PhaseInGame:
		return "in-game"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// RoomConfig is what an admin supplies when creating a room.
type RoomConfig struct {
	GamesCount int
	TimeBefore int
	MaxUsers   int
	Games      []Game
}

// Room is one game session. Every field below mu is guarded by it.
type Room struct {
	code       string
	gamesCount int
	timeBefore int
	maxUsers   int
	games      []Game

	mu sync.Mutex

	users      []string
	conns      map[Conn]string
	scores     map[string]int
	scoreOrder []string
	index      int
	phase      Phase
	guess      *guessRun

	// epoch is bumped at every sequencer step; continuations scheduled
	// under an older epoch do nothing when they fire.
	epoch uint64

	lastActive time.Time
}

func newRoom(code string, cfg RoomConfig) *Room {
	if cfg.GamesCount <= 0 {
		cfg.GamesCount = defaultGamesCount
	}
	if cfg.TimeBefore <= 0 {
		cfg.TimeBefore = defaultTimeBefore
	}
	if cfg.MaxUsers < 0 {
		cfg.MaxUsers = 0
	}

	return &Room{
		code:       code,
		gamesCount: cfg.GamesCount,
		timeBefore: cfg.TimeBefore,
		maxUsers:   cfg.MaxUsers,
		games:      slices.Clone(cfg.Games),
		conns:      make(map[Conn]string),
		scores:     make(map[string]int),
		lastActive: time.Now(),
	}
}

func (r *Room) Code() string { return r.code }

func (r *Room) GamesCount() int { return r.gamesCount }

// Phase returns the current sequencer state.
func (r *Room) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.phase
}

// Snapshot copies the user list, current game index and scores.
func (r *Room) Snapshot() RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()

	return RoomState{
		Users:            r.usersLocked(),
		CurrentGameIndex: r.index,
		Scores:           maps.Clone(r.scores),
	}
}

// limit is the index at which sequencing stops.
func (r *Room) limit() int {
	return min(r.gamesCount, len(r.games))
}

func (r *Room) hasUserLocked(username string) bool {
	return slices.Contains(r.users, username)
}

// fullLocked reports whether username would push the room past maxUsers,
// counting vacating as already gone.
func (r *Room) fullLocked(username, vacating string) bool {
	if r.maxUsers <= 0 || r.hasUserLocked(username) {
		return false
	}

	n := len(r.users)
	if vacating != "" && r.hasUserLocked(vacating) {
		n--
	}

	return n >= r.maxUsers
}

func (r *Room) ensureScoreLocked(username string) {
	if _, ok := r.scores[username]; ok {
		return
	}

	r.scores[username] = 0
	r.scoreOrder = append(r.scoreOrder, username)
}

func (r *Room) awardLocked(username string, points int) {
	if points <= 0 {
		return
	}

	r.ensureScoreLocked(username)
	r.scores[username] += points
}

func (r *Room) usersLocked() []string {
	users := slices.Clone(r.users)
	if users == nil {
		users = []string{}
	}

	return users
}

func (r *Room) touchLocked() {
	r.lastActive = time.Now()
}
