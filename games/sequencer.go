/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package games

import (
	"math/rand/v2"
	"time"
)

// Start kicks off the countdown to the room's current game. Only an idle
// room can be started.
func (e *Engine) Start(code string) error {
	r, ok := e.Room(code)
	if !ok {
		return ErrRoomNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseIdle {
		e.logf("GAMES: Ignoring start for %s in phase %s", r.code, r.phase)
		return ErrRoomStarted
	}

	e.logf("GAMES: Starting room %s", r.code)

	e.countdownLocked(r)

	return nil
}

// StartNext runs the current step immediately, skipping any countdown.
// Steps already scheduled for the room are superseded.
func (e *Engine) StartNext(code string) error {
	r, ok := e.Room(code)
	if !ok {
		return ErrRoomNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e.runStepLocked(r)

	return nil
}

// after schedules fn against r. When it fires, fn runs under r.mu, and only
// if r is still registered and no later step has started since.
func (e *Engine) after(r *Room, d time.Duration, fn func()) {
	epoch := r.epoch

	e.sched.AfterFunc(d, func() {
		if !e.current(r) {
			return
		}

		r.mu.Lock()
		defer r.mu.Unlock()

		if r.epoch != epoch {
			return
		}

		fn()
	})
}

func (e *Engine) countdownLocked(r *Room) {
	var game Game
	if r.index < len(r.games) {
		game = r.games[r.index]
	}

	r.phase = PhaseCountdown
	r.touchLocked()

	e.broadcastLocked(r, CountdownStart{
		envelope:  tag(EventCountdownStart),
		Seconds:   r.timeBefore,
		GameIndex: r.index,
		Game:      game,
	})

	e.after(r, time.Duration(r.timeBefore)*time.Second, func() {
		e.runStepLocked(r)
	})
}

func (e *Engine) runStepLocked(r *Room) {
	r.epoch++
	r.touchLocked()

	if r.index >= r.limit() {
		e.finishLocked(r)
		return
	}

	game := r.games[r.index]
	r.guess = nil
	r.phase = PhaseInGame

	e.broadcastLocked(r, GameStart{
		envelope:  tag(EventGameStart),
		Game:      game,
		GameIndex: r.index,
	})

	switch g := game.(type) {
	case WheelGame:
		e.after(r, g.spin(e.timing.MinSpin), func() {
			e.spinLocked(r, g)
		})
	case GuessGame:
		e.startGuessLocked(r, g)
	default:
		e.logf("GAMES: Skipping game %d of kind %q in %s", r.index, game.Kind(), r.code)
		r.index++
		e.runStepLocked(r)
	}
}

func (e *Engine) spinLocked(r *Room, g WheelGame) {
	var result WheelResult
	if len(r.users) > 0 {
		winner := r.users[rand.IntN(len(r.users))]
		r.awardLocked(winner, g.PointsForWinner)
		result.Winner = &winner

		e.logf("GAMES: Wheel %d in %s won by %q", r.index, r.code, winner)
	} else {
		e.logf("GAMES: Wheel %d in %s had nobody to spin for", r.index, r.code)
	}

	e.broadcastLocked(r, GameFinished{
		envelope:  tag(EventGameFinished),
		Result:    result,
		GameIndex: r.index,
	})

	e.advanceLocked(r)
}

// advanceLocked moves past the game that just ended and either counts down
// to the next one or finishes the room.
func (e *Engine) advanceLocked(r *Room) {
	r.index++

	if r.index < r.limit() {
		e.countdownLocked(r)
		return
	}

	e.finishLocked(r)
}

func (e *Engine) finishLocked(r *Room) {
	r.phase = PhaseFinished

	e.broadcastLocked(r, AllGamesFinished{
		envelope: tag(EventAllGamesFinished),
		Scores:   r.scores,
	})

	e.logf("GAMES: All games finished in %s", r.code)
}
