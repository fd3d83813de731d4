/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package games

import (
	"math/rand/v2"
	"slices"
)

const leaderboardSize = 3

// guessRun is the state of one guess game in progress.
type guessRun struct {
	questions []int                     // bank indices, in play order
	cursor    int                       // position in questions
	answers   map[int]map[string]string // cursor -> username -> raw guess
	points    int
}

// SubmitGuess records username's latest guess for a question. Guesses for
// rooms without a guess game in progress are dropped; guesses for other
// questions are kept but never looked at.
func (e *Engine) SubmitGuess(code, username string, questionIndex int, guess string) {
	r, ok := e.Room(code)
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	gs := r.guess
	if gs == nil {
		return
	}

	if gs.answers[questionIndex] == nil {
		gs.answers[questionIndex] = make(map[string]string)
	}
	gs.answers[questionIndex][username] = guess
	r.touchLocked()
}

func (e *Engine) startGuessLocked(r *Room, g GuessGame) {
	n := min(e.timing.MaxQuestions, len(e.bank))

	r.guess = &guessRun{
		questions: rand.Perm(len(e.bank))[:n],
		answers:   make(map[int]map[string]string),
		points:    g.PointsPerCorrect,
	}

	if n == 0 {
		e.finishGuessLocked(r)
		return
	}

	e.askLocked(r)
}

func (e *Engine) askLocked(r *Room) {
	gs := r.guess
	q := e.bank[gs.questions[gs.cursor]]

	gs.answers[gs.cursor] = make(map[string]string)

	e.broadcastLocked(r, GuessQuestion{
		envelope:       tag(EventGuessQuestion),
		QuestionNumber: gs.cursor + 1,
		TotalQuestions: len(gs.questions),
		ImageURL:       q.Image,
		Crop: Crop{
			Seed: rand.IntN(1000000),
			Zoom: 1.8 + rand.Float64()*0.8,
		},
		Seconds: int(e.timing.QuestionWindow.Seconds()),
	})

	e.after(r, e.timing.QuestionWindow, func() {
		e.evaluateLocked(r)
	})
}

func (e *Engine) evaluateLocked(r *Room) {
	gs := r.guess
	if gs == nil {
		return
	}

	q := e.bank[gs.questions[gs.cursor]]
	answers := gs.answers[gs.cursor]

	players := make([]string, 0, len(answers))
	for player := range answers {
		players = append(players, player)
	}
	slices.Sort(players)

	correct := []string{}
	for _, player := range players {
		if !Matches(q.Answer, answers[player]) {
			continue
		}
		r.awardLocked(player, gs.points)
		correct = append(correct, player)
	}

	e.broadcastLocked(r, GuessQuestionResult{
		envelope:       tag(EventGuessQuestionResult),
		QuestionNumber: gs.cursor + 1,
		CorrectPlayers: correct,
		CorrectAnswer:  q.Answer,
	})

	e.logf("GAMES: Question %d/%d in %s answered by %d players", gs.cursor+1, len(gs.questions), r.code, len(correct))

	gs.cursor++

	if gs.cursor < len(gs.questions) {
		e.after(r, e.timing.QuestionPause, func() {
			e.askLocked(r)
		})
		return
	}

	e.finishGuessLocked(r)
}

func (e *Engine) finishGuessLocked(r *Room) {
	r.guess = nil

	e.broadcastLocked(r, GuessGameFinished{
		envelope:    tag(EventGuessGameFinished),
		Leaderboard: r.leaderboardLocked(leaderboardSize),
		Scores:      r.scores,
	})

	e.advanceLocked(r)
}

// leaderboardLocked ranks players by points; equal scores keep the order in
// which players first joined.
func (r *Room) leaderboardLocked(n int) []LeaderboardEntry {
	board := make([]LeaderboardEntry, 0, len(r.scoreOrder))
	for _, u := range r.scoreOrder {
		board = append(board, LeaderboardEntry{Username: u, Points: r.scores[u]})
	}

	slices.SortStableFunc(board, func(a, b LeaderboardEntry) int {
		return b.Points - a.Points
	})

	if len(board) > n {
		board = board[:n]
	}

	return board
}
