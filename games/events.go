/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package games

import "encoding/json"

// Event is anything the engine sends to connections. Each event struct
// carries its own "type" tag.
type Event interface {
	Kind() string
}

type envelope struct {
	Type string `json:"type"`
}

func (e envelope) Kind() string { return e.Type }

func tag(kind string) envelope { return envelope{Type: kind} }

// Joined acknowledges a join to the joining connection only.
type Joined struct {
	envelope
	Code       string   `json:"code"`
	Users      []string `json:"users"`
	GamesCount int      `json:"gamesCount"`
}

type UserJoined struct {
	envelope
	Username string   `json:"username"`
	Users    []string `json:"users"`
}

type UserLeft struct {
	envelope
	Username string   `json:"username"`
	Users    []string `json:"users"`
}

type CountdownStart struct {
	envelope
	Seconds   int  `json:"seconds"`
	GameIndex int  `json:"gameIndex"`
	Game      Game `json:"game"`
}

type GameStart struct {
	envelope
	Game      Game `json:"game"`
	GameIndex int  `json:"gameIndex"`
}

// WheelResult names the winner, or carries a null winner when nobody was
// in the room to win.
type WheelResult struct {
	Winner *string `json:"winner"`
}

type GameFinished struct {
	envelope
	Result    WheelResult `json:"result"`
	GameIndex int         `json:"gameIndex"`
}

// Crop tells clients which part of an image to show.
type Crop struct {
	Seed int     `json:"seed"`
	Zoom float64 `json:"zoom"`
}

type GuessQuestion struct {
	envelope
	QuestionNumber int    `json:"questionNumber"`
	TotalQuestions int    `json:"totalQuestions"`
	ImageURL       string `json:"imageURL"`
	Crop           Crop   `json:"crop"`
	Seconds        int    `json:"seconds"`
}

type GuessQuestionResult struct {
	envelope
	QuestionNumber int      `json:"questionNumber"`
	CorrectPlayers []string `json:"correctPlayers"`
	CorrectAnswer  string   `json:"correctAnswer"`
}

type LeaderboardEntry struct {
	Username string `json:"username"`
	Points   int    `json:"points"`
}

type GuessGameFinished struct {
	envelope
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	Scores      map[string]int     `json:"scores"`
}

type AllGamesFinished struct {
	envelope
	Scores map[string]int `json:"scores"`
}

// Announcement relays an arbitrary admin payload to the whole room.
type Announcement struct {
	envelope
	Message json.RawMessage `json:"message"`
}

// RoomState is a read-only snapshot of a room.
type RoomState struct {
	Users            []string       `json:"users"`
	CurrentGameIndex int            `json:"currentGameIndex"`
	Scores           map[string]int `json:"scores"`
}

const (
	EventJoined              = "joined"
	EventUserJoined          = "userJoined"
	EventUserLeft            = "userLeft"
	EventCountdownStart      = "countdownStart"
	EventGameStart           = "gameStart"
	EventGameFinished        = "gameFinished"
	EventGuessQuestion       = "guessQuestion"
	EventGuessQuestionResult = "guessQuestionResult"
	EventGuessGameFinished   = "guessGameFinished"
	EventAllGamesFinished    = "allGamesFinished"
	EventAnnouncement        = "announcement"
)

// NewAnnouncement wraps message for Broadcast. A missing message is sent as null.
func NewAnnouncement(message json.RawMessage) Announcement {
	if len(message) == 0 {
		message = json.RawMessage("null")
	}

	return Announcement{envelope: tag(EventAnnouncement), Message: message}
}
