/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package games

import (
	"encoding/json"
	"time"
)

const (
	KindWheel = "wheel"
	KindGuess = "guess"

	defaultWheelPoints = 10
	defaultGuessPoints = 10
	defaultSpin        = 4500 * time.Millisecond
)

// Game is one entry of a room's game list. The concrete type is one of
// WheelGame, GuessGame or UnknownGame.
type Game interface {
	Kind() string
}

// WheelGame picks a single random winner among the players in the room.
type WheelGame struct {
	Type            string `json:"type"`
	Name            string `json:"name"`
	Prize           string `json:"prize,omitempty"`
	PointsForWinner int    `json:"pointsForWinner"`
	SpinMs          int    `json:"spinMs,omitempty"`

	// Extra holds client fields the server does not interpret. They are
	// echoed back unchanged.
	Extra map[string]json.RawMessage `json:"-"`
}

func (WheelGame) Kind() string { return KindWheel }

func (g WheelGame) MarshalJSON() ([]byte, error) {
	type plain WheelGame

	return marshalWithExtra(plain(g), g.Extra)
}

// spin is how long clients animate the wheel before the winner is drawn.
func (g WheelGame) spin(floor time.Duration) time.Duration {
	d := defaultSpin
	if g.SpinMs > 0 {
		d = time.Duration(g.SpinMs) * time.Millisecond
	}

	return max(d, floor)
}

// GuessGame runs a series of timed image-guessing questions.
type GuessGame struct {
	Type             string `json:"type"`
	Name             string `json:"name"`
	Prize            string `json:"prize,omitempty"`
	PointsPerCorrect int    `json:"pointsPerCorrect"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (GuessGame) Kind() string { return KindGuess }

func (g GuessGame) MarshalJSON() ([]byte, error) {
	type plain GuessGame

	return marshalWithExtra(plain(g), g.Extra)
}

// UnknownGame preserves entries with an unrecognized type tag so they can
// still be echoed to clients. The sequencer skips them.
type UnknownGame struct {
	Type string
	Raw  json.RawMessage
}

func (g UnknownGame) Kind() string { return g.Type }

func (g UnknownGame) MarshalJSON() ([]byte, error) {
	if len(g.Raw) == 0 {
		return []byte("null"), nil
	}

	return g.Raw, nil
}

// DecodeGame turns one raw game entry into its concrete type, filling in
// default point values the way clients expect.
func DecodeGame(raw json.RawMessage) (Game, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}

	switch head.Type {
	case KindWheel:
		var g WheelGame
		if err := json.Unmarshal(raw, &g); err != nil {
			return nil, err
		}
		if g.PointsForWinner <= 0 {
			g.PointsForWinner = defaultWheelPoints
		}
		extra, err := extraFields(raw, "type", "name", "prize", "pointsForWinner", "spinMs")
		if err != nil {
			return nil, err
		}
		g.Extra = extra
		return g, nil
	case KindGuess:
		var g GuessGame
		if err := json.Unmarshal(raw, &g); err != nil {
			return nil, err
		}
		if g.PointsPerCorrect <= 0 {
			g.PointsPerCorrect = defaultGuessPoints
		}
		extra, err := extraFields(raw, "type", "name", "prize", "pointsPerCorrect")
		if err != nil {
			return nil, err
		}
		g.Extra = extra
		return g, nil
	default:
		return UnknownGame{Type: head.Type, Raw: append(json.RawMessage(nil), raw...)}, nil
	}
}

// DecodeGames decodes a full game list, stopping at the first malformed entry.
func DecodeGames(raws []json.RawMessage) ([]Game, error) {
	list := make([]Game, 0, len(raws))

	for _, raw := range raws {
		g, err := DecodeGame(raw)
		if err != nil {
			return nil, err
		}
		list = append(list, g)
	}

	return list, nil
}

// extraFields returns the top-level fields of raw not named in known, or nil
// when there are none.
func extraFields(raw json.RawMessage, known ...string) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	for _, k := range known {
		delete(fields, k)
	}

	if len(fields) == 0 {
		return nil, nil
	}

	return fields, nil
}

// marshalWithExtra encodes v and folds in any extra fields that v does not
// already set.
func marshalWithExtra(v any, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}

	for k, val := range extra {
		if _, ok := fields[k]; !ok {
			fields[k] = val
		}
	}

	return json.Marshal(fields)
}
