/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package games

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// Question is one image in the guess game bank, with its accepted answer.
type Question struct {
	Image  string `mapstructure:"image" json:"image"`
	Answer string `mapstructure:"answer" json:"answer"`
}

const cdn = "https://cdn.labcoin.bg/DEV/"

var defaultBank = []Question{
	{cdn + "thumbail_coin/2024-12/fb9sd9Nt9dTfPQazxH2NDS2wy4C6Ei4P1OGyNuzx.png", "oreo"},
	{cdn + "upload/2025-03/GYWPGp8E4M7dILO51TBV3Z4kTyzcTXN2Sm2zbnU5.png", "лотос"},
	{cdn + "upload/2025-07/z7tvrPMFAsCzV92JeX0sYoGAvViv96pZwOvWmUnH.png", "божур"},
	{cdn + "upload/2025-03/CCWY1P5EyrbMoZq4B4ewe6h1zd0YyiMoKyo7GxTl.png", "северна корея"},
	{cdn + "upload/2025-03/wYL3sgjQdF4AdZOCVyxSSLpSFIjmSmQbYvqdpkxw.png", "южна корея"},
	{cdn + "upload/2025-03/XGB9zW2tSW5JC4c8KfdNSpm5MkW509gucdzg03C5.png", "армения"},
	{cdn + "upload/2025-05/lCtUQTJacC8RWZeaFa8NHkdt6iNBNr7RNsWuc0hi.png", "великобритания"},
	{cdn + "upload/2025-06/BuxOWaRLOCpZ0hjjNwjYMsD7rSOqzkMjEudn1cqb.png", "китай"},
	{cdn + "upload/2025-03/RaWSPUs6P2rWTUi6e0AGM8nc7ebgqREhBxjPAHVg.png", "lv freddy"},
	{cdn + "upload/2025-03/pLCijiWfC9sKFEq3KAF25Q8aPuO9CwQGhVfYXyJb.png", "морско син фреди"},
	{cdn + "upload/2025-03/d8olpAiTh3bP02c02eq9cxva7myLXqOh8zcrd56c.png", "икеа фреди"},
	{cdn + "upload/2025-06/D0bgDmm0Dy8cBAbgA1FmJZeWDjQ8jyXuinsDHzEc.png", "nlo pate"},
	{cdn + "upload/2025-03/ssMkeoGbhYMzjutCkqYaSVL2zlEL4QVasd2CgaV4.png", "legacy pate"},
	{cdn + "upload/2025-03/66pkPOGIRlidJRL21t3yZGXm3A7rv124jMsb6XTZ.png", "пате с царевичка"},
	{cdn + "upload/2025-03/KVIcWEU6R4iMJmCRjB7yIx4R4APPpiqLrBmMb8tO.png", "пате с нурка"},
	{cdn + "upload/2025-03/txIurBdzBuJZl4pVstOWMt09zwHAGUn6sktdVqqc.png", "коте edition"},
	{cdn + "upload/2025-03/XjBvupIJaMkoWfXLl6JYzuFqGb1IKSL7RVtBTMsU.png", "art the great wave"},
	{cdn + "upload/2025-05/3dxqGktC2BdqfwhkXnuZYXz1rCmizwfb1xjhMPKi.png", "поетите"},
	{cdn + "upload/2025-08/PDdGNVpBLSksgHi4sIoDBfHpvSTzXX0iS88CuWH1.png", "aladin foods labcoin"},
}

// DefaultBank returns a copy of the built-in question bank.
func DefaultBank() []Question {
	return slices.Clone(defaultBank)
}

// LoadBank reads a question bank from a YAML, JSON or TOML file holding a
// top-level "questions" list.
func LoadBank(path string) ([]Question, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading question bank: %w", err)
	}

	var bank []Question
	if err := v.UnmarshalKey("questions", &bank); err != nil {
		return nil, fmt.Errorf("parsing question bank: %w", err)
	}

	if len(bank) == 0 {
		return nil, errors.New("question bank is empty")
	}

	for i, q := range bank {
		if strings.TrimSpace(q.Image) == "" {
			return nil, fmt.Errorf("question %d: missing image", i+1)
		}
		if Normalize(q.Answer) == "" {
			return nil, fmt.Errorf("question %d: answer %q is empty once normalized", i+1, q.Answer)
		}
	}

	return bank, nil
}
