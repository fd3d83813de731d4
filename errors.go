/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

// engineLogger hands the engine the same verbose-only logger.
func engineLogger(cfg *Config) func(string, ...any) {
	return func(format string, args ...any) {
		logf(cfg, format, args...)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(body)
}

type errorResponse struct {
	Error string `json:"error"`
}
