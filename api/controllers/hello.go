package controllers

import (
	"net/http"
	"time"

	"github.com/davidquint/raffle-backend/api/responses"
)

// Hello is the storefront's connectivity probe.
func Hello() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{
			"message":     "hello",
			"server_time": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// Ping answers with a bare pong for uptime monitors.
func Ping() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"message": "pong"})
	}
}
