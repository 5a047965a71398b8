// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/Jordancode-cyber/EV-test-app/handlers"
	"github.com/Jordancode-cyber/EV-test-app/middleware"
	"github.com/Jordancode-cyber/EV-test-app/voting"
)

func NewRouter(svc *voting.Service) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	verificationHandler := handlers.NewVerificationHandler(svc)
	ballotHandler := handlers.NewBallotHandler(svc)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Voter verification
	mux.HandleFunc("POST /verify/request-otp", middleware.WithLogging(verificationHandler.RequestOTP))
	mux.HandleFunc("POST /verify/confirm", middleware.WithLogging(verificationHandler.Confirm))

	// Ballot (requires ballot token)
	mux.HandleFunc("GET /ballot", middleware.WithLogging(ballotHandler.GetBallot))
	mux.HandleFunc("POST /vote", middleware.WithLogging(ballotHandler.CastVotes))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("evote API v1"))
	})

	return mux
}
