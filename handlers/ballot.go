// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/Jordancode-cyber/EV-test-app/middleware"
	"github.com/Jordancode-cyber/EV-test-app/models"
	"github.com/Jordancode-cyber/EV-test-app/voting"
)

type BallotHandler struct {
	svc *voting.Service
}

func NewBallotHandler(svc *voting.Service) *BallotHandler {
	return &BallotHandler{svc: svc}
}

// GetBallot handles GET /ballot
// The token is read from the Authorization header only.
func (h *BallotHandler) GetBallot(w http.ResponseWriter, r *http.Request) {
	positions, err := h.svc.RetrieveBallot(r.Context(), middleware.BearerToken(r))
	if err != nil {
		writeError(w, "retrieve ballot", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.BallotResponse{
		Positions: positions,
	})
}

// CastVotes handles POST /vote
func (h *BallotHandler) CastVotes(w http.ResponseWriter, r *http.Request) {
	var req models.CastVotesRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.CodedErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON")
		return
	}

	token, err := middleware.BallotToken(r, req.Token)
	if err != nil {
		writeError(w, "cast votes", voting.ErrInvalidToken)
		return
	}

	ids, err := h.svc.CastVotes(r.Context(), token, req.Votes)
	if err != nil {
		writeError(w, "cast votes", err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CastVotesResponse{
		Status: "recorded",
		Votes:  ids,
	})
}
