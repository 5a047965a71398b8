// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/Jordancode-cyber/EV-test-app/middleware"
	"github.com/Jordancode-cyber/EV-test-app/models"
	"github.com/Jordancode-cyber/EV-test-app/voting"
)

type VerificationHandler struct {
	svc *voting.Service
}

func NewVerificationHandler(svc *voting.Service) *VerificationHandler {
	return &VerificationHandler{svc: svc}
}

// RequestOTP handles POST /verify/request-otp
func (h *VerificationHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req models.RequestOTPRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.CodedErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON")
		return
	}

	challengeID, err := h.svc.RequestChallenge(r.Context(), voting.ChallengeRequest{
		RegNo:    req.RegNo,
		Method:   req.Method,
		ClientIP: middleware.GetClientIP(r),
	})
	if err != nil {
		writeError(w, "request challenge", err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.RequestOTPResponse{
		ChallengeID: challengeID,
	})
}

// Confirm handles POST /verify/confirm
func (h *VerificationHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req models.ConfirmRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.CodedErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON")
		return
	}

	token, err := h.svc.ConfirmChallenge(r.Context(), req.ChallengeID, req.Code)
	if err != nil {
		writeError(w, "confirm challenge", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ConfirmResponse{
		BallotToken: token,
	})
}
