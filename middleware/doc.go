// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs method, path, status and duration_ms on completion. Query strings,
headers and bodies are never logged because they can carry ballot tokens.

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, OPTIONS with headers Content-Type and
Authorization.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.CodedErrorResponse(w, http.StatusConflict, "token_already_used", "message")

Responses are marked Cache-Control: no-store since some carry ballot tokens.

Parse JSON request bodies (capped at MaxBodyBytes):

	var req models.RequestOTPRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Ballot Tokens

BearerToken reads "Authorization: Bearer <token>". BallotToken applies the
precedence rule for endpoints that also accept a token in the body: the
header wins, the body is used only when there is no header, and two
different tokens fail with ErrTokenMismatch.

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

The IP is only ever stored as a keyed hash.
*/
package middleware
