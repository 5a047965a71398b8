// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the EVote API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(svc)

# Endpoints

Health:

	GET /health

Verification (public):

	POST /verify/request-otp - Send a one-time code   {reg_no, method}
	POST /verify/confirm     - Exchange it for a token {challenge_id, code}

Ballot (requires Authorization: Bearer <ballot token>):

	GET  /ballot - Open positions with approved candidates
	POST /vote   - Cast votes, consuming the token     {votes: [...]}

POST /vote also accepts {token} in the body when no Authorization header
is sent. GET /ballot never reads the token from the query string.

# Handler Initialization

Both handlers share one voting.Service, which main builds from the store,
hasher, notifier, throttle and audit recorder.
*/
package router
