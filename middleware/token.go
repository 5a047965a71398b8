// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"errors"
	"net/http"
	"strings"
)

// ErrTokenMismatch means the header and body carried different tokens
var ErrTokenMismatch = errors.New("conflicting ballot tokens in header and body")

// BearerToken returns the token from an "Authorization: Bearer" header, or
// "" when there is none
func BearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// BallotToken picks the ballot token for a request that may also carry one
// in its body. The header is authoritative. The body token is used only when
// no header is sent. Two different tokens are rejected outright.
func BallotToken(r *http.Request, bodyToken string) (string, error) {
	header := BearerToken(r)
	bodyToken = strings.TrimSpace(bodyToken)

	switch {
	case header == "":
		return bodyToken, nil
	case bodyToken != "" && bodyToken != header:
		return "", ErrTokenMismatch
	}
	return header, nil
}
