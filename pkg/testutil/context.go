package testutil

import (
	"net/http"
	"time"

	id "certifly/pkg/domain"
	"certifly/pkg/requestcontext"
)

// AsUser attaches an authenticated owner the way the auth middleware would,
// for handler tests that mount routes without it.
func AsUser(req *http.Request, userID id.UserID) *http.Request {
	return req.WithContext(requestcontext.WithUserID(req.Context(), userID))
}

// WithToken attaches the credential that authenticated req.
func WithToken(req *http.Request, jti string, expiresAt time.Time) *http.Request {
	return req.WithContext(requestcontext.WithToken(req.Context(), jti, expiresAt))
}
