package geni

import "errors"

var (
	// ErrMissingAppID indicates the SDK was constructed without the
	// required Geni application ID.
	ErrMissingAppID = errors.New("geni: application ID is required")

	// ErrConnectInProgress is returned when Connect is called while
	// another connect attempt is still pending. Only one browser flow and
	// local listener may exist at a time; callers may retry later.
	ErrConnectInProgress = errors.New("geni: connect already in progress")

	// ErrUnauthenticated is returned by API calls made without a valid
	// access token. Call Connect first.
	ErrUnauthenticated = errors.New("geni: not authenticated")

	// ErrTimeout indicates the browser authorization step did not complete
	// within the configured connect timeout.
	ErrTimeout = errors.New("timeout")
)

// AuthorizationError reports that the authorization server denied the
// consent request (e.g. the user cancelled).
type AuthorizationError struct {
	Code        string
	Description string
}

// Error implements the error interface.
func (e *AuthorizationError) Error() string {
	if e.Description != "" {
		return "authorization failed: " + e.Code + ": " + e.Description
	}
	return "authorization failed: " + e.Code
}
