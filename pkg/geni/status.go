package geni

// Status represents the current authentication status of the SDK.
type Status int

const (
	// StatusUnknown means the status has not been determined yet. It is
	// only ever observed before the first token check; no transition leads
	// back to it.
	StatusUnknown Status = iota

	// StatusUnauthorized means no valid access token is held.
	StatusUnauthorized

	// StatusAuthorized means a non-expired access token is held.
	StatusAuthorized
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusUnauthorized:
		return "unauthorized"
	case StatusAuthorized:
		return "authorized"
	default:
		return "unknown"
	}
}
