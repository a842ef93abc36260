package linkedin

import (
	"errors"
	"fmt"
)

// Reasons an AuthError can carry. Challenge pages cannot be resolved
// programmatically; the operator has to clear them in a real browser.
const (
	ReasonBadCredentials = "bad-credentials"
	ReasonChallenge      = "challenge"
	ReasonExpired        = "expired"
	ReasonNetwork        = "network"
)

// AuthError means the session could not be established or refreshed. It is
// fatal to all processing until resolved externally.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("linkedin auth failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("linkedin auth failed (%s)", e.Reason)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ErrAuthWall is returned when a fetch lands on the login/auth wall, meaning
// the session silently expired between verifications.
var ErrAuthWall = errors.New("linkedin: redirected to auth wall")

// ErrProfileParse is returned when the profile page loads but the markup
// carries none of the required fields.
var ErrProfileParse = errors.New("linkedin: profile markup missing required fields")
