package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnknownUser is returned when the token cannot identify its own account.
// Callers fall back to asking the user for a username.
var ErrUnknownUser = errors.New("could not determine username from token")

// StatusError is a non-2xx response from the usage API. It keeps the raw
// body so the error dialog can reveal full diagnostics on demand.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GitHub API error: %d - %s", e.StatusCode, e.Body)
}

// Guidance returns the corrective text shown to the user for this failure
// class.
func (e *StatusError) Guidance() string {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return "Token rejected. It may have expired - reconfigure with a new Personal Access Token."
	case e.StatusCode == http.StatusForbidden:
		return "Access denied. Your token needs the Account > Plan (Read) permission."
	case e.StatusCode == http.StatusNotFound:
		return "Usage not found. The account may not have Copilot Pro on a personal plan, or Copilot is managed through an organization."
	case e.StatusCode == http.StatusTooManyRequests:
		return "Rate limited by GitHub. Wait a moment and refresh again."
	case e.StatusCode >= 500:
		return "GitHub is having trouble right now. Try again later."
	default:
		return fmt.Sprintf("GitHub API request failed with status %d.", e.StatusCode)
	}
}

// UserMessage returns the short dismissible message for an arbitrary fetch
// error: status guidance when available, a transport hint otherwise.
func UserMessage(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Guidance()
	}
	if errors.Is(err, ErrUnknownUser) {
		return "Could not determine username from token. Please reconfigure with a valid token."
	}
	return "Could not reach GitHub. Check your network connection and try again."
}
