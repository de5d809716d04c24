package route

import (
	"context"
	"errors"
)

var (
	ErrLocationNotFound = errors.New("location not found")
	ErrNoRouteFound     = errors.New("no route found")
	ErrAuthFailure      = errors.New("authentication failed")
	ErrNetworkFailure   = errors.New("network failure")
	ErrMissingEndpoints = errors.New("origin and destination are required")
)

// UserMessage turns any error from the route pipeline into the single
// message shown to the user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingEndpoints):
		return "Please enter both origin and destination."
	case errors.Is(err, ErrLocationNotFound):
		return "Could not find one of the locations. Please check the address and try again."
	case errors.Is(err, ErrNoRouteFound):
		return "No route found between these locations."
	case errors.Is(err, ErrAuthFailure):
		return "Authentication failed. Please try again."
	case errors.Is(err, ErrNetworkFailure), errors.Is(err, context.DeadlineExceeded):
		return "Network error while contacting the map services. Please try again."
	default:
		return "Failed to get directions. Please try again."
	}
}
