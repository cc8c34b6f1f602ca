package service

import "errors"

// Planner error taxonomy. Only ErrUnresolvable surfaces to callers as a
// failure; the rest are absorbed internally and degrade confidence
// instead of aborting the plan.
var (
	// ErrResolutionFailed means an endpoint could not be turned into a
	// location. Hard stop for that endpoint.
	ErrResolutionFailed = errors.New("location resolution failed")

	// ErrProviderUnavailable means the geocode/directions call failed or
	// timed out. Triggers the next fallback tier.
	ErrProviderUnavailable = errors.New("external provider unavailable")

	// ErrNoPathFound means graph search exhausted with no result. Not
	// fatal; it is the signal to try the external provider.
	ErrNoPathFound = errors.New("no path found in route graph")

	// ErrUnresolvable is terminal: no plan could be produced after every
	// fallback tier.
	ErrUnresolvable = errors.New("unresolvable planning request")

	// ErrInvalidFeedback covers validation failures on feedback
	// submission, returned synchronously to the submitter.
	ErrInvalidFeedback = errors.New("invalid fare feedback")
)
