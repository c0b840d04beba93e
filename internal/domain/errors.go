package domain

import "errors"

var (
	// ErrFetchExhausted is returned when every fetch attempt for a URL failed.
	ErrFetchExhausted = errors.New("fetch attempts exhausted")

	// ErrDecodeFailure is returned for a malformed API payload.
	ErrDecodeFailure = errors.New("malformed payload")

	// ErrMissingPrerequisite is returned when an earlier stage's artifact is absent.
	ErrMissingPrerequisite = errors.New("missing prerequisite artifact")

	// ErrUnresolvableCompany is returned when a company page carries no id marker.
	ErrUnresolvableCompany = errors.New("unresolvable company")
)
