package advice

import "errors"

// Common errors returned by advisors.
var (
	// ErrAdviceFailed is returned when advice generation fails for any general reason.
	ErrAdviceFailed = errors.New("failed to generate legal advice")

	// ErrInvalidResponse is returned when the model response is empty or malformed.
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the model blocks the content via safety filters.
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry.
	ErrTransientFailure = errors.New("transient error during advice generation")

	// ErrInvalidConfig is returned when the advisor configuration is invalid.
	ErrInvalidConfig = errors.New("invalid advisor configuration")
)
