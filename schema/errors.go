package schema

import "errors"

var (
	// ErrMissingField indicates a required template or request field was empty.
	ErrMissingField = errors.New("missing required field")

	// ErrGenerationFailed indicates the final answer call did not produce text.
	ErrGenerationFailed = errors.New("generation failed")
)
