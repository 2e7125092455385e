package analysis

import "errors"

// ErrEmptyInput means sanitization left nothing to analyze. The turn is
// rejected rather than passed on empty.
var ErrEmptyInput = errors.New("analysis: input empty after sanitization")

// ErrHarmfulInput means the moderation gate rejected the turn.
var ErrHarmfulInput = errors.New("analysis: input rejected by moderation")

// IsInputRejected reports whether err is a client-visible input rejection.
func IsInputRejected(err error) bool {
	return errors.Is(err, ErrEmptyInput) || errors.Is(err, ErrHarmfulInput)
}
