package physics

import (
	"errors"
	"fmt"
)

// Domain errors for body construction and system access.
var (
	// ErrInvalidMass indicates a body mass that is not strictly positive.
	ErrInvalidMass = errors.New("physics: mass must be positive")

	// ErrInvalidAsset indicates an asset that is not a single
	// whitespace-free token.
	ErrInvalidAsset = errors.New("physics: asset must be one non-empty token")

	// ErrMalformedInput indicates a structural failure while decoding a system.
	ErrMalformedInput = errors.New("physics: malformed input")

	// ErrIndexOutOfRange indicates a body index outside [0, Len()).
	ErrIndexOutOfRange = errors.New("physics: body index out of range")
)

// ParseError wraps a decoding failure with its location in the stream.
// Body is -1 for header fields.
type ParseError struct {
	Body    int
	Field   string
	Token   string
	Wrapped error
}

func (e *ParseError) Error() string {
	loc := "header"
	if e.Body >= 0 {
		loc = fmt.Sprintf("body %d", e.Body)
	}
	if e.Token != "" {
		return fmt.Sprintf("%s: %s %q: %v", loc, e.Field, e.Token, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s: %v", loc, e.Field, e.Wrapped)
}

func (e *ParseError) Unwrap() error {
	return e.Wrapped
}
