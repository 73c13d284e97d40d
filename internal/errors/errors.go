package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for the read-path taxonomy. Handlers decide whether these
// surface as a rejection or degrade to an empty result.
var (
	NotFound            = errors.New("Not found")
	NotAuthorized       = errors.New("Not authorized")
	InvalidCursor       = errors.New("Invalid cursor")
	UpstreamUnavailable = errors.New("Upstream unavailable")
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

// Check if err is instance of T for custom error types
func Is[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	return errors.Is(err, NotFound)
}

// MalformedMessageError reports messages that could not be grouped.
// The rest of the page groups normally; the ids are carried so callers
// can report the condition instead of silently coercing timestamps.
type MalformedMessageError struct {
	Ids []int64
}

func (e *MalformedMessageError) Error() string {
	parts := make([]string, len(e.Ids))
	for i, id := range e.Ids {
		parts[i] = fmt.Sprint(id)
	}
	return "Malformed message: " + strings.Join(parts, ", ")
}

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Validation error: %s", e.Message)
}
