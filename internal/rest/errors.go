package rest

import (
	"errors"
	"fmt"
)

// Declaration and compilation errors. Match with errors.Is; use errors.As on
// *ParamError or *BuildError to recover the offending key or field.
var (
	ErrMissingRequiredParam = errors.New("required param is not set")
	ErrUnknownParam         = errors.New("param was not found")
	ErrAlreadySet           = errors.New("param already set")
	ErrDuplicateParam       = errors.New("duplicate param")
	ErrMissingRouteParam    = errors.New("required route param is not set")
	ErrMissingParam         = errors.New("required query param is not set")
	ErrMalformedURL         = errors.New("malformed url")
	ErrIncompleteMethod     = errors.New("incomplete method declaration")
)

// ParamError reports a parameter problem for a specific key.
type ParamError struct {
	Kind error
	Key  string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %q", e.Kind, e.Key)
}

func (e *ParamError) Unwrap() error {
	return e.Kind
}

func paramErr(kind error, key string) error {
	return &ParamError{Kind: kind, Key: key}
}

// BuildError reports a missing mandatory Builder field.
type BuildError struct {
	Field string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("%s: %s was not set", ErrIncompleteMethod, e.Field)
}

func (e *BuildError) Unwrap() error {
	return ErrIncompleteMethod
}

// ParseError is returned when a 200 response body cannot be decoded.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return "fail to parse response: " + e.Message
}

// BannedError is returned for a 429 response. Known is false when the server
// did not report a usable Retry-After value.
type BannedError struct {
	Seconds int
	Known   bool
}

func (e *BannedError) Error() string {
	if !e.Known {
		return "banned for unknown time"
	}
	return fmt.Sprintf("banned for %d seconds", e.Seconds)
}

// StatusError is returned for any status other than 200 and 429.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected response code %d", e.StatusCode)
}
