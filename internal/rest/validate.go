package rest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// Validate classifies a single response. A 200 body is decoded into T; a 429
// yields *BannedError; any other status yields *StatusError.
func Validate[T any](status int, body []byte, header http.Header) (T, error) {
	var out T
	switch status {
	case http.StatusOK:
		if err := json.Unmarshal(body, &out); err != nil {
			return out, &ParseError{Message: err.Error()}
		}
		return out, nil
	case http.StatusTooManyRequests:
		return out, bannedFromHeader(header)
	default:
		return out, &StatusError{StatusCode: status}
	}
}

func bannedFromHeader(header http.Header) *BannedError {
	v := strings.TrimSpace(header.Get("Retry-After"))
	if v == "" {
		return &BannedError{}
	}
	n, err := strconv.ParseUint(v, 10, 31)
	if err != nil {
		return &BannedError{}
	}
	return &BannedError{Seconds: int(n), Known: true}
}

// Transform adapts Validate into a TransformFunc that wraps the decoded value
// in the method's Response variant.
func Transform[T any](wrap func(T) Response) TransformFunc {
	return func(status int, body []byte, header http.Header) (Response, error) {
		v, err := Validate[T](status, body, header)
		if err != nil {
			return nil, err
		}
		return wrap(v), nil
	}
}
