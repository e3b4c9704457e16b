package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound is returned by lookups that find no matching record.
var ErrNotFound = errors.New("record not found")

// RemoteError is a non-2xx response. Detail is the backend's body.detail when present.
type RemoteError struct {
	Method string
	Path   string
	Status int
	Detail string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Detail)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *RemoteError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

func newRemoteError(method, path string, status int, body []byte) *RemoteError {
	return &RemoteError{Method: method, Path: path, Status: status, Detail: detailOf(status, body)}
}

// detailOf extracts body.detail. Validation errors carry a list of {loc, msg}; those are flattened.
func detailOf(status int, body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return http.StatusText(status)
	}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return trimmed
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil && len(items) > 0 {
		parts := make([]string, 0, len(items))
		for _, it := range items {
			loc := make([]string, 0, len(it.Loc))
			for _, l := range it.Loc {
				loc = append(loc, fmt.Sprint(l))
			}
			parts = append(parts, strings.Join(loc, ".")+": "+it.Msg)
		}
		return strings.Join(parts, "; ")
	}
	return string(envelope.Detail)
}

// AsRemote unwraps a *RemoteError.
func AsRemote(err error) (*RemoteError, bool) {
	var re *RemoteError
	ok := errors.As(err, &re)
	return re, ok
}
