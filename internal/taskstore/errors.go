package taskstore

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"taskdesk/internal/models"
)

// RemoteError is returned when the server answered with a non-2xx status.
type RemoteError struct {
	Op         string
	StatusCode int
	// Message is the server's "error" field, or the status text when absent
	Message string
	// Fields holds per-field validation messages, if any
	Fields map[string]string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.StatusCode)
}

// NotFound reports whether the server answered 404.
func (e *RemoteError) NotFound() bool { return e.StatusCode == http.StatusNotFound }

// TransportError is returned when no response was obtained.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.StatusCode == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.NotFound()
}

// Message renders err for display to a user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var (
		verr *models.ValidationError
		re   *RemoteError
		te   *TransportError
	)
	switch {
	case errors.As(err, &verr):
		return joinFields("Please fix", verr.Fields)
	case errors.As(err, &re):
		if len(re.Fields) > 0 {
			return joinFields(re.Message, re.Fields)
		}
		return re.Message
	case errors.As(err, &te):
		return "Could not reach the server: " + te.Err.Error()
	default:
		return err.Error()
	}
}

func joinFields(prefix string, fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fields[k])
	}
	return prefix + ": " + strings.Join(parts, "; ")
}
