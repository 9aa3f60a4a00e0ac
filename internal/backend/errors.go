package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mcoot/gamerhub/internal/model"
)

// duplicateMarkers are fragments the API uses when a watchlist entry already exists
var duplicateMarkers = []string{
	"already in",
	"ya está en la lista",
	"ya se encuentra",
}

// Error is a failed API call
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Message)
}

// Unwrap maps the HTTP status to the matching model sentinel
func (e *Error) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return model.ErrUnauthorized
	case e.Status == http.StatusForbidden:
		return model.ErrForbidden
	case e.Status == http.StatusNotFound:
		return model.ErrNotFound
	case e.isDuplicate():
		return model.ErrAlreadyInWatchlist
	case e.Status == http.StatusConflict:
		return model.ErrConflict
	case e.Status >= 500:
		return model.ErrUnavailable
	}
	return nil
}

func (e *Error) isDuplicate() bool {
	if e.Status != http.StatusConflict && e.Status != http.StatusBadRequest {
		return false
	}
	msg := strings.ToLower(e.Message)
	for _, marker := range duplicateMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func newError(status int, body []byte) *Error {
	var errResp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := ""
	if json.Unmarshal(body, &errResp) == nil {
		msg = errResp.Error
		if msg == "" {
			msg = errResp.Message
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &Error{Status: status, Message: msg}
}

// Message returns a human-readable message for err: the API's own message when
// err is an API error, otherwise the error text
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
