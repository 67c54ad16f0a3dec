package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/maintkeeper/internal/common"
)

// PostgreSQL unique_violation, as reported by PostgREST in the "code" field.
const uniqueViolationCode = "23505"

// APIError is a non-2xx response from the remote store.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details string
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "remote error %d", e.Status)
	if e.Code != "" {
		fmt.Fprintf(&b, " (%s)", e.Code)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

func (e *APIError) Unwrap() []error {
	errs := []error{common.ErrRemoteRequestFailed}
	switch {
	case e.Status == http.StatusConflict || e.Code == uniqueViolationCode:
		errs = append(errs, common.ErrConflict)
	case e.Status == http.StatusUnauthorized:
		errs = append(errs, common.ErrAuthenticationRequired)
	case e.Status == http.StatusNotFound:
		errs = append(errs, common.ErrNotFound)
	}
	return errs
}

// Mentions reports whether s occurs in the message or details of the error,
// e.g. the name of a violated constraint.
func (e *APIError) Mentions(s string) bool {
	return strings.Contains(e.Message, s) || strings.Contains(e.Details, s)
}

// AsAPIError unwraps err to an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

// errorBody covers the error shapes of the rest, auth and storage endpoints.
type errorBody struct {
	Code             json.RawMessage `json:"code"`
	Message          string          `json:"message"`
	Details          string          `json:"details"`
	Hint             string          `json:"hint"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
	Msg              string          `json:"msg"`
	ErrorCode        string          `json:"error_code"`
}

func parseAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		e.Message = strings.TrimSpace(string(body))
		if e.Message == "" {
			e.Message = http.StatusText(status)
		}
		return e
	}

	e.Code = rawCode(eb.Code)
	if e.Code == "" {
		e.Code = eb.ErrorCode
	}
	e.Details = eb.Details
	for _, m := range []string{eb.Message, eb.ErrorDescription, eb.Msg, eb.Error} {
		if m != "" {
			e.Message = m
			break
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

// rawCode accepts the code as either a JSON string or a number.
func rawCode(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// mapError converts a transport failure into common.ErrUnavailable.
func (c *RESTClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", common.ErrUnavailable, err)
}
