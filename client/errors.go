package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// APIError is a non 2xx response of the API.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string // validation errors, by JSON field name
}

func (err *APIError) Error() string {
	if err.Message != "" {
		return fmt.Sprintf("%d: %s", err.StatusCode, err.Message)
	}
	if len(err.Fields) > 0 {
		flds := make([]string, 0, len(err.Fields))
		for f, msg := range err.Fields {
			flds = append(flds, f+": "+msg)
		}
		sort.Strings(flds)
		return fmt.Sprintf("%d: %s", err.StatusCode, strings.Join(flds, ", "))
	}
	return fmt.Sprintf("%d: %s", err.StatusCode, http.StatusText(err.StatusCode))
}

// parseAPIError reads the `{"error": "..."}` or field map body of a failed response.
func parseAPIError(code int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: code}
	var m map[string]string
	if err := json.Unmarshal(body, &m); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}
	if msg, ok := m["error"]; ok && len(m) == 1 {
		apiErr.Message = msg
		return apiErr
	}
	apiErr.Fields = m
	return apiErr
}

func hasStatus(err error, code int) bool {
	apiErr, ok := errors.Cause(err).(*APIError)
	return ok && apiErr.StatusCode == code
}

func IsNotFound(err error) bool     { return hasStatus(err, http.StatusNotFound) }
func IsConflict(err error) bool     { return hasStatus(err, http.StatusConflict) }
func IsUnauthorized(err error) bool { return hasStatus(err, http.StatusUnauthorized) }
func IsForbidden(err error) bool    { return hasStatus(err, http.StatusForbidden) }

// IsValidation reports whether err is a 400 response, with or without field errors.
func IsValidation(err error) bool { return hasStatus(err, http.StatusBadRequest) }
