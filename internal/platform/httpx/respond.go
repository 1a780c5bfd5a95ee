// Package httpx provides HTTP response utilities following RFC7807 problem details.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Stable machine-readable error codes surfaced to API clients.
const (
	CodeAuthentication = "AUTHENTICATION_ERROR"
	CodeAuthorization  = "AUTHORIZATION_ERROR"
	CodeValidation     = "VALIDATION_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeDuplicate      = "DUPLICATE"
	CodeInternal       = "INTERNAL_ERROR"
)

// ProblemDetail represents RFC7807 problem details with a stable code.
type ProblemDetail struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Code     string `json:"code,omitempty"`
	Required string `json:"required,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Problem sends an RFC7807 problem details response.
func Problem(w http.ResponseWriter, status int, title, detail string) {
	JSON(w, status, ProblemDetail{
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

// ProblemCode sends a problem response carrying a machine-readable code.
func ProblemCode(w http.ResponseWriter, status int, code, title, detail string) {
	JSON(w, status, ProblemDetail{
		Title:  title,
		Status: status,
		Detail: detail,
		Code:   code,
	})
}

// AuthenticationRequired signals that no valid principal could be established.
func AuthenticationRequired(w http.ResponseWriter, detail string) {
	ProblemCode(w, http.StatusUnauthorized, CodeAuthentication, "Authentication Required", detail)
}

// AuthorizationDenied signals that a valid principal lacks a required
// permission or role. The requirement is echoed for diagnostics; nothing
// about other users or resources is disclosed.
func AuthorizationDenied(w http.ResponseWriter, required string) {
	JSON(w, http.StatusForbidden, ProblemDetail{
		Title:    "Forbidden",
		Status:   http.StatusForbidden,
		Detail:   "insufficient permissions",
		Code:     CodeAuthorization,
		Required: required,
	})
}

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
