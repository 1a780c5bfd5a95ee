package httpx

import (
	"errors"
	"net/http"

	"github.com/reachloop/reachloop/internal/shared"
)

// RespondError maps domain errors to problem responses. Anything unmapped is
// an internal error with no detail leaked to the client.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		ProblemCode(w, http.StatusNotFound, CodeNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrDuplicate):
		ProblemCode(w, http.StatusConflict, CodeDuplicate, "Duplicate", err.Error())
	case errors.Is(err, shared.ErrInvalidCredentials):
		AuthenticationRequired(w, err.Error())
	default:
		ProblemCode(w, http.StatusInternalServerError, CodeInternal, "Internal Error", "")
	}
}
