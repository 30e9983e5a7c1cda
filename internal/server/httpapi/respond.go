package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/keygate/internal/common"
)

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	writeJSON(w, status, errorResponse{Detail: detail})
}

// details overrides the default message of a sentinel for one endpoint.
type details map[error]string

// writeServiceError maps a service error to its status and a client-safe
// message. Anything unrecognised is a 500 with a generic message.
func writeServiceError(w http.ResponseWriter, err error, overrides details) {
	status, detail := classify(err)
	for sentinel, msg := range overrides {
		if errors.Is(err, sentinel) {
			detail = msg
			break
		}
	}
	writeError(w, status, detail)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid username or password"
	case errors.Is(err, common.ErrUnauthenticated):
		return http.StatusUnauthorized, "Could not validate credentials"
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, "Admin privileges required"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, common.ErrAlreadyExists):
		return http.StatusBadRequest, "Username already exists"
	case errors.Is(err, common.ErrAlreadyInState):
		return http.StatusBadRequest, "User is already in the requested state"
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrIndexOutOfRange):
		return http.StatusNotFound, "Index out of range"
	case errors.Is(err, common.ErrArrayEmpty):
		return http.StatusBadRequest, "Array is empty"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// extractBearerToken returns the token of an "Authorization: Bearer <t>"
// header value. The scheme is matched case-insensitively.
func extractBearerToken(authHeader string) (string, error) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], common.TokenTypeBearer) || strings.TrimSpace(parts[1]) == "" {
		return "", fmt.Errorf("invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}
