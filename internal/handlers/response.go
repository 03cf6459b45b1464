package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/AnshRaj112/serenify-journal/internal/middleware"
	"github.com/AnshRaj112/serenify-journal/internal/services"
	"github.com/AnshRaj112/serenify-journal/pkg/utils"
)

// storeTimeout bounds each database round trip made on behalf of a request.
const storeTimeout = 5 * time.Second

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Success: false, Message: message})
}

// validationMessage returns the user-facing message of a validation failure.
func validationMessage(err error) (string, bool) {
	var ve *utils.ValidationError
	if errors.As(err, &ve) {
		return ve.Message, true
	}
	return "", false
}

// principal fetches the caller set by middleware.RequireAuth and answers 401
// when the route was mounted without it.
func principal(w http.ResponseWriter, r *http.Request) (services.Principal, bool) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
	}
	return p, ok
}
