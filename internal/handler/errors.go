package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pkordes/vacation-catalog/backend/internal/domain"
)

// Client-facing messages.
const (
	msgSuccess         = "Success"
	msgValidation      = "Validation failed."
	msgDuplicate       = "A vacation with the same destination and date already exists."
	msgNotFound        = "Vacation not found."
	msgNoMatch         = "No documents match filter."
	msgAlreadyFollowed = "You are already following this vacation."
	msgNotFollowed     = "You are not following this vacation."
	msgInvalidID       = "Invalid id."
	msgInvalidBody     = "Invalid request body."
	msgTooLarge        = "Request body too large"
	msgInternal        = "Something went wrong!"
)

// envelope is the JSON body of every non-report response:
// {message, data?} on success and {message, error?} on failure.
type envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   any    `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps a service error onto a status code and envelope.
// notFound is the message for domain.ErrNotFound because only the handler
// knows which operation was looking the vacation up.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, envelope{Message: msgValidation, Error: verr.Fields})
	case errors.Is(err, domain.ErrAssetRejected):
		writeJSON(w, http.StatusBadRequest, envelope{Message: msgValidation, Error: []domain.FieldError{
			{Field: "image", Message: "Only JPEG, webp or PNG files are allowed"},
		}})
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, envelope{Message: msgDuplicate})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, envelope{Message: notFound})
	case errors.Is(err, domain.ErrAlreadyMember):
		writeJSON(w, http.StatusBadRequest, envelope{Message: msgAlreadyFollowed})
	case errors.Is(err, domain.ErrNotMember):
		writeJSON(w, http.StatusBadRequest, envelope{Message: msgNotFollowed})
	default:
		// Persistence, Unavailable and anything unexpected.
		s.log.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Message: msgInternal})
	}
}
