package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/isdelr/devlink/internal/models"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a status code and logs it. Unexpected errors are
// reported to the client without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	logger := hlog.FromRequest(r)

	var (
		status int
		body   string
		verr   *models.ValidationError
	)
	switch {
	case errors.As(err, &verr):
		status, body = http.StatusBadRequest, verr.Msg
	case errors.Is(err, models.ErrValidation):
		status, body = http.StatusBadRequest, err.Error()
	case errors.Is(err, models.ErrInvalidCredentials):
		status, body = http.StatusBadRequest, "Invalid credentials"
	case errors.Is(err, models.ErrForbidden):
		status, body = http.StatusForbidden, "Not authorized to access this record"
	case errors.Is(err, models.ErrNotFound):
		status, body = http.StatusNotFound, "Not found"
	default:
		logger.Error().Err(err).Msg(msg)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}

	logger.Warn().Err(err).Int("status", status).Msg(msg)
	writeJSON(w, status, ErrorResponse{Error: body})
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return models.NewValidationError("Request body is required")
		}
		return models.NewValidationError(fmt.Sprintf("Invalid request body: %v", err))
	}
	if dec.More() {
		return models.NewValidationError("Invalid request body: multiple JSON values")
	}
	return nil
}
