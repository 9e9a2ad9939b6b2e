package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"roulette-lab/internal/domain"
	"roulette-lab/internal/storage"
	"roulette-lab/internal/strategy"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Status  int          `json:"status"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var be *bindError
	switch {
	case errors.As(err, &be), errors.Is(err, domain.ErrValidation), errors.Is(err, storage.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, strategy.ErrUnknownStrategy), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrDuplicateKey):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{Error: errorDetail{Status: status, Message: err.Error()}}

	var be *bindError
	if errors.As(err, &be) {
		body.Error.Message = "invalid request"
		body.Error.Fields = be.Fields
	}
	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		body.Error.Message = "internal error"
	}

	writeJSON(w, status, body)
}
