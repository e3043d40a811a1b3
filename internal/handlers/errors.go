package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"wordclash/internal/game"
	"wordclash/internal/importer"
	"wordclash/internal/repository"
	"wordclash/internal/service"
	"wordclash/internal/validation"
)

type errorResponse struct {
	Error  string                       `json:"error"`
	Fields []validation.ValidationError `json:"fields,omitempty"`
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		entry := log.WithError(err).WithField("status", status)
		if status >= http.StatusInternalServerError {
			entry.Error(logMsg)
		} else {
			entry.Debug(logMsg)
		}
	}

	body := errorResponse{Error: userMsg}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		body.Fields = verrs
	}
	respondJSON(w, status, body)
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("Failed to encode response")
	}
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	var verrs validation.Errors
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, service.ErrGameNotFound):
		return http.StatusNotFound
	case errors.As(err, &verrs),
		errors.Is(err, game.ErrInvalidConfig),
		errors.Is(err, game.ErrUnknownItem),
		errors.Is(err, service.ErrNotAFolder),
		errors.Is(err, service.ErrNotALeaf),
		errors.Is(err, importer.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrReadOnlyTheme):
		return http.StatusForbidden
	case errors.Is(err, game.ErrGameFinished):
		return http.StatusConflict
	case errors.Is(err, game.ErrEmptyPool):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// respondWithServiceError answers with the status matching err. Server
// errors hide their detail behind logMsg.
func respondWithServiceError(w http.ResponseWriter, logMsg string, err error) {
	status := statusFor(err)
	userMsg := err.Error()
	if status == http.StatusInternalServerError {
		userMsg = "Internal server error"
	}
	respondWithError(w, status, userMsg, logMsg, err)
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
