package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"contractpilot/internal/interview"
	"contractpilot/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeServiceError maps service and interview errors to HTTP statuses
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrRequirementsUnavailable):
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"error":     err.Error(),
			"retryable": true,
		})
	case errors.Is(err, service.ErrNegotiationRequired),
		errors.Is(err, interview.ErrIndexOutOfRange):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAssessmentNotFound),
		errors.Is(err, interview.ErrUnknownQuestion):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, interview.ErrInvalidAnswer):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, interview.ErrSessionComplete),
		errors.Is(err, interview.ErrInReview),
		errors.Is(err, interview.ErrNotReviewing),
		errors.Is(err, interview.ErrNotComplete),
		errors.Is(err, interview.ErrIndexNotReached),
		errors.Is(err, interview.ErrNoActiveQuestion):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
