package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"contractpilot/internal/model"
	"contractpilot/internal/service"
	"contractpilot/internal/transport/rest/middleware"
)

// AssessmentHandler handles assessment endpoints
type AssessmentHandler struct {
	svc *service.AssessmentService
}

// NewAssessmentHandler creates a new assessment handler
func NewAssessmentHandler(svc *service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{svc: svc}
}

// NavigateRequest moves the interview cursor
type NavigateRequest struct {
	Action string `json:"action"` // back | forward | goto
	Index  int    `json:"index,omitempty"`
}

// Begin handles POST /v1/assessments
func (h *AssessmentHandler) Begin(w http.ResponseWriter, r *http.Request) {
	var req service.BeginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.Begin(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// Get handles GET /v1/assessments/{id}
func (h *AssessmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Current handles GET /v1/assessments/{id}/question
func (h *AssessmentHandler) Current(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Current(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Answer handles POST /v1/assessments/{id}/answers
func (h *AssessmentHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var answer model.Answer
	if err := json.NewDecoder(r.Body).Decode(&answer); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.respond(w)(h.svc.Answer(r.Context(), mux.Vars(r)["id"], answer))
}

// EditAnswer handles PUT /v1/assessments/{id}/answers/{key}
func (h *AssessmentHandler) EditAnswer(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var answer model.Answer
	if err := json.NewDecoder(r.Body).Decode(&answer); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.respond(w)(h.svc.EditAnswer(r.Context(), vars["id"], vars["key"], answer))
}

// Navigate handles POST /v1/assessments/{id}/navigate
func (h *AssessmentHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch req.Action {
	case "back":
		h.respond(w)(h.svc.Back(r.Context(), id))
	case "forward":
		h.respond(w)(h.svc.Forward(r.Context(), id))
	case "goto":
		h.respond(w)(h.svc.GoTo(r.Context(), id, req.Index))
	default:
		writeError(w, http.StatusBadRequest, "action must be back, forward or goto")
	}
}

// ApplyDefaults handles POST /v1/assessments/{id}/defaults
func (h *AssessmentHandler) ApplyDefaults(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.svc.ApplyDefaults(r.Context(), mux.Vars(r)["id"]))
}

// SwitchToInterview handles POST /v1/assessments/{id}/interview
func (h *AssessmentHandler) SwitchToInterview(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.svc.SwitchToInterview(r.Context(), mux.Vars(r)["id"]))
}

// Confirm handles POST /v1/assessments/{id}/confirm
func (h *AssessmentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.svc.Confirm(r.Context(), mux.Vars(r)["id"]))
}

// Restart handles POST /v1/assessments/{id}/restart
func (h *AssessmentHandler) Restart(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.svc.Restart(r.Context(), mux.Vars(r)["id"]))
}

// Progress handles GET /v1/assessments/{id}/progress
func (h *AssessmentHandler) Progress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.svc.Progress(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// Artifact handles GET /v1/assessments/{id}/artifact
func (h *AssessmentHandler) Artifact(w http.ResponseWriter, r *http.Request) {
	artifact, err := h.svc.Artifact(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, artifact)
}

// ListArtifacts handles GET /v1/negotiations/{negotiationId}/assessments.
// The party token must belong to the same negotiation.
func (h *AssessmentHandler) ListArtifacts(w http.ResponseWriter, r *http.Request) {
	negotiationID := mux.Vars(r)["negotiationId"]
	claims := middleware.GetClaims(r.Context())
	if claims == nil || claims.NegotiationID != negotiationID {
		writeError(w, http.StatusForbidden, "token not valid for this negotiation")
		return
	}

	artifacts, err := h.svc.ListArtifacts(r.Context(), negotiationID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"assessments": artifacts,
	})
}

func (h *AssessmentHandler) respond(w http.ResponseWriter) func(*model.AssessmentSession, error) {
	return func(session *model.AssessmentSession, err error) {
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, session)
	}
}
