package handler

import (
	"encoding/json"
	"net/http"

	"contractpilot/internal/catalog"
	"contractpilot/internal/model"
	"contractpilot/internal/pathway"
	"contractpilot/internal/service"
)

// CatalogHandler serves the question catalog and stateless scoring
type CatalogHandler struct {
	svc *service.AssessmentService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(svc *service.AssessmentService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// ScoreRequest is a raw requirements payload plus answers keyed by question
type ScoreRequest struct {
	Requirements map[string]any          `json:"requirements"`
	Answers      map[string]model.Answer `json:"answers"`
}

// Catalog handles GET /v1/catalog. With ?pathway= or ?mode= it returns
// the question set that mode would ask.
func (h *CatalogHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := model.Mode(q.Get("mode"))
	if p := q.Get("pathway"); p != "" {
		mode = pathway.ResolveMode(p)
	}

	if mode == "" {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"questions": catalog.All(),
		})
		return
	}
	if !mode.Valid() {
		writeError(w, http.StatusBadRequest, "unknown mode")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"mode":      mode,
		"questions": catalog.BuildQuestionSet(mode, model.Requirements{}),
	})
}

// Score handles POST /v1/score
func (h *CatalogHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Score(req.Requirements, model.Answers(req.Answers)))
}
