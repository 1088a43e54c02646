package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"contractpilot/internal/service"
	"contractpilot/internal/transport/rest/handler"
	"contractpilot/internal/transport/rest/middleware"
	"contractpilot/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AssessmentService *service.AssessmentService
	AuthService       *service.AuthService
	WSHub             *ws.Hub
	Metrics           http.Handler // optional
	AllowedOrigins    []string
	Logger            zerolog.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	assessmentHandler := handler.NewAssessmentHandler(c.AssessmentService)
	catalogHandler := handler.NewCatalogHandler(c.AssessmentService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.AllowedOrigins, c.Logger)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(middleware.CORS(c.AllowedOrigins))

	// WebSocket route (token in query param)
	r.HandleFunc("/ws/assessments/{id}", wsHandler.AssessmentWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	if c.Metrics != nil {
		r.Handle("/metrics", c.Metrics).Methods("GET")
	}

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()
	v1.Use(middleware.Logging(c.Logger))

	// Public routes
	v1.HandleFunc("/assessments", assessmentHandler.Begin).Methods("POST", "OPTIONS")
	v1.HandleFunc("/catalog", catalogHandler.Catalog).Methods("GET", "OPTIONS")
	v1.HandleFunc("/score", catalogHandler.Score).Methods("POST", "OPTIONS")

	// Party routes (require a token issued for {id})
	party := v1.NewRoute().Subrouter()
	party.Use(authMW.RequireParty)

	party.HandleFunc("/assessments/{id}", assessmentHandler.Get).Methods("GET", "OPTIONS")
	party.HandleFunc("/assessments/{id}/question", assessmentHandler.Current).Methods("GET", "OPTIONS")
	party.HandleFunc("/assessments/{id}/answers", assessmentHandler.Answer).Methods("POST", "OPTIONS")
	party.HandleFunc("/assessments/{id}/answers/{key}", assessmentHandler.EditAnswer).Methods("PUT", "OPTIONS")
	party.HandleFunc("/assessments/{id}/navigate", assessmentHandler.Navigate).Methods("POST", "OPTIONS")
	party.HandleFunc("/assessments/{id}/defaults", assessmentHandler.ApplyDefaults).Methods("POST", "OPTIONS")
	party.HandleFunc("/assessments/{id}/interview", assessmentHandler.SwitchToInterview).Methods("POST", "OPTIONS")
	party.HandleFunc("/assessments/{id}/confirm", assessmentHandler.Confirm).Methods("POST", "OPTIONS")
	party.HandleFunc("/assessments/{id}/restart", assessmentHandler.Restart).Methods("POST", "OPTIONS")
	party.HandleFunc("/assessments/{id}/progress", assessmentHandler.Progress).Methods("GET", "OPTIONS")
	party.HandleFunc("/assessments/{id}/artifact", assessmentHandler.Artifact).Methods("GET", "OPTIONS")
	party.HandleFunc("/negotiations/{negotiationId}/assessments", assessmentHandler.ListArtifacts).Methods("GET", "OPTIONS")

	return r
}
