package rest

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/popularity/internal/core/ports"
	"github.com/ewilliams-labs/popularity/internal/core/services"
)

// Handler manages the HTTP interface for our application.
type Handler struct {
	svc      *services.Analyzer   // Dependency on the Core Service
	sessions ports.SessionManager // OAuth login flow
	logger   *zap.Logger
	router   *http.ServeMux // Standard library router
}

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(svc *services.Analyzer, sessions ports.SessionManager, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		svc:      svc,
		sessions: sessions,
		logger:   logger,
		router:   http.NewServeMux(),
	}

	// Register Routes
	h.routes()

	return h
}

// ServeHTTP satisfies the http.Handler interface.
// It acts as a proxy, passing the request to our internal router.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// routes defines the mapping between URLs and methods.
func (h *Handler) routes() {
	// Health Check
	h.router.HandleFunc("GET /health", h.HealthCheck)
	// OAuth
	h.router.HandleFunc("GET /auth/status", h.AuthStatus)
	h.router.HandleFunc("GET /auth/login", h.Login)
	h.router.HandleFunc("GET /callback", h.Callback)
	h.router.HandleFunc("POST /auth/logout", h.Logout)
	// Analysis
	h.router.HandleFunc("POST /analyze", h.Analyze)
	h.router.HandleFunc("GET /runs", h.ListRuns)
	h.router.HandleFunc("GET /runs/{id}", h.GetRun)
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
