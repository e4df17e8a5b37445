package rest

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/ewilliams-labs/popularity/internal/core/domain"
	"github.com/ewilliams-labs/popularity/internal/core/mood"
	"github.com/ewilliams-labs/popularity/internal/core/services"
)

// analyzeRequest defines what the client sends us
type analyzeRequest struct {
	Artist    string `json:"artist"`
	Limit     *int   `json:"limit,omitempty"`
	Train     bool   `json:"train"`
	BatchSize int    `json:"batch_size,omitempty"`
}

type analyzeResponse struct {
	RunID       string                   `json:"run_id"`
	Artist      string                   `json:"artist"`
	Rows        []domain.TrackFeatureRow `json:"rows"`
	CleanedRows []domain.TrackFeatureRow `json:"cleaned_rows"`
	Ranges      map[string]domain.Range  `json:"ranges"`
	Metrics     *domain.Metrics          `json:"metrics,omitempty"`
	MoodGroups  *mood.Result             `json:"mood_groups,omitempty"`
}

type runResponse struct {
	ID        string                   `json:"id"`
	Artist    string                   `json:"artist"`
	CreatedAt time.Time                `json:"created_at"`
	Coverage  float64                  `json:"coverage"`
	Rows      []domain.TrackFeatureRow `json:"rows"`
	Metrics   *domain.Metrics          `json:"metrics,omitempty"`
}

func toRunResponse(run domain.Run) runResponse {
	return runResponse{
		ID:        run.ID,
		Artist:    run.Artist,
		CreatedAt: run.CreatedAt,
		Coverage:  run.Coverage(),
		Rows:      run.Rows,
		Metrics:   run.Metrics,
	}
}

// Analyze handles POST /analyze
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	// 1. Decode the Request Body
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// 2. Validate Input
	req.Artist = strings.TrimSpace(req.Artist)
	if req.Artist == "" {
		writeErrorWithCode(w, http.StatusBadRequest, "artist is required", errCodeInvalidArgument)
		return
	}
	limit := services.DefaultLimit
	if req.Limit != nil {
		if *req.Limit < 1 || *req.Limit > services.MaxLimit {
			writeErrorWithCode(w, http.StatusBadRequest, "limit must be between 1 and 50", errCodeInvalidArgument)
			return
		}
		limit = *req.Limit
	}

	// 3. Call the Service
	res, err := h.svc.Analyze(r.Context(), services.AnalyzeRequest{
		Artist:    req.Artist,
		Limit:     limit,
		Train:     req.Train,
		BatchSize: req.BatchSize,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	// 4. Return the Response
	w.Header().Set("Location", "/runs/"+res.RunID)
	writeJSON(w, http.StatusOK, analyzeResponse{
		RunID:       res.RunID,
		Artist:      req.Artist,
		Rows:        res.Rows,
		CleanedRows: res.Cleaned.Rows,
		Ranges:      res.Cleaned.Ranges,
		Metrics:     res.Metrics,
		MoodGroups:  res.Moods,
	})
}

// GetRun handles GET /runs/{id}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "run id is required")
		return
	}

	run, err := h.svc.GetRun(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRunResponse(run))
}

// ListRuns handles GET /runs?artist=
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.svc.ListRuns(r.Context(), r.URL.Query().Get("artist"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	out := make([]runResponse, len(runs))
	for i, run := range runs {
		out[i] = toRunResponse(run)
	}
	writeJSON(w, http.StatusOK, out)
}
