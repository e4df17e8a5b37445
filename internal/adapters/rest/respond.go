package rest

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/popularity/internal/core/domain"
	"github.com/ewilliams-labs/popularity/internal/core/ports"
)

const (
	errCodeAuthorizationRequired = "AUTHORIZATION_REQUIRED"
	errCodeAuthorizationDenied   = "AUTHORIZATION_DENIED"
	errCodeExchangeFailed        = "EXCHANGE_FAILED"
	errCodeInvalidArgument       = "INVALID_ARGUMENT"
	errCodeNotFound              = "NOT_FOUND"
	errCodeNoTracksFound         = "NO_TRACKS_FOUND"
	errCodeSchema                = "SCHEMA_ERROR"
	errCodeInsufficientData      = "INSUFFICIENT_DATA"
	errCodeUpstreamUnavailable   = "UPSTREAM_UNAVAILABLE"
	errCodeUpstreamStatus        = "UPSTREAM_ERROR"
)

type errorResponse struct {
	Error        string `json:"error"`
	Code         string `json:"code,omitempty"`
	AuthorizeURL string `json:"authorize_url,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeErrorWithCode(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func isJSONContentType(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

// writeServiceError maps core errors onto HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var authErr *domain.AuthorizationRequiredError
	if errors.As(err, &authErr) {
		writeJSON(w, http.StatusUnauthorized, errorResponse{
			Error:        "authorization required",
			Code:         errCodeAuthorizationRequired,
			AuthorizeURL: authErr.AuthorizeURL,
		})
		return
	}

	var rateErr *domain.RateLimitedError
	if errors.As(err, &rateErr) && rateErr.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(rateErr.RetryAfter.Seconds())))
	}

	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeErrorWithCode(w, http.StatusBadRequest, err.Error(), errCodeInvalidArgument)
	case errors.Is(err, domain.ErrExchangeFailed):
		writeErrorWithCode(w, http.StatusBadRequest, err.Error(), errCodeExchangeFailed)
	case errors.Is(err, ports.ErrNoTracksFound):
		writeErrorWithCode(w, http.StatusNotFound, err.Error(), errCodeNoTracksFound)
	case errors.Is(err, domain.ErrNotFound):
		writeErrorWithCode(w, http.StatusNotFound, err.Error(), errCodeNotFound)
	case errors.Is(err, domain.ErrSchema):
		writeErrorWithCode(w, http.StatusUnprocessableEntity, err.Error(), errCodeSchema)
	case errors.Is(err, domain.ErrInsufficientData):
		writeErrorWithCode(w, http.StatusUnprocessableEntity, err.Error(), errCodeInsufficientData)
	case errors.Is(err, domain.ErrRateLimited), errors.Is(err, domain.ErrUpstreamServer):
		h.logger.Warn("rest: upstream unavailable", zap.Error(err))
		writeErrorWithCode(w, http.StatusServiceUnavailable, err.Error(), errCodeUpstreamUnavailable)
	case errors.Is(err, domain.ErrUpstreamStatus):
		h.logger.Error("rest: unexpected upstream status", zap.Error(err))
		writeErrorWithCode(w, http.StatusBadGateway, err.Error(), errCodeUpstreamStatus)
	default:
		h.logger.Error("rest: request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
