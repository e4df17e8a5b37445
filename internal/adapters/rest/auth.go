package rest

import (
	"net/http"
	"time"
)

type authStatusResponse struct {
	Authenticated bool       `json:"authenticated"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	AuthorizeURL  string     `json:"authorize_url,omitempty"`
}

// AuthStatus handles GET /auth/status
func (h *Handler) AuthStatus(w http.ResponseWriter, r *http.Request) {
	res, err := h.sessions.GetSession(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if res.NeedsAuthorization() {
		writeJSON(w, http.StatusOK, authStatusResponse{AuthorizeURL: res.AuthorizeURL})
		return
	}
	expires := res.Session.ExpiresAt
	writeJSON(w, http.StatusOK, authStatusResponse{Authenticated: true, ExpiresAt: &expires})
}

// Login handles GET /auth/login by redirecting to the provider.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.sessions.AuthorizeURL(), http.StatusFound)
}

// Callback handles GET /callback, the provider's redirect target.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if reason := q.Get("error"); reason != "" {
		writeErrorWithCode(w, http.StatusBadRequest, "authorization denied: "+reason, errCodeAuthorizationDenied)
		return
	}

	res, err := h.sessions.Resolve(r.Context(), q.Get("code"), q.Get("state"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if res.NeedsAuthorization() {
		writeJSON(w, http.StatusUnauthorized, errorResponse{
			Error:        "authorization code is required",
			Code:         errCodeAuthorizationRequired,
			AuthorizeURL: res.AuthorizeURL,
		})
		return
	}
	expires := res.Session.ExpiresAt
	writeJSON(w, http.StatusOK, authStatusResponse{Authenticated: true, ExpiresAt: &expires})
}

// Logout handles POST /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
