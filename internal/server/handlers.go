package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/courierlens/courierlens/internal/auth"
	"github.com/courierlens/courierlens/internal/dashboard"
	"github.com/courierlens/courierlens/internal/model"
)

// Handlers holds dependencies for the HTTP handlers.
type Handlers struct {
	dash   *dashboard.Dashboard
	jwtMgr *auth.JWTManager
	logger *slog.Logger

	adminKeyHash  string
	viewerKeyHash string

	version     string
	sourceName  string
	startTime   time.Time
	openAPISpec []byte

	maxRequestBodyBytes int64
}

// HandlersDeps holds the dependencies for NewHandlers.
type HandlersDeps struct {
	Dashboard *dashboard.Dashboard
	JWTMgr    *auth.JWTManager
	Logger    *slog.Logger

	// Argon2id hashes of the API keys accepted by POST /auth/token,
	// one per role. An empty hash disables that role's key exchange.
	AdminKeyHash  string
	ViewerKeyHash string

	Version             string
	SourceName          string
	MaxRequestBodyBytes int64
	OpenAPISpec         []byte
}

// NewHandlers creates the handler set.
func NewHandlers(deps HandlersDeps) *Handlers {
	return &Handlers{
		dash:                deps.Dashboard,
		jwtMgr:              deps.JWTMgr,
		logger:              deps.Logger,
		adminKeyHash:        deps.AdminKeyHash,
		viewerKeyHash:       deps.ViewerKeyHash,
		version:             deps.Version,
		sourceName:          deps.SourceName,
		startTime:           time.Now(),
		openAPISpec:         deps.OpenAPISpec,
		maxRequestBodyBytes: deps.MaxRequestBodyBytes,
	}
}

// HandleOpenAPISpec handles GET /openapi.yaml.
func (h *Handlers) HandleOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	if len(h.openAPISpec) == 0 {
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "openapi spec not embedded")
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(h.openAPISpec)
}

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, model.HealthResponse{
		Status:  "ok",
		Version: h.version,
		Source:  h.sourceName,
		Uptime:  int64(time.Since(h.startTime).Seconds()),
	})
}

// HandleAuthToken handles POST /auth/token. It exchanges a role-scoped API
// key for a short-lived JWT.
func (h *Handlers) HandleAuthToken(w http.ResponseWriter, r *http.Request) {
	var req model.AuthTokenRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		return
	}
	if req.Name == "" || req.APIKey == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "name and api_key are required")
		return
	}

	var encoded string
	switch req.Role {
	case model.RoleAdmin:
		encoded = h.adminKeyHash
	case model.RoleViewer:
		encoded = h.viewerKeyHash
	default:
		// Burn comparable time so role probing is not distinguishable
		// from a bad key.
		auth.DummyVerify()
		writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorized, "invalid credentials")
		return
	}
	if encoded == "" {
		auth.DummyVerify()
		writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorized, "invalid credentials")
		return
	}

	ok, err := auth.VerifyAPIKey(req.APIKey, encoded)
	if err != nil || !ok {
		writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorized, "invalid credentials")
		return
	}

	token, expiresAt, err := h.jwtMgr.IssueToken(req.Name, req.Role)
	if err != nil {
		h.logger.Error("issuing token failed", "error", err)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to issue token")
		return
	}

	writeJSON(w, r, http.StatusOK, model.AuthTokenResponse{Token: token, ExpiresAt: expiresAt})
}

// HandleGetDashboard handles GET /v1/dashboard.
func (h *Handlers) HandleGetDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.dash.View())
}

// HandleSetDraftField handles PATCH /v1/filters/draft.
func (h *Handlers) HandleSetDraftField(w http.ResponseWriter, r *http.Request) {
	var req model.SetDraftFieldRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		return
	}
	if err := h.dash.SetDraftField(req.Field, req.Value); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, h.dash.View())
}

// HandleApplyFilters handles POST /v1/filters/apply.
func (h *Handlers) HandleApplyFilters(w http.ResponseWriter, r *http.Request) {
	if err := h.dash.ApplyFilters(r.Context()); err != nil {
		h.writeDashboardError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, h.dash.View())
}

// HandleClearFilters handles POST /v1/filters/clear.
func (h *Handlers) HandleClearFilters(w http.ResponseWriter, r *http.Request) {
	h.dash.ClearFilters()
	writeJSON(w, r, http.StatusOK, h.dash.View())
}

// HandleChangePage handles POST /v1/page. An out-of-range page is not an
// error: the engine ignores it and the current view comes back unchanged.
// When no filters are applied the records for the new page come from the
// source, so the move is followed by a refresh.
func (h *Handlers) HandleChangePage(w http.ResponseWriter, r *http.Request) {
	var req model.ChangePageRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		return
	}
	h.dash.ChangePage(req.Page)
	if err := h.dash.Refresh(r.Context()); err != nil {
		h.writeDashboardError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, h.dash.View())
}

// HandleRefresh handles POST /v1/refresh.
func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.dash.Refresh(r.Context()); err != nil {
		h.writeDashboardError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, h.dash.View())
}

// HandleUpdateTags handles PATCH /v1/reviews/{id}/tags. The mutation runs
// under the caller's own credential, not the dashboard's.
func (h *Handlers) HandleUpdateTags(w http.ResponseWriter, r *http.Request) {
	reviewID := r.PathValue("id")
	if reviewID == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "review id is required")
		return
	}

	var req model.UpdateTagsRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		return
	}
	patch := model.TagPatch{
		Performance: req.Performance,
		Accuracy:    req.Accuracy,
		Sentiment:   req.Sentiment,
	}
	if patch.IsZero() {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "patch must set at least one tag")
		return
	}
	if err := patch.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
		return
	}

	updated, err := h.dash.UpdateTags(r.Context(), CredentialFromContext(r.Context()), reviewID, patch)
	if err != nil {
		h.writeDashboardError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, updated)
}

// writeDashboardError maps engine errors onto HTTP statuses. Non-sentinel
// errors are treated as upstream failures.
func (h *Handlers) writeDashboardError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrUnauthorized):
		writeError(w, r, http.StatusForbidden, model.ErrCodeForbidden, "insufficient permissions")
	case errors.Is(err, model.ErrSessionExpired):
		writeError(w, r, http.StatusUnauthorized, model.ErrCodeSessionExpired, "session expired, re-authenticate")
	case errors.Is(err, model.ErrNotFound):
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "review not found")
	default:
		h.logger.Error("dashboard operation failed", "error", err,
			"request_id", RequestIDFromContext(r.Context()))
		writeError(w, r, http.StatusBadGateway, model.ErrCodeUpstream, "data source unavailable")
	}
}

// decodeBody enforces the body size limit and decodes JSON, writing the
// error response itself on failure.
func (h *Handlers) decodeBody(w http.ResponseWriter, r *http.Request, target any) error {
	if h.maxRequestBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestBodyBytes)
	}
	if err := decodeJSON(r, target); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid request body")
		return err
	}
	return nil
}
