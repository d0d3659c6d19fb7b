package groups

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/manzil-travel/manzil-console/internal/permissions"
	"github.com/manzil-travel/manzil-console/internal/platform/httpx"
	"github.com/manzil-travel/manzil-console/internal/upstream"
)

// actorHeader carries the authenticated actor id, set by the gateway in
// front of the console.
const actorHeader = "X-Actor-ID"

// AssignmentObserver counts persisted assignments for observability.
type AssignmentObserver interface {
	ObserveAssignment(added, removed int)
}

// Handler exposes the group-permission editor over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	observer AssignmentObserver
}

// NewHandler builds the editor handler. observer may be nil.
func NewHandler(logger *slog.Logger, service *Service, observer AssignmentObserver) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		observer: observer,
	}
}

// MountRoutes registers the editor routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Route("/{groupID}", func(r chi.Router) {
		r.Get("/permissions", h.editor)
		r.Put("/permissions", h.assign)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.actorID(w, r); !ok {
		return
	}
	groups, err := h.service.ListGroups(r.Context())
	if err != nil {
		h.respondUpstreamError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, groups)
}

func (h *Handler) editor(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actorID(w, r)
	if !ok {
		return
	}
	groupID, ok := h.groupID(w, r)
	if !ok {
		return
	}
	audience, ok := h.audience(w, r.URL.Query().Get("audience"))
	if !ok {
		return
	}

	view, err := h.service.LoadEditor(r.Context(), actorID, groupID, audience, r.URL.Query().Get("search"))
	if err != nil {
		h.respondUpstreamError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actorID(w, r)
	if !ok {
		return
	}
	groupID, ok := h.groupID(w, r)
	if !ok {
		return
	}

	var req AssignRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	audience, ok := h.audience(w, req.Audience)
	if !ok {
		return
	}

	result, err := h.service.Assign(r.Context(), actorID, groupID, audience, req.Selection)
	if err != nil {
		h.respondUpstreamError(w, err)
		return
	}
	if h.observer != nil {
		h.observer.ObserveAssignment(len(result.Added), len(result.Removed))
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) actorID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(r.Header.Get(actorHeader))
	if raw == "" {
		httpx.RespondError(w, fmt.Errorf("%w: missing actor identity", httpx.ErrUnauthorized))
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.logger.Warn("invalid actor header", slog.String("value", raw))
		httpx.RespondError(w, fmt.Errorf("%w: invalid actor identity", httpx.ErrUnauthorized))
		return 0, false
	}
	return id, true
}

func (h *Handler) groupID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "groupID"), 10, 64)
	if err != nil || id <= 0 {
		httpx.RespondError(w, fmt.Errorf("%w: invalid group id", httpx.ErrValidation))
		return 0, false
	}
	return id, true
}

func (h *Handler) audience(w http.ResponseWriter, raw string) (permissions.Audience, bool) {
	if raw == "" {
		return permissions.AudienceAdmin, true
	}
	audience, ok := permissions.ParseAudience(raw)
	if !ok {
		httpx.RespondError(w, fmt.Errorf("%w: unknown audience", httpx.ErrValidation))
		return "", false
	}
	return audience, true
}

// respondUpstreamError maps the editor's failure taxonomy onto problem
// responses. Catalog failures block the session; persist failures keep
// the client's selection intact for an explicit retry.
func (h *Handler) respondUpstreamError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, upstream.ErrCatalogUnavailable):
		h.logger.Error("catalog unavailable", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Catalog Unavailable", err.Error())
	case errors.Is(err, upstream.ErrGroupFetch):
		h.logger.Error("group fetch failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Group Fetch Failed", err.Error())
	case errors.Is(err, upstream.ErrPersist):
		h.logger.Error("persist failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Persist Failed", err.Error())
	default:
		h.logger.Error("editor failure", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
