package groups

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manzil-travel/manzil-console/internal/permissions"
	"github.com/manzil-travel/manzil-console/internal/platform/cache"
	"github.com/manzil-travel/manzil-console/internal/upstream"
)

type countingObserver struct {
	added, removed int
	calls          int
}

func (o *countingObserver) ObserveAssignment(added, removed int) {
	o.calls++
	o.added += added
	o.removed += removed
}

func newTestRouter(api *stubAPI, observer AssignmentObserver) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(logger, api, cache.NewCache(nil, time.Minute), nil)
	handler := NewHandler(logger, svc, observer)
	r := chi.NewRouter()
	r.Route("/groups", handler.MountRoutes)
	return r
}

func TestHandlerRequiresActorHeader(t *testing.T) {
	router := newTestRouter(&stubAPI{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/groups/", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "missing actor identity")
}

func TestHandlerRejectsMalformedActorHeader(t *testing.T) {
	router := newTestRouter(&stubAPI{}, nil)

	for _, value := range []string{"abc", "-3", "0"} {
		req := httptest.NewRequest(http.MethodGet, "/groups/", nil)
		req.Header.Set("X-Actor-ID", value)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, "actor %q", value)
	}
}

func TestHandlerListGroups(t *testing.T) {
	api := &stubAPI{groups: []upstream.Group{{ID: 3, Name: "Ops", Permissions: []string{"view_pax"}}}}
	router := newTestRouter(api, nil)

	req := httptest.NewRequest(http.MethodGet, "/groups/", nil)
	req.Header.Set("X-Actor-ID", "42")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"Ops"`)
}

func TestHandlerEditorInvalidGroupID(t *testing.T) {
	router := newTestRouter(&stubAPI{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/groups/nope/permissions", nil)
	req.Header.Set("X-Actor-ID", "42")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandlerEditorUnknownAudience(t *testing.T) {
	router := newTestRouter(&stubAPI{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/groups/7/permissions?audience=partner", nil)
	req.Header.Set("X-Actor-ID", "42")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandlerEditorSuccess(t *testing.T) {
	api := &stubAPI{
		catalog: testCatalog(),
		grants:  permissions.Grants{All: true},
		group:   upstream.Group{ID: 7, Name: "Ops", Permissions: []string{"view_pax"}},
	}
	router := newTestRouter(api, nil)

	req := httptest.NewRequest(http.MethodGet, "/groups/7/permissions", nil)
	req.Header.Set("X-Actor-ID", "42")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `"view_pax"`)
	assert.Contains(t, body, `"Ops"`)
}

func TestHandlerEditorCatalogUnavailable(t *testing.T) {
	api := &stubAPI{catalogErr: upstream.ErrCatalogUnavailable}
	router := newTestRouter(api, nil)

	req := httptest.NewRequest(http.MethodGet, "/groups/7/permissions", nil)
	req.Header.Set("X-Actor-ID", "42")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestHandlerAssignValidation(t *testing.T) {
	router := newTestRouter(&stubAPI{}, nil)

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"audience":`},
		{"missing audience", `{"selection":{}}`},
		{"bad audience", `{"audience":"partner","selection":{}}`},
		{"missing selection", `{"audience":"admin"}`},
		{"unknown field", `{"audience":"admin","selection":{},"extra":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/groups/7/permissions", strings.NewReader(tc.body))
			req.Header.Set("X-Actor-ID", "42")
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestHandlerAssignSuccessNotifiesObserver(t *testing.T) {
	api := &stubAPI{
		catalog: testCatalog(),
		grants:  permissions.Grants{Codes: []string{"view_pax", "add_pax"}},
		group:   upstream.Group{ID: 7, Permissions: []string{"secret_perm"}},
	}
	observer := &countingObserver{}
	router := newTestRouter(api, observer)

	body := `{"audience":"admin","selection":{"passengers":{"add_pax":true}}}`
	req := httptest.NewRequest(http.MethodPut, "/groups/7/permissions", strings.NewReader(body))
	req.Header.Set("X-Actor-ID", "42")
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"add_pax", "secret_perm", "view_pax"}, api.persisted)
	assert.Equal(t, 1, observer.calls)
	assert.Equal(t, 2, observer.added)
	assert.Equal(t, 0, observer.removed)
}

func TestHandlerAssignPersistFailure(t *testing.T) {
	api := &stubAPI{
		catalog:   testCatalog(),
		grants:    permissions.Grants{All: true},
		group:     upstream.Group{ID: 7},
		persistEr: upstream.ErrPersist,
	}
	observer := &countingObserver{}
	router := newTestRouter(api, observer)

	body := `{"audience":"admin","selection":{}}`
	req := httptest.NewRequest(http.MethodPut, "/groups/7/permissions", strings.NewReader(body))
	req.Header.Set("X-Actor-ID", "42")
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, 0, observer.calls)
}
