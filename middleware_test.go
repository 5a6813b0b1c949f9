package eventkit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestEntityFromQuery verifies query parameter extraction.
func TestEntityFromQuery(t *testing.T) {
	extractor := EntityFromQuery("project", "project_id")

	r := httptest.NewRequest("GET", "/api/proposals?project_id=project-1", nil)
	entity, entityID, err := extractor(r)
	assert.NoError(t, err)
	assert.Equal(t, "project", entity)
	assert.Equal(t, "project-1", entityID)

	r = httptest.NewRequest("GET", "/api/proposals", nil)
	_, _, err = extractor(r)
	assert.ErrorIs(t, err, ErrInvalidEntity)
}

// TestEntityFromHeader verifies header extraction.
func TestEntityFromHeader(t *testing.T) {
	extractor := EntityFromHeader("commentset", "X-Commentset-ID")

	r := httptest.NewRequest("GET", "/comments", nil)
	r.Header.Set("X-Commentset-ID", "cs-1")
	entity, entityID, err := extractor(r)
	assert.NoError(t, err)
	assert.Equal(t, "commentset", entity)
	assert.Equal(t, "cs-1", entityID)

	r = httptest.NewRequest("GET", "/comments", nil)
	_, _, err = extractor(r)
	assert.ErrorIs(t, err, ErrInvalidEntity)
}

// TestEntityFromParamContextFallback verifies the context fallback for routers
// that stash path parameters there.
func TestEntityFromParamContextFallback(t *testing.T) {
	extractor := EntityFromParam("project", "projectID")

	r := httptest.NewRequest("GET", "/projects/x", nil)
	r = r.WithContext(context.WithValue(r.Context(), "projectID", "project-1")) //nolint:staticcheck
	entity, entityID, err := extractor(r)
	assert.NoError(t, err)
	assert.Equal(t, "project", entity)
	assert.Equal(t, "project-1", entityID)

	r = httptest.NewRequest("GET", "/projects/x", nil)
	_, _, err = extractor(r)
	assert.ErrorIs(t, err, ErrInvalidEntity)
}

// TestStaticEntity verifies the singleton extractor.
func TestStaticEntity(t *testing.T) {
	extractor := StaticEntity("profile", "profile-1")

	entity, entityID, err := extractor(httptest.NewRequest("GET", "/", nil))
	assert.NoError(t, err)
	assert.Equal(t, "profile", entity)
	assert.Equal(t, "profile-1", entityID)
}

// TestDefaultGetAnchors verifies the token query parameter becomes an anchor.
func TestDefaultGetAnchors(t *testing.T) {
	r := httptest.NewRequest("GET", "/projects/x?token=invite-1", nil)
	assert.Equal(t, []Anchor{"invite-1"}, defaultGetAnchors(r))

	r = httptest.NewRequest("GET", "/projects/x", nil)
	assert.Nil(t, defaultGetAnchors(r))
}

// TestDefaultErrorHandler verifies the error-to-status mapping.
func TestDefaultErrorHandler(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unauthorized", NewError(ErrUnauthorized, "no"), http.StatusForbidden},
		{"missing record", NewError(ErrMissingRecord, "gone"), http.StatusNotFound},
		{"invalid entity", NewError(ErrInvalidEntity, "what"), http.StatusBadRequest},
		{"invalid role", NewError(ErrInvalidRole, "who"), http.StatusBadRequest},
		{"anything else", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			defaultErrorHandler(w, httptest.NewRequest("GET", "/", nil), tt.err)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

// TestMiddlewareOptions verifies the option functions replace the defaults.
func TestMiddlewareOptions(t *testing.T) {
	var handledErr error

	m := NewMiddleware(nil,
		WithUserIDExtractor(func(r *http.Request) string { return "user-1" }),
		WithAnchorExtractor(func(r *http.Request) []Anchor { return []Anchor{"a"} }),
		WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			handledErr = err
		}),
	)

	r := httptest.NewRequest("GET", "/", nil)
	assert.Equal(t, "user-1", m.getUserID(r))
	assert.Equal(t, []Anchor{"a"}, m.getAnchors(r))

	m.errorHandler(httptest.NewRecorder(), r, ErrUnauthorized)
	assert.ErrorIs(t, handledErr, ErrUnauthorized)
}

// TestInjectAuditContext verifies request metadata lands in the handler context.
func TestInjectAuditContext(t *testing.T) {
	m := NewMiddleware(nil, WithUserIDExtractor(func(r *http.Request) string {
		return r.Header.Get("X-User-ID")
	}))

	var got AuditContext
	var anchors []Anchor
	handler := m.InjectAuditContext()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetAuditContext(r.Context())
		anchors = GetAnchors(r.Context())
	}))

	r := httptest.NewRequest("POST", "/projects?token=invite-1", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.7")
	r.Header.Set("User-Agent", "funnel/1.0")
	r.Header.Set("X-Request-ID", "req-42")
	r.Header.Set("X-User-ID", "user-1")
	handler.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "user-1", got.ActorID)
	assert.Equal(t, "203.0.113.7", got.IPAddress)
	assert.Equal(t, "funnel/1.0", got.UserAgent)
	assert.Equal(t, "req-42", got.RequestID)
	assert.Equal(t, []Anchor{"invite-1"}, anchors)
}

// TestInjectAuditContextFallsBackToRemoteAddr verifies IP resolution order.
func TestInjectAuditContextFallsBackToRemoteAddr(t *testing.T) {
	m := NewMiddleware(nil)

	var ip string
	handler := m.InjectAuditContext()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip = GetIPAddress(r.Context())
	}))

	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.0.2.1:1234"
	handler.ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, "192.0.2.1:1234", ip)

	r = httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Real-IP", "198.51.100.2")
	handler.ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, "198.51.100.2", ip)
}
