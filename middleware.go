package eventkit

import (
	"net/http"
)

// Middleware provides HTTP middleware for role and permission checking.
type Middleware struct {
	service      *Service
	getUserID    func(*http.Request) string
	getAnchors   func(*http.Request) []Anchor
	errorHandler func(http.ResponseWriter, *http.Request, error)
}

// MiddlewareOption configures the Middleware.
type MiddlewareOption func(*Middleware)

// NewMiddleware creates a new Middleware instance.
//
// Example:
//
//	mw := eventkit.NewMiddleware(service,
//	    eventkit.WithUserIDExtractor(func(r *http.Request) string {
//	        return r.Context().Value("user_id").(string)
//	    }),
//	)
func NewMiddleware(service *Service, opts ...MiddlewareOption) *Middleware {
	m := &Middleware{
		service:      service,
		getUserID:    defaultGetUserID,
		getAnchors:   defaultGetAnchors,
		errorHandler: defaultErrorHandler,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// WithUserIDExtractor sets a custom function to extract the user ID from a
// request.
func WithUserIDExtractor(fn func(*http.Request) string) MiddlewareOption {
	return func(m *Middleware) {
		m.getUserID = fn
	}
}

// WithAnchorExtractor sets a custom function to extract anchor tokens from a
// request. The default reads the "token" query parameter.
func WithAnchorExtractor(fn func(*http.Request) []Anchor) MiddlewareOption {
	return func(m *Middleware) {
		m.getAnchors = fn
	}
}

// WithErrorHandler sets a custom error handler for middleware.
func WithErrorHandler(fn func(http.ResponseWriter, *http.Request, error)) MiddlewareOption {
	return func(m *Middleware) {
		m.errorHandler = fn
	}
}

func defaultGetUserID(r *http.Request) string {
	return GetUserID(r.Context())
}

func defaultGetAnchors(r *http.Request) []Anchor {
	token := r.URL.Query().Get("token")
	if token == "" {
		return nil
	}
	return []Anchor{Anchor(token)}
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case IsUnauthorized(err):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case IsMissingRecord(err):
		http.Error(w, "Not Found", http.StatusNotFound)
	case IsInvalidEntity(err) || IsInvalidRole(err):
		http.Error(w, "Bad Request", http.StatusBadRequest)
	default:
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// EntityExtractor extracts the target entity reference from an HTTP request.
type EntityExtractor func(*http.Request) (entity, entityID string, err error)

// EntityFromParam creates an EntityExtractor that reads the entity ID from URL
// path parameters (Go 1.22+ routing patterns).
//
// Example:
//
//	// For route /projects/{projectID}/settings
//	mw.RequireRole("editor", eventkit.EntityFromParam("project", "projectID"))
func EntityFromParam(entity, paramName string) EntityExtractor {
	return func(r *http.Request) (string, string, error) {
		entityID := r.PathValue(paramName)
		if entityID == "" {
			if v := r.Context().Value(paramName); v != nil {
				if s, ok := v.(string); ok {
					entityID = s
				}
			}
		}
		if entityID == "" {
			return "", "", NewError(ErrInvalidEntity, "entity ID not found in request").
				WithEntity(entity, "")
		}
		return entity, entityID, nil
	}
}

// EntityFromQuery creates an EntityExtractor that reads the entity ID from a
// query parameter.
//
// Example:
//
//	// For route /api/proposals?project_id=...
//	mw.RequireRole("editor", eventkit.EntityFromQuery("project", "project_id"))
func EntityFromQuery(entity, queryParam string) EntityExtractor {
	return func(r *http.Request) (string, string, error) {
		entityID := r.URL.Query().Get(queryParam)
		if entityID == "" {
			return "", "", NewError(ErrInvalidEntity, "entity ID not found in query").
				WithEntity(entity, "")
		}
		return entity, entityID, nil
	}
}

// EntityFromHeader creates an EntityExtractor that reads the entity ID from a
// header.
func EntityFromHeader(entity, headerName string) EntityExtractor {
	return func(r *http.Request) (string, string, error) {
		entityID := r.Header.Get(headerName)
		if entityID == "" {
			return "", "", NewError(ErrInvalidEntity, "entity ID not found in header").
				WithEntity(entity, "")
		}
		return entity, entityID, nil
	}
}

// StaticEntity creates an EntityExtractor that always returns the same entity
// reference. Useful for singleton resources.
func StaticEntity(entity, entityID string) EntityExtractor {
	return func(r *http.Request) (string, string, error) {
		return entity, entityID, nil
	}
}

// RequireRole creates middleware that requires a role on the extracted entity.
// The resolved Checker is stored in the request context for the handler.
//
// Example:
//
//	router.With(mw.RequireRole("editor", eventkit.EntityFromParam("project", "projectID"))).
//	    Post("/projects/{projectID}/publish", publishHandler)
func (m *Middleware) RequireRole(role string, extractor EntityExtractor) func(http.Handler) http.Handler {
	return m.require(extractor, func(checker *Checker) bool {
		return checker.Has(role)
	}, "missing required role")
}

// RequireAnyRole creates middleware that requires any of the roles on the
// extracted entity.
//
// Example:
//
//	router.With(mw.RequireAnyRole([]string{"editor", "promoter"}, extractor)).
//	    Delete("/projects/{projectID}/crew/{userID}", removeCrewHandler)
func (m *Middleware) RequireAnyRole(roles []string, extractor EntityExtractor) func(http.Handler) http.Handler {
	return m.require(extractor, func(checker *Checker) bool {
		return checker.HasAny(roles...)
	}, "missing required role")
}

// RequireCall creates middleware that requires call access to a method on the
// extracted entity, per the registry's access tables.
//
// Example:
//
//	router.With(mw.RequireCall("open_cfp", eventkit.EntityFromParam("project", "projectID"))).
//	    Post("/projects/{projectID}/cfp/open", openCFPHandler)
func (m *Middleware) RequireCall(method string, extractor EntityExtractor) func(http.Handler) http.Handler {
	return m.require(extractor, func(checker *Checker) bool {
		return checker.CanCall(method)
	}, "missing call access")
}

func (m *Middleware) require(extractor EntityExtractor, allowed func(*Checker) bool, denial string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			userID := m.getUserID(r)
			anchors := m.getAnchors(r)

			entity, entityID, err := extractor(r)
			if err != nil {
				m.errorHandler(w, r, err)
				return
			}

			checker, err := m.service.CheckerFor(ctx, entity, entityID, userID, anchors)
			if err != nil {
				m.errorHandler(w, r, err)
				return
			}

			if !allowed(checker) {
				m.errorHandler(w, r, NewError(ErrUnauthorized, denial).
					WithEntity(entity, entityID).
					WithActor(userID))
				return
			}

			ctx = WithChecker(ctx, checker)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoadChecker creates middleware that resolves the user's Checker for the
// extracted entity and stores it in context without enforcing anything. Use
// this when the handler itself decides what to show.
//
// Example:
//
//	router.With(mw.LoadChecker(eventkit.EntityFromParam("project", "projectID"))).
//	    Get("/projects/{projectID}", projectHandler)
//
//	func projectHandler(w http.ResponseWriter, r *http.Request) {
//	    checker := eventkit.FromContext(r.Context())
//	    if checker.CanCall("publish") {
//	        // show the publish button
//	    }
//	}
func (m *Middleware) LoadChecker(extractor EntityExtractor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			userID := m.getUserID(r)
			anchors := m.getAnchors(r)

			entity, entityID, err := extractor(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			checker, err := m.service.CheckerFor(ctx, entity, entityID, userID, anchors)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx = WithChecker(ctx, checker)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// InjectAuditContext creates middleware that extracts audit information and
// anchor tokens from the request and adds them to the context for membership
// and lifecycle operations.
//
// Example:
//
//	router.Use(mw.InjectAuditContext())
func (m *Middleware) InjectAuditContext() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			ip := r.Header.Get("X-Forwarded-For")
			if ip == "" {
				ip = r.Header.Get("X-Real-IP")
			}
			if ip == "" {
				ip = r.RemoteAddr
			}
			ctx = WithIPAddress(ctx, ip)
			ctx = WithUserAgent(ctx, r.UserAgent())

			if requestID := r.Header.Get("X-Request-ID"); requestID != "" {
				ctx = WithRequestID(ctx, requestID)
			}

			if userID := m.getUserID(r); userID != "" {
				ctx = WithActorID(ctx, userID)
				ctx = WithUserID(ctx, userID)
			}
			if anchors := m.getAnchors(r); len(anchors) > 0 {
				ctx = WithAnchors(ctx, anchors...)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
