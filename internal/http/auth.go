package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"courseaca-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

type contextKey string

const ctxIdentity contextKey = "identity"

// WithAuth resolves the bearer token to an identity and stores it on
// the request context. Requests without a valid access token never
// reach the wrapped handler.
func WithAuth(resolver services.SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				WriteError(w, http.StatusUnauthorized, "Authentication failed")
				return
			}
			tokenStr := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			identity, err := resolver.ResolveIdentity(tokenStr)
			if err != nil {
				WriteServiceError(w, err)
				return
			}
			ctx := context.WithValue(r.Context(), ctxIdentity, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithOptionalAuth resolves the bearer token when present but lets
// anonymous requests through. Public read paths use it to widen what a
// buyer sees.
func WithOptionalAuth(resolver services.SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				tokenStr := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
				if identity, err := resolver.ResolveIdentity(tokenStr); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), ctxIdentity, identity))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func CurrentIdentity(r *http.Request) (services.Identity, bool) {
	identity, ok := r.Context().Value(ctxIdentity).(services.Identity)
	return identity, ok
}

// RequireRole gates a subtree on the caller's role. WithAuth must run
// first.
func RequireRole(roles ...services.Role) func(http.Handler) http.Handler {
	guard := services.RequireRoles(roles...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := CurrentIdentity(r)
			if !ok {
				WriteError(w, http.StatusUnauthorized, "Authentication failed")
				return
			}
			if err := guard.Check(identity); err != nil {
				WriteServiceError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCourseOwner checks that the authenticated teacher owns the
// course named by the courseId URL parameter, before the handler runs.
func RequireCourseOwner(owners services.CourseOwners) func(http.Handler) http.Handler {
	guard := services.OwnershipGuard{Courses: owners}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := CurrentIdentity(r)
			if !ok {
				WriteError(w, http.StatusUnauthorized, "Authentication failed")
				return
			}
			if err := guard.Check(identity, chi.URLParam(r, "courseId")); err != nil {
				WriteServiceError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WriteServiceError maps a services error onto the wire; anything that
// is not a ServiceError reports as a 500.
func WriteServiceError(w http.ResponseWriter, err error) {
	var se services.ServiceError
	if errors.As(err, &se) {
		WriteError(w, se.Status, se.Message)
		return
	}
	WriteError(w, http.StatusInternalServerError, "Internal server error")
}
