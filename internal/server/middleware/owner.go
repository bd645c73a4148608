// Package middleware holds HTTP middleware shared by the API handlers.
package middleware

import (
	"context"
	"net/http"
	"strings"
)

// ContextKey is a typed key for context values.
type ContextKey string

const ownerKey ContextKey = "owner"

// OwnerHeader carries the caller's user id.
const OwnerHeader = "X-User-ID"

// MaxOwnerLength bounds the accepted header value.
const MaxOwnerLength = 128

// Owner resolves the record owner from OwnerHeader, falling back to
// defaultOwner, and stores it in the request context. Requests with an
// over-long or multi-line value are rejected.
func Owner(defaultOwner string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner := strings.TrimSpace(r.Header.Get(OwnerHeader))
			if len(owner) > MaxOwnerLength || strings.ContainsAny(owner, "\r\n") {
				http.Error(w, "invalid "+OwnerHeader, http.StatusBadRequest)
				return
			}
			if owner == "" {
				owner = defaultOwner
			}
			next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), owner)))
		})
	}
}

// WithOwner returns a context carrying owner.
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ownerKey, owner)
}

// OwnerFrom returns the owner stored by Owner, or "" when absent.
func OwnerFrom(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey).(string)
	return owner
}
