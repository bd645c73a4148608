package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOwner(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantOwner  string
	}{
		{"header set", "user-42", http.StatusOK, "user-42"},
		{"header trimmed", "  user-42 ", http.StatusOK, "user-42"},
		{"default", "", http.StatusOK, "anonymous"},
		{"too long", strings.Repeat("a", MaxOwnerLength+1), http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := Owner("anonymous")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = OwnerFrom(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/runs", nil)
			if tt.header != "" {
				req.Header.Set(OwnerHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantOwner, got)
		})
	}
}

func TestOwnerFrom_Missing(t *testing.T) {
	assert.Empty(t, OwnerFrom(context.Background()))
}
