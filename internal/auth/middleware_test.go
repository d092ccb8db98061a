package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware(t *testing.T) {
	svc, clock := newTestService(t, "test-secret")
	valid, _, err := svc.Issue("user-42")
	require.NoError(t, err)

	var seen string
	handler := Middleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/developers", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	for _, scheme := range []string{"Bearer", "bearer", "BEARER"} {
		seen = ""
		rec := do(scheme + " " + valid)
		assert.Equal(t, http.StatusNoContent, rec.Code, "scheme %q", scheme)
		assert.Equal(t, "user-42", seen)
	}

	for _, header := range []string{"", "Bearer ", "Basic abc", valid, "Bearer nope", "Bearer" + valid} {
		seen = ""
		rec := do(header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
		assert.Contains(t, rec.Body.String(), `"error"`)
		assert.Empty(t, seen)
	}

	clock.Advance(TokenTTL + 1)
	rec := do("Bearer " + valid)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "expired")
}

func TestUserIDFromContext(t *testing.T) {
	_, ok := UserIDFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)

	ctx := WithUserID(httptest.NewRequest(http.MethodGet, "/", nil).Context(), "u1")
	id, ok := UserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u1", id)
}
