package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/isdelr/devlink/internal/models"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		body   string
	}{
		{models.NewValidationError("name is required"), http.StatusBadRequest, `{"error":"name is required"}`},
		{fmt.Errorf("wrapped: %w", models.ErrInvalidCredentials), http.StatusBadRequest, `{"error":"Invalid credentials"}`},
		{models.ErrForbidden, http.StatusForbidden, `{"error":"Not authorized to access this record"}`},
		{fmt.Errorf("get: %w", models.ErrNotFound), http.StatusNotFound, `{"error":"Not found"}`},
		{errors.New("pq: connection refused at 10.0.0.5"), http.StatusInternalServerError, `{"error":"Internal server error"}`},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err, "test")
		assert.Equal(t, tt.status, rec.Code, tt.err.Error())
		assert.JSONEq(t, tt.body, rec.Body.String())
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	}
}

func TestDecodeJSON(t *testing.T) {
	decode := func(body string) error {
		var in models.LoginInput
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		return decodeJSON(httptest.NewRecorder(), req, &in)
	}

	assert.NoError(t, decode(`{"email":"a@b.io","password":"x"}`))
	assert.ErrorIs(t, decode(``), models.ErrValidation)
	assert.ErrorIs(t, decode(`{"email":`), models.ErrValidation)
	assert.ErrorIs(t, decode(`{"email":"a@b.io","role":"admin"}`), models.ErrValidation)
	assert.ErrorIs(t, decode(`{"email":"a@b.io"}{"email":"c@d.io"}`), models.ErrValidation)
}
