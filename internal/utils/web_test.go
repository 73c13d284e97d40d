package utils

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chatter-dev/chatter/internal/errors"
)

func TestWriteErrorAndStatusCode(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"with status code", &errors.ErrorWithStatusCode{Message: "nope", StatusCode: http.StatusTeapot}, http.StatusTeapot},
		{"not found sentinel", errors.NotFound, http.StatusNotFound},
		{"not authorized sentinel", errors.NotAuthorized, http.StatusForbidden},
		{"invalid cursor sentinel", errors.InvalidCursor, http.StatusBadRequest},
		{"upstream sentinel", errors.UpstreamUnavailable, http.StatusServiceUnavailable},
		{"plain error", io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteErrorAndStatusCode(w, tt.err)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestDecodeValidate(t *testing.T) {
	type body struct {
		Name string `validate:"required" json:"name"`
	}

	t.Run("valid", func(t *testing.T) {
		var b body
		err := DecodeValidate(io.NopCloser(strings.NewReader(`{"name":"general"}`)), &b)
		assert.NoError(t, err)
		assert.Equal(t, "general", b.Name)
	})

	t.Run("missing required field", func(t *testing.T) {
		var b body
		err := DecodeValidate(io.NopCloser(strings.NewReader(`{}`)), &b)
		assert.Error(t, err)
	})

	t.Run("invalid json", func(t *testing.T) {
		var b body
		err := DecodeValidate(io.NopCloser(strings.NewReader(`{`)), &b)
		assert.Error(t, err)
	})
}
