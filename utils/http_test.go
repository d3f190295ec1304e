package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	t.Run("successful write", func(t *testing.T) {
		w := httptest.NewRecorder()
		data := map[string]string{"message": "test"}

		err := WriteJSON(w, http.StatusOK, data)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"message":"test"}`, w.Body.String())
	})

	t.Run("nil data", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteJSON(w, http.StatusNoContent, nil)
		require.NoError(t, err)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestWriteOKAndCreated(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, WriteOK(w, MessageResponse{Message: "Logout successful"}))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Logout successful"}`, w.Body.String())

	w = httptest.NewRecorder()
	require.NoError(t, WriteCreated(w, map[string]int{"id": 1}))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":1}`, w.Body.String())
}

func TestWriteErrors(t *testing.T) {
	tests := []struct {
		name       string
		write      func(http.ResponseWriter) error
		wantStatus int
		wantBody   string
	}{
		{
			name: "bad request with details",
			write: func(w http.ResponseWriter) error {
				return WriteBadRequest(w, "Invalid request body", map[string]interface{}{"field": "email"})
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Invalid request body","code":"bad_request","details":{"field":"email"}}`,
		},
		{
			name:       "unauthorized",
			write:      func(w http.ResponseWriter) error { return WriteUnauthorized(w, "Access token required") },
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Access token required","code":"unauthorized"}`,
		},
		{
			name:       "unauthorized default message",
			write:      func(w http.ResponseWriter) error { return WriteUnauthorized(w, "") },
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Authentication required","code":"unauthorized"}`,
		},
		{
			name:       "forbidden",
			write:      func(w http.ResponseWriter) error { return WriteForbidden(w, "Invalid or expired token") },
			wantStatus: http.StatusForbidden,
			wantBody:   `{"error":"Invalid or expired token","code":"forbidden"}`,
		},
		{
			name:       "forbidden default message",
			write:      func(w http.ResponseWriter) error { return WriteForbidden(w, "") },
			wantStatus: http.StatusForbidden,
			wantBody:   `{"error":"Access forbidden","code":"forbidden"}`,
		},
		{
			name:       "not found",
			write:      func(w http.ResponseWriter) error { return WriteNotFound(w, "Route not found") },
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"Route not found","code":"not_found"}`,
		},
		{
			name:       "not found default message",
			write:      func(w http.ResponseWriter) error { return WriteNotFound(w, "") },
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"Resource not found","code":"not_found"}`,
		},
		{
			name:       "internal",
			write:      func(w http.ResponseWriter) error { return WriteInternalServerError(w, "") },
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Internal server error","code":"internal_error"}`,
		},
		{
			name: "explicit code",
			write: func(w http.ResponseWriter) error {
				return WriteErrorCode(w, http.StatusBadRequest, "conflict", "User already exists", nil)
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"User already exists","code":"conflict"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			require.NoError(t, tt.write(w))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestCodeForStatus(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{http.StatusBadRequest, "bad_request"},
		{http.StatusUnauthorized, "unauthorized"},
		{http.StatusForbidden, "forbidden"},
		{http.StatusNotFound, "not_found"},
		{http.StatusConflict, "conflict"},
		{http.StatusServiceUnavailable, "unavailable"},
		{http.StatusInternalServerError, "internal_error"},
		{http.StatusTeapot, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, CodeForStatus(tt.status))
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Email string `json:"email"`
	}

	tests := []struct {
		name    string
		payload string
		wantErr string
		want    string
	}{
		{name: "valid", payload: `{"email":"a@x.com"}`, want: "a@x.com"},
		{name: "unknown fields ignored", payload: `{"email":"a@x.com","extra":1}`, want: "a@x.com"},
		{name: "empty", payload: ``, wantErr: "request body is empty"},
		{name: "malformed", payload: `{"email":`, wantErr: "decode request body"},
		{name: "wrong type", payload: `{"email":42}`, wantErr: "decode request body"},
		{name: "trailing object", payload: `{"email":"a"}{"email":"b"}`, wantErr: "single JSON object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.payload))
			var got body
			err := DecodeJSON(req, &got)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Email)
		})
	}
}

func TestErrorResponse_OmitsEmptyFields(t *testing.T) {
	raw, err := json.Marshal(ErrorResponse{Error: "Invalid credentials"})
	require.NoError(t, err)
	assert.Equal(t, `{"error":"Invalid credentials"}`, string(raw))
}
