package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/upb/auth-service/middleware"
	"github.com/upb/auth-service/models"
	"github.com/upb/auth-service/services"
	"go.uber.org/zap"
)

// MockAuthenticationService is a mock implementation of AuthenticationService
type MockAuthenticationService struct {
	mock.Mock
}

func (m *MockAuthenticationService) Register(ctx context.Context, input services.RegisterInput) (*models.PublicUser, error) {
	args := m.Called(ctx, input)
	if u := args.Get(0); u != nil {
		return u.(*models.PublicUser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthenticationService) Login(ctx context.Context, input services.LoginInput) (*services.LoginResult, error) {
	args := m.Called(ctx, input)
	if r := args.Get(0); r != nil {
		return r.(*services.LoginResult), args.Error(1)
	}
	return nil, args.Error(1)
}

var alice = models.PublicUser{ID: 1, Username: "alice", Email: "a@x.com"}

func TestHandleRegister(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name       string
		body       string
		setup      func(m *MockAuthenticationService)
		wantStatus int
		wantBody   string
	}{
		{
			name: "created",
			body: `{"username":"alice","email":"a@x.com","password":"secret1"}`,
			setup: func(m *MockAuthenticationService) {
				m.On("Register", mock.Anything, services.RegisterInput{Username: "alice", Email: "a@x.com", Password: "secret1"}).
					Return(&alice, nil)
			},
			wantStatus: http.StatusCreated,
			wantBody:   `{"message":"User registered successfully","user":{"id":1,"username":"alice","email":"a@x.com"}}`,
		},
		{
			name: "duplicate",
			body: `{"username":"alice","email":"a@x.com","password":"secret1"}`,
			setup: func(m *MockAuthenticationService) {
				m.On("Register", mock.Anything, mock.Anything).
					Return(nil, services.NewDomainError(services.ErrorTypeConflict, services.MsgUserExists, nil))
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"User already exists","code":"conflict"}`,
		},
		{
			name: "validation",
			body: `{"username":"alice"}`,
			setup: func(m *MockAuthenticationService) {
				m.On("Register", mock.Anything, services.RegisterInput{Username: "alice"}).
					Return(nil, services.NewDomainError(services.ErrorTypeValidation, services.MsgAllFieldsRequired, nil))
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"All fields are required","code":"bad_request"}`,
		},
		{
			name:       "malformed json",
			body:       `{"username":`,
			setup:      func(m *MockAuthenticationService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Invalid request body","code":"bad_request"}`,
		},
		{
			name:       "empty body",
			body:       ``,
			setup:      func(m *MockAuthenticationService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Invalid request body","code":"bad_request"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAuthenticationService)
			tt.setup(svc)
			handler := NewAuthHandler(svc, logger)

			req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.HandleRegister(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func TestHandleLogin(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name       string
		body       string
		setup      func(m *MockAuthenticationService)
		wantStatus int
		wantBody   string
	}{
		{
			name: "success",
			body: `{"email":"a@x.com","password":"secret1"}`,
			setup: func(m *MockAuthenticationService) {
				m.On("Login", mock.Anything, services.LoginInput{Email: "a@x.com", Password: "secret1"}).
					Return(&services.LoginResult{Token: "tok", ExpiresAt: time.Now().Add(time.Hour), User: alice}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"message":"Login successful","token":"tok","user":{"id":1,"username":"alice","email":"a@x.com"}}`,
		},
		{
			name: "bad credentials",
			body: `{"email":"a@x.com","password":"nope"}`,
			setup: func(m *MockAuthenticationService) {
				m.On("Login", mock.Anything, mock.Anything).
					Return(nil, services.NewDomainError(services.ErrorTypeInvalidCredentials, services.MsgInvalidCredentials, nil))
			},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Invalid credentials","code":"invalid_credentials"}`,
		},
		{
			name: "missing fields",
			body: `{}`,
			setup: func(m *MockAuthenticationService) {
				m.On("Login", mock.Anything, services.LoginInput{}).
					Return(nil, services.NewDomainError(services.ErrorTypeValidation, services.MsgEmailPasswordRequired, nil))
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Email and password are required","code":"bad_request"}`,
		},
		{
			name: "store failure",
			body: `{"email":"a@x.com","password":"secret1"}`,
			setup: func(m *MockAuthenticationService) {
				m.On("Login", mock.Anything, mock.Anything).
					Return(nil, services.WrapInternal(services.MsgInternalServerError, assert.AnError))
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Internal server error","code":"internal_error"}`,
		},
		{
			name:       "not json",
			body:       `email=a@x.com`,
			setup:      func(m *MockAuthenticationService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Invalid request body","code":"bad_request"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAuthenticationService)
			tt.setup(svc)
			handler := NewAuthHandler(svc, logger)

			req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.HandleLogin(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func TestHandleLogout(t *testing.T) {
	handler := NewAuthHandler(new(MockAuthenticationService), zap.NewNop())

	t.Run("acknowledges an authenticated caller", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
		req = req.WithContext(middleware.WithClaims(req.Context(), &middleware.Claims{UserID: 1, Username: "alice"}))
		w := httptest.NewRecorder()

		handler.HandleLogout(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Logout successful"}`, w.Body.String())
	})

	t.Run("without claims", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.HandleLogout(w, httptest.NewRequest(http.MethodPost, "/api/logout", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"Access token required","code":"unauthorized"}`, w.Body.String())
	})
}
