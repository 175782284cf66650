package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/veloxfin/velox-backend/internal/domain"
)

// MockAPITokenValidator implements APITokenValidator for testing
type MockAPITokenValidator struct {
	token *domain.APIToken
	err   error
}

func (m *MockAPITokenValidator) ValidateToken(ctx context.Context, token string) (*domain.APIToken, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.token, nil
}

func TestAPITokenAuth_Success(t *testing.T) {
	e := echo.New()
	tokenID := uuid.New()

	validator := &MockAPITokenValidator{
		token: &domain.APIToken{
			ID: tokenID,
		},
	}

	middleware := NewAPITokenAuthMiddleware(validator)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contracts", nil)
	req.Header.Set("Authorization", "Bearer vlx_testtoken123")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handlerCalled := false
	handler := func(c echo.Context) error {
		handlerCalled = true
		// Verify context values are set
		if GetAPITokenID(c) != tokenID {
			t.Errorf("Expected token ID %s, got %s", tokenID, GetAPITokenID(c))
		}
		if !IsAPITokenAuth(c) {
			t.Error("Expected IsAPITokenAuth to be true")
		}
		return c.String(http.StatusOK, "OK")
	}

	err := middleware.Authenticate()(handler)(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !handlerCalled {
		t.Error("Handler was not called")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
}

func TestAPITokenAuth_MissingHeader(t *testing.T) {
	e := echo.New()

	validator := &MockAPITokenValidator{}
	middleware := NewAPITokenAuthMiddleware(validator)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contracts", nil)
	// No Authorization header
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		t.Error("Handler should not be called")
		return nil
	}

	err := middleware.Authenticate()(handler)(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestAPITokenAuth_InvalidFormat(t *testing.T) {
	e := echo.New()

	validator := &MockAPITokenValidator{}
	middleware := NewAPITokenAuthMiddleware(validator)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contracts", nil)
	req.Header.Set("Authorization", "Invalid format")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		t.Error("Handler should not be called")
		return nil
	}

	err := middleware.Authenticate()(handler)(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestAPITokenAuth_WrongPrefix(t *testing.T) {
	e := echo.New()

	validator := &MockAPITokenValidator{}
	middleware := NewAPITokenAuthMiddleware(validator)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contracts", nil)
	req.Header.Set("Authorization", "Bearer jwt_token_here")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		t.Error("Handler should not be called")
		return nil
	}

	err := middleware.Authenticate()(handler)(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestAPITokenAuth_InvalidToken(t *testing.T) {
	e := echo.New()

	validator := &MockAPITokenValidator{
		err: domain.ErrAPITokenNotFound,
	}
	middleware := NewAPITokenAuthMiddleware(validator)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contracts", nil)
	req.Header.Set("Authorization", "Bearer vlx_invalidtoken")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		t.Error("Handler should not be called")
		return nil
	}

	err := middleware.Authenticate()(handler)(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}
