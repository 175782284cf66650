package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/veloxfin/velox-backend/internal/domain"
	"github.com/veloxfin/velox-backend/internal/service"
	"github.com/veloxfin/velox-backend/internal/testutil"
)

func newAPITokenHandler() (*APITokenHandler, *testutil.MockAPITokenRepository, *echo.Echo) {
	repo := testutil.NewMockAPITokenRepository()
	return NewAPITokenHandler(service.NewAPITokenService(repo)), repo, echo.New()
}

func TestCreateAPIToken_Success(t *testing.T) {
	handler, _, e := newAPITokenHandler()

	reqBody := `{"description": "CI pipeline"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/api-tokens", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.CreateAPIToken(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rec.Code)
	}

	var response domain.CreateAPITokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Description != "CI pipeline" {
		t.Errorf("Expected description 'CI pipeline', got %s", response.Description)
	}
	if !strings.HasPrefix(response.Token, "vlx_") {
		t.Errorf("Expected token to start with 'vlx_', got %s", response.Token[:10])
	}
}

func TestCreateAPIToken_MissingDescription(t *testing.T) {
	handler, _, e := newAPITokenHandler()

	reqBody := `{"description": ""}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/api-tokens", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.CreateAPIToken(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetAPITokens_Success(t *testing.T) {
	handler, repo, e := newAPITokenHandler()

	repo.Create(context.Background(), &domain.APIToken{
		Description: "existing",
		TokenHash:   "somehash",
		TokenPrefix: "vlx_abc...",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/api-tokens", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.GetAPITokens(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var tokens []domain.APIToken
	if err := json.Unmarshal(rec.Body.Bytes(), &tokens); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(tokens) != 1 {
		t.Errorf("Expected 1 token, got %d", len(tokens))
	}
}

func TestRevokeAPIToken_Success(t *testing.T) {
	handler, repo, e := newAPITokenHandler()

	token := &domain.APIToken{
		Description: "to revoke",
		TokenHash:   "somehash",
		TokenPrefix: "vlx_abc...",
	}
	repo.Create(context.Background(), token)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/api-tokens/"+token.ID.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(token.ID.String())

	if err := handler.RevokeAPIToken(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}
}

func TestRevokeAPIToken_NotFound(t *testing.T) {
	handler, _, e := newAPITokenHandler()
	nonExistentID := uuid.New()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/api-tokens/"+nonExistentID.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(nonExistentID.String())

	if err := handler.RevokeAPIToken(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestRevokeAPIToken_InvalidID(t *testing.T) {
	handler, _, e := newAPITokenHandler()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/api-tokens/invalid-uuid", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("invalid-uuid")

	if err := handler.RevokeAPIToken(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}
