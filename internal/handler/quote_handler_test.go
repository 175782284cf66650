package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
)

func TestQuote_Success(t *testing.T) {
	env := newTestEnv()
	plan := env.seedPlan()

	body := `{"planId": "` + plan.ID.String() + `", "principal": "100000"}`
	c, rec := env.request(http.MethodPost, "/api/v1/quotes", body)

	if err := env.quoteHandler.Quote(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp QuoteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if resp.TotalInterest != "30000.00" {
		t.Errorf("Expected total interest 30000.00, got %s", resp.TotalInterest)
	}
	if resp.TotalReturns != "130000.00" {
		t.Errorf("Expected total returns 130000.00, got %s", resp.TotalReturns)
	}
	if len(resp.Schedule) != 0 {
		t.Errorf("Expected no schedule without includeSchedule, got %d entries", len(resp.Schedule))
	}
}

func TestQuote_WithSchedule(t *testing.T) {
	env := newTestEnv()
	plan := env.seedPlan()

	body := `{"planId": "` + plan.ID.String() + `", "principal": "100000", "startDate": "2026-01-15", "includeSchedule": true}`
	c, rec := env.request(http.MethodPost, "/api/v1/quotes", body)

	if err := env.quoteHandler.Quote(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp QuoteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(resp.Schedule) != 12 {
		t.Fatalf("Expected 12 schedule entries, got %d", len(resp.Schedule))
	}
	if resp.Schedule[0].DueDate != "2026-02-15" {
		t.Errorf("Expected first due date 2026-02-15, got %s", resp.Schedule[0].DueDate)
	}
}

func TestQuote_PlanNotFound(t *testing.T) {
	env := newTestEnv()

	body := `{"planId": "` + uuid.New().String() + `", "principal": "1000"}`
	c, rec := env.request(http.MethodPost, "/api/v1/quotes", body)

	if err := env.quoteHandler.Quote(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestQuote_InvalidPrincipal(t *testing.T) {
	env := newTestEnv()
	plan := env.seedPlan()

	body := `{"planId": "` + plan.ID.String() + `", "principal": "not-a-number"}`
	c, rec := env.request(http.MethodPost, "/api/v1/quotes", body)

	if err := env.quoteHandler.Quote(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestQuote_InvalidStartDate(t *testing.T) {
	env := newTestEnv()
	plan := env.seedPlan()

	body := `{"planId": "` + plan.ID.String() + `", "principal": "1000", "startDate": "15/01/2026"}`
	c, rec := env.request(http.MethodPost, "/api/v1/quotes", body)

	if err := env.quoteHandler.Quote(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}
