package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRecordPayment_Success(t *testing.T) {
	env := newTestEnv()
	contract := env.seedContract(t, time.Now().UTC().AddDate(0, 0, -1))

	body := `{"targetPeriod": 1, "amount": "45000", "paidDate": "2026-02-15"}`
	c, rec := env.request(http.MethodPost, "/api/v1/contracts/"+contract.ID.String()+"/payments", body, "id", contract.ID.String())

	if err := env.paymentHandler.RecordPayment(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp PaymentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if resp.InterestPortion != "2500.00" {
		t.Errorf("Expected interest portion 2500.00, got %s", resp.InterestPortion)
	}
	if resp.PrincipalPortion != "42500.00" {
		t.Errorf("Expected principal portion 42500.00, got %s", resp.PrincipalPortion)
	}
}

func TestRecordPayment_WithBreakdown(t *testing.T) {
	env := newTestEnv()
	contract := env.seedContract(t, time.Now().UTC().AddDate(0, 0, -1))

	body := `{"targetPeriod": 1, "amount": "2600", "paidDate": "2026-02-15", "breakdown": {"interest": "2500", "penalty": "100"}}`
	c, rec := env.request(http.MethodPost, "/api/v1/contracts/"+contract.ID.String()+"/payments", body, "id", contract.ID.String())

	if err := env.paymentHandler.RecordPayment(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp PaymentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if resp.PenaltyPortion != "100.00" {
		t.Errorf("Expected penalty portion 100.00, got %s", resp.PenaltyPortion)
	}
}

func TestRecordPayment_BreakdownMismatch(t *testing.T) {
	env := newTestEnv()
	contract := env.seedContract(t, time.Now().UTC().AddDate(0, 0, -1))

	body := `{"targetPeriod": 1, "amount": "5000", "paidDate": "2026-02-15", "breakdown": {"interest": "3000", "principal": "2500"}}`
	c, rec := env.request(http.MethodPost, "/api/v1/contracts/"+contract.ID.String()+"/payments", body, "id", contract.ID.String())

	if err := env.paymentHandler.RecordPayment(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestRecordPayment_ContractNotFound(t *testing.T) {
	env := newTestEnv()
	id := uuid.New().String()

	body := `{"targetPeriod": 1, "amount": "1000", "paidDate": "2026-02-15"}`
	c, rec := env.request(http.MethodPost, "/api/v1/contracts/"+id+"/payments", body, "id", id)

	if err := env.paymentHandler.RecordPayment(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestRecordPayment_InvalidAmount(t *testing.T) {
	env := newTestEnv()
	contract := env.seedContract(t, time.Now().UTC().AddDate(0, 0, -1))

	body := `{"targetPeriod": 1, "amount": "abc", "paidDate": "2026-02-15"}`
	c, rec := env.request(http.MethodPost, "/api/v1/contracts/"+contract.ID.String()+"/payments", body, "id", contract.ID.String())

	if err := env.paymentHandler.RecordPayment(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetPayments_Success(t *testing.T) {
	env := newTestEnv()
	contract := env.seedContract(t, time.Now().UTC().AddDate(0, 0, -1))

	body := `{"targetPeriod": 1, "amount": "2500", "paidDate": "2026-02-15"}`
	c, _ := env.request(http.MethodPost, "/api/v1/contracts/"+contract.ID.String()+"/payments", body, "id", contract.ID.String())
	if err := env.paymentHandler.RecordPayment(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	c, rec := env.request(http.MethodGet, "/api/v1/contracts/"+contract.ID.String()+"/payments", "", "id", contract.ID.String())
	if err := env.paymentHandler.GetPayments(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var resp []PaymentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(resp) != 1 {
		t.Errorf("Expected 1 payment, got %d", len(resp))
	}
}

func TestGetPaymentStats_Success(t *testing.T) {
	env := newTestEnv()
	contract := env.seedContract(t, time.Now().UTC().AddDate(0, 0, -1))

	body := `{"targetPeriod": 1, "amount": "2500", "paidDate": "2026-02-15"}`
	c, _ := env.request(http.MethodPost, "/api/v1/contracts/"+contract.ID.String()+"/payments", body, "id", contract.ID.String())
	if err := env.paymentHandler.RecordPayment(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	c, rec := env.request(http.MethodGet, "/api/v1/contracts/"+contract.ID.String()+"/payments/stats", "", "id", contract.ID.String())
	if err := env.paymentHandler.GetPaymentStats(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var resp PaymentStatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("Expected count 1, got %d", resp.Count)
	}
	if resp.TotalAmount != "2500.00" {
		t.Errorf("Expected total amount 2500.00, got %s", resp.TotalAmount)
	}
}
