package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/veloxfin/velox-backend/internal/domain"
	"github.com/veloxfin/velox-backend/internal/service"
)

// PaymentHandler handles payment HTTP requests
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// BreakdownRequest represents an explicit payment split
type BreakdownRequest struct {
	Interest  string `json:"interest"`
	Principal string `json:"principal"`
	Penalty   string `json:"penalty"`
	Bonus     string `json:"bonus"`
}

// RecordPaymentRequest represents the record payment request body
type RecordPaymentRequest struct {
	TargetPeriod int32             `json:"targetPeriod"`
	Amount       string            `json:"amount"`
	PaidDate     string            `json:"paidDate"`
	Reference    *string           `json:"reference,omitempty"`
	Breakdown    *BreakdownRequest `json:"breakdown,omitempty"`
}

// PaymentResponse represents a recorded payment in API responses
type PaymentResponse struct {
	ID         string `json:"id"`
	ContractID string `json:"contractId"`
	Period     int32  `json:"period"`

	Amount           string `json:"amount"`
	InterestPortion  string `json:"interestPortion"`
	PrincipalPortion string `json:"principalPortion"`
	PenaltyPortion   string `json:"penaltyPortion"`
	BonusPortion     string `json:"bonusPortion"`

	PaidDate  string  `json:"paidDate"`
	Reference *string `json:"reference,omitempty"`
	CreatedAt string  `json:"createdAt"`
}

// PaymentStatsResponse represents payment stats in API responses
type PaymentStatsResponse struct {
	Count       int32  `json:"count"`
	TotalAmount string `json:"totalAmount"`
}

// RecordPayment handles POST /api/v1/contracts/:id/payments
func (h *PaymentHandler) RecordPayment(c echo.Context) error {
	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid contract ID", nil)
	}

	var req RecordPaymentRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	paidDate, err := time.Parse("2006-01-02", req.PaidDate)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "paidDate", Message: "Must be a date in YYYY-MM-DD format"},
		})
	}

	app := &domain.PaymentApplication{
		TargetPeriod: req.TargetPeriod,
		Amount:       amount,
		PaidDate:     paidDate,
		Reference:    req.Reference,
	}

	if req.Breakdown != nil {
		breakdown, err := toBreakdown(req.Breakdown)
		if err != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "breakdown", Message: "All components must be valid decimal numbers"},
			})
		}
		app.Breakdown = breakdown
	}

	payment, err := h.paymentService.RecordPayment(c.Request().Context(), contractID, app)
	if err != nil {
		return fromDomainError(c, err, "Failed to record payment")
	}

	return c.JSON(http.StatusCreated, toPaymentResponse(payment))
}

// GetPayments handles GET /api/v1/contracts/:id/payments
func (h *PaymentHandler) GetPayments(c echo.Context) error {
	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid contract ID", nil)
	}

	payments, err := h.paymentService.GetPayments(c.Request().Context(), contractID)
	if err != nil {
		return fromDomainError(c, err, "Failed to get payments")
	}

	response := make([]PaymentResponse, len(payments))
	for i, payment := range payments {
		response[i] = toPaymentResponse(payment)
	}

	return c.JSON(http.StatusOK, response)
}

// GetPaymentStats handles GET /api/v1/contracts/:id/payments/stats
func (h *PaymentHandler) GetPaymentStats(c echo.Context) error {
	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid contract ID", nil)
	}

	stats, err := h.paymentService.GetStats(c.Request().Context(), contractID)
	if err != nil {
		return fromDomainError(c, err, "Failed to get payment stats")
	}

	return c.JSON(http.StatusOK, PaymentStatsResponse{
		Count:       stats.Count,
		TotalAmount: stats.TotalAmount.StringFixed(2),
	})
}

func toBreakdown(req *BreakdownRequest) (*domain.PaymentBreakdown, error) {
	interest, err := parseOptionalDecimal(req.Interest)
	if err != nil {
		return nil, err
	}
	principal, err := parseOptionalDecimal(req.Principal)
	if err != nil {
		return nil, err
	}
	penalty, err := parseOptionalDecimal(req.Penalty)
	if err != nil {
		return nil, err
	}
	bonus, err := parseOptionalDecimal(req.Bonus)
	if err != nil {
		return nil, err
	}
	return &domain.PaymentBreakdown{
		Interest:  interest,
		Principal: principal,
		Penalty:   penalty,
		Bonus:     bonus,
	}, nil
}

// parseOptionalDecimal treats an omitted component as zero.
func parseOptionalDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func toPaymentResponse(payment *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:         payment.ID.String(),
		ContractID: payment.ContractID.String(),
		Period:     payment.Period,

		Amount:           payment.Amount.StringFixed(2),
		InterestPortion:  payment.InterestPortion.StringFixed(2),
		PrincipalPortion: payment.PrincipalPortion.StringFixed(2),
		PenaltyPortion:   payment.PenaltyPortion.StringFixed(2),
		BonusPortion:     payment.BonusPortion.StringFixed(2),

		PaidDate:  payment.PaidDate.Format("2006-01-02"),
		Reference: payment.Reference,
		CreatedAt: payment.CreatedAt.Format(time.RFC3339),
	}
}
