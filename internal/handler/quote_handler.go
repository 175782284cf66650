package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/veloxfin/velox-backend/internal/service"
)

// QuoteHandler handles returns quote HTTP requests
type QuoteHandler struct {
	quoteService *service.QuoteService
}

// NewQuoteHandler creates a new QuoteHandler
func NewQuoteHandler(quoteService *service.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

// QuoteRequest represents the quote request body
type QuoteRequest struct {
	PlanID          string  `json:"planId"`
	VariantID       *string `json:"variantId,omitempty"`
	Principal       string  `json:"principal"`
	StartDate       *string `json:"startDate,omitempty"`
	IncludeSchedule bool    `json:"includeSchedule"`
}

// QuoteResponse represents a returns quote in API responses
type QuoteResponse struct {
	PlanID        string                  `json:"planId"`
	VariantID     *string                 `json:"variantId,omitempty"`
	Principal     string                  `json:"principal"`
	TenureMonths  int32                   `json:"tenureMonths"`
	InterestType  string                  `json:"interestType"`
	TotalInterest string                  `json:"totalInterest"`
	TotalReturns  string                  `json:"totalReturns"`
	EffectiveRate string                  `json:"effectiveRate"`
	Schedule      []ScheduleEntryResponse `json:"schedule,omitempty"`
}

// Quote handles POST /api/v1/quotes
func (h *QuoteHandler) Quote(c echo.Context) error {
	var req QuoteRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	planID, err := uuid.Parse(req.PlanID)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "planId", Message: "Must be a valid UUID"},
		})
	}

	principal, err := decimal.NewFromString(req.Principal)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "principal", Message: "Must be a valid decimal number"},
		})
	}

	input := service.QuoteInput{
		PlanID:          planID,
		Principal:       principal,
		IncludeSchedule: req.IncludeSchedule,
	}

	if req.VariantID != nil {
		variantID, err := uuid.Parse(*req.VariantID)
		if err != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "variantId", Message: "Must be a valid UUID"},
			})
		}
		input.VariantID = &variantID
	}

	if req.StartDate != nil {
		start, err := time.Parse("2006-01-02", *req.StartDate)
		if err != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "startDate", Message: "Must be a date in YYYY-MM-DD format"},
			})
		}
		input.StartDate = &start
	}

	result, err := h.quoteService.Quote(c.Request().Context(), input)
	if err != nil {
		return fromDomainError(c, err, "Failed to calculate quote")
	}

	return c.JSON(http.StatusOK, toQuoteResponse(result))
}

func toQuoteResponse(result *service.QuoteResult) QuoteResponse {
	resp := QuoteResponse{
		PlanID:        result.PlanID.String(),
		Principal:     result.Principal.StringFixed(2),
		TenureMonths:  result.TenureMonths,
		InterestType:  string(result.InterestType),
		TotalInterest: result.TotalInterest.StringFixed(2),
		TotalReturns:  result.TotalReturns.StringFixed(2),
		EffectiveRate: result.EffectiveRate.String(),
	}
	if result.VariantID != nil {
		id := result.VariantID.String()
		resp.VariantID = &id
	}
	for _, e := range result.Schedule {
		resp.Schedule = append(resp.Schedule, toScheduleEntryResponse(e))
	}
	return resp
}
