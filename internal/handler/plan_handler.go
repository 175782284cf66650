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

// PlanHandler handles investment plan HTTP requests
type PlanHandler struct {
	planService *service.PlanService
}

// NewPlanHandler creates a new PlanHandler
func NewPlanHandler(planService *service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// VariantRequest represents one repayment variant in a plan request
type VariantRequest struct {
	PaymentType                  string  `json:"paymentType"`
	InterestRateMonthly          string  `json:"interestRateMonthly"`
	PrincipalRepaymentOption     *string `json:"principalRepaymentOption,omitempty"`
	WithdrawalAfterPercentage    *string `json:"withdrawalAfterPercentage,omitempty"`
	PrincipalSettlementTerm      *int32  `json:"principalSettlementTerm,omitempty"`
	PayoutFrequency              *string `json:"payoutFrequency,omitempty"`
	PrincipalRepaymentPercentage *string `json:"principalRepaymentPercentage,omitempty"`
	IsDefault                    bool    `json:"isDefault"`
}

// CreatePlanRequest represents the create plan request body
type CreatePlanRequest struct {
	Name                         string           `json:"name"`
	Description                  *string          `json:"description,omitempty"`
	InterestType                 string           `json:"interestType"`
	InterestRateMonthly          string           `json:"interestRateMonthly"`
	TenureMonths                 int32            `json:"tenureMonths"`
	PrincipalRepaymentPercentage string           `json:"principalRepaymentPercentage"`
	PrincipalRepaymentStartMonth int32            `json:"principalRepaymentStartMonth"`
	Variants                     []VariantRequest `json:"variants,omitempty"`
}

// VariantResponse represents a repayment variant in API responses
type VariantResponse struct {
	ID                           string  `json:"id"`
	PlanID                       string  `json:"planId"`
	PaymentType                  string  `json:"paymentType"`
	InterestRateMonthly          string  `json:"interestRateMonthly"`
	PrincipalRepaymentOption     *string `json:"principalRepaymentOption,omitempty"`
	WithdrawalAfterPercentage    *string `json:"withdrawalAfterPercentage,omitempty"`
	PrincipalSettlementTerm      *int32  `json:"principalSettlementTerm,omitempty"`
	PayoutFrequency              *string `json:"payoutFrequency,omitempty"`
	PrincipalRepaymentPercentage *string `json:"principalRepaymentPercentage,omitempty"`
	IsDefault                    bool    `json:"isDefault"`
	Active                       bool    `json:"active"`
}

// PlanResponse represents a plan in API responses
type PlanResponse struct {
	ID                           string            `json:"id"`
	Name                         string            `json:"name"`
	Description                  *string           `json:"description,omitempty"`
	InterestType                 string            `json:"interestType"`
	InterestRateMonthly          string            `json:"interestRateMonthly"`
	TenureMonths                 int32             `json:"tenureMonths"`
	PrincipalRepaymentPercentage string            `json:"principalRepaymentPercentage"`
	PrincipalRepaymentStartMonth int32             `json:"principalRepaymentStartMonth"`
	Variants                     []VariantResponse `json:"variants,omitempty"`
	Active                       bool              `json:"active"`
	CreatedAt                    string            `json:"createdAt"`
}

// CreatePlan handles POST /api/v1/plans
func (h *PlanHandler) CreatePlan(c echo.Context) error {
	var req CreatePlanRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	rate, err := decimal.NewFromString(req.InterestRateMonthly)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "interestRateMonthly", Message: "Must be a valid decimal number"},
		})
	}

	repayPct, err := decimal.NewFromString(req.PrincipalRepaymentPercentage)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "principalRepaymentPercentage", Message: "Must be a valid decimal number"},
		})
	}

	input := service.CreatePlanInput{
		Name:                         req.Name,
		Description:                  req.Description,
		InterestType:                 domain.InterestType(req.InterestType),
		InterestRateMonthly:          rate,
		TenureMonths:                 req.TenureMonths,
		PrincipalRepaymentPercentage: repayPct,
		PrincipalRepaymentStartMonth: req.PrincipalRepaymentStartMonth,
	}

	for _, v := range req.Variants {
		variant, err := toVariantInput(v)
		if err != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "variants", Message: err.Error()},
			})
		}
		input.Variants = append(input.Variants, variant)
	}

	plan, err := h.planService.CreatePlan(c.Request().Context(), input)
	if err != nil {
		return fromDomainError(c, err, "Failed to create plan")
	}

	return c.JSON(http.StatusCreated, toPlanResponse(plan))
}

// GetPlans handles GET /api/v1/plans
func (h *PlanHandler) GetPlans(c echo.Context) error {
	includeInactive := c.QueryParam("includeInactive") == "true"

	plans, err := h.planService.GetPlans(c.Request().Context(), includeInactive)
	if err != nil {
		return fromDomainError(c, err, "Failed to get plans")
	}

	response := make([]PlanResponse, len(plans))
	for i, plan := range plans {
		response[i] = toPlanResponse(plan)
	}

	return c.JSON(http.StatusOK, response)
}

// GetPlan handles GET /api/v1/plans/:id
func (h *PlanHandler) GetPlan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid plan ID", nil)
	}

	plan, err := h.planService.GetPlan(c.Request().Context(), id)
	if err != nil {
		return fromDomainError(c, err, "Failed to get plan")
	}

	return c.JSON(http.StatusOK, toPlanResponse(plan))
}

// AddVariant handles POST /api/v1/plans/:id/variants
func (h *PlanHandler) AddVariant(c echo.Context) error {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid plan ID", nil)
	}

	var req VariantRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, err := toVariantInput(req)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "interestRateMonthly", Message: err.Error()},
		})
	}

	variant, err := h.planService.AddVariant(c.Request().Context(), planID, input)
	if err != nil {
		return fromDomainError(c, err, "Failed to add plan variant")
	}

	return c.JSON(http.StatusCreated, toVariantResponse(variant))
}

// DeactivatePlan handles DELETE /api/v1/plans/:id
func (h *PlanHandler) DeactivatePlan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid plan ID", nil)
	}

	if err := h.planService.DeactivatePlan(c.Request().Context(), id); err != nil {
		return fromDomainError(c, err, "Failed to deactivate plan")
	}

	return c.NoContent(http.StatusNoContent)
}

func toVariantInput(req VariantRequest) (service.VariantInput, error) {
	rate, err := decimal.NewFromString(req.InterestRateMonthly)
	if err != nil {
		return service.VariantInput{}, err
	}

	input := service.VariantInput{
		PaymentType:             domain.PaymentType(req.PaymentType),
		InterestRateMonthly:     rate,
		PrincipalSettlementTerm: req.PrincipalSettlementTerm,
		IsDefault:               req.IsDefault,
	}

	if req.PrincipalRepaymentOption != nil {
		opt := domain.PrincipalRepaymentOption(*req.PrincipalRepaymentOption)
		input.PrincipalRepaymentOption = &opt
	}
	if req.PayoutFrequency != nil {
		freq := domain.PayoutFrequency(*req.PayoutFrequency)
		input.PayoutFrequency = &freq
	}
	if req.WithdrawalAfterPercentage != nil {
		pct, err := decimal.NewFromString(*req.WithdrawalAfterPercentage)
		if err != nil {
			return service.VariantInput{}, err
		}
		input.WithdrawalAfterPercentage = &pct
	}
	if req.PrincipalRepaymentPercentage != nil {
		pct, err := decimal.NewFromString(*req.PrincipalRepaymentPercentage)
		if err != nil {
			return service.VariantInput{}, err
		}
		input.PrincipalRepaymentPercentage = &pct
	}

	return input, nil
}

func toVariantResponse(v *domain.RepaymentPlanVariant) VariantResponse {
	resp := VariantResponse{
		ID:                      v.ID.String(),
		PlanID:                  v.PlanID.String(),
		PaymentType:             string(v.PaymentType),
		InterestRateMonthly:     v.InterestRateMonthly.String(),
		PrincipalSettlementTerm: v.PrincipalSettlementTerm,
		IsDefault:               v.IsDefault,
		Active:                  v.Active,
	}
	if v.PrincipalRepaymentOption != nil {
		opt := string(*v.PrincipalRepaymentOption)
		resp.PrincipalRepaymentOption = &opt
	}
	if v.PayoutFrequency != nil {
		freq := string(*v.PayoutFrequency)
		resp.PayoutFrequency = &freq
	}
	if v.WithdrawalAfterPercentage != nil {
		pct := v.WithdrawalAfterPercentage.String()
		resp.WithdrawalAfterPercentage = &pct
	}
	if v.PrincipalRepaymentPercentage != nil {
		pct := v.PrincipalRepaymentPercentage.String()
		resp.PrincipalRepaymentPercentage = &pct
	}
	return resp
}

func toPlanResponse(plan *domain.Plan) PlanResponse {
	resp := PlanResponse{
		ID:                           plan.ID.String(),
		Name:                         plan.Name,
		Description:                  plan.Description,
		InterestType:                 string(plan.InterestType),
		InterestRateMonthly:          plan.InterestRateMonthly.String(),
		TenureMonths:                 plan.TenureMonths,
		PrincipalRepaymentPercentage: plan.PrincipalRepaymentPercentage.String(),
		PrincipalRepaymentStartMonth: plan.PrincipalRepaymentStartMonth,
		Active:                       plan.Active,
		CreatedAt:                    plan.CreatedAt.Format(time.RFC3339),
	}
	for _, v := range plan.Variants {
		resp.Variants = append(resp.Variants, toVariantResponse(v))
	}
	return resp
}
