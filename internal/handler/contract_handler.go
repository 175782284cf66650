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

// ContractHandler handles contract HTTP requests
type ContractHandler struct {
	contractService *service.ContractService
}

// NewContractHandler creates a new ContractHandler
func NewContractHandler(contractService *service.ContractService) *ContractHandler {
	return &ContractHandler{contractService: contractService}
}

// CreateContractRequest represents the create contract request body
type CreateContractRequest struct {
	PlanID     string  `json:"planId"`
	VariantID  *string `json:"variantId,omitempty"`
	InvestorID string  `json:"investorId"`
	Principal  string  `json:"principal"`
	StartDate  string  `json:"startDate"`
}

// ContractResponse represents a contract in API responses
type ContractResponse struct {
	ID         string  `json:"id"`
	PlanID     string  `json:"planId"`
	VariantID  *string `json:"variantId,omitempty"`
	InvestorID string  `json:"investorId"`

	Principal    string `json:"principal"`
	StartDate    string `json:"startDate"`
	TenureMonths int32  `json:"tenureMonths"`
	Status       string `json:"status"`

	TotalExpectedReturns  string `json:"totalExpectedReturns"`
	TotalInterestExpected string `json:"totalInterestExpected"`
	TotalPaidAmount       string `json:"totalPaidAmount"`
	TotalInterestPaid     string `json:"totalInterestPaid"`
	TotalPrincipalPaid    string `json:"totalPrincipalPaid"`
	RemainingAmount       string `json:"remainingAmount"`

	CreatedAt string `json:"createdAt"`
}

// ScheduleEntryResponse represents a schedule entry in API responses
type ScheduleEntryResponse struct {
	Period                  int32   `json:"period"`
	DueDate                 string  `json:"dueDate"`
	InterestAmount          string  `json:"interestAmount"`
	PrincipalAmount         string  `json:"principalAmount"`
	TotalAmount             string  `json:"totalAmount"`
	RemainingPrincipalAfter string  `json:"remainingPrincipalAfter"`
	Status                  string  `json:"status"`
	PaidAmount              string  `json:"paidAmount"`
	PaidDate                *string `json:"paidDate,omitempty"`
}

// ContractDetailResponse represents a contract with its schedule
type ContractDetailResponse struct {
	Contract ContractResponse        `json:"contract"`
	Schedule []ScheduleEntryResponse `json:"schedule"`
}

// CreateContract handles POST /api/v1/contracts
func (h *ContractHandler) CreateContract(c echo.Context) error {
	var req CreateContractRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	planID, err := uuid.Parse(req.PlanID)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "planId", Message: "Must be a valid UUID"},
		})
	}

	investorID, err := uuid.Parse(req.InvestorID)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "investorId", Message: "Must be a valid UUID"},
		})
	}

	principal, err := decimal.NewFromString(req.Principal)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "principal", Message: "Must be a valid decimal number"},
		})
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "startDate", Message: "Must be a date in YYYY-MM-DD format"},
		})
	}

	input := service.CreateContractInput{
		PlanID:     planID,
		InvestorID: investorID,
		Principal:  principal,
		StartDate:  startDate,
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

	detail, err := h.contractService.CreateContract(c.Request().Context(), input)
	if err != nil {
		return fromDomainError(c, err, "Failed to create contract")
	}

	return c.JSON(http.StatusCreated, toContractDetailResponse(detail))
}

// GetContract handles GET /api/v1/contracts/:id
func (h *ContractHandler) GetContract(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid contract ID", nil)
	}

	detail, err := h.contractService.GetContract(c.Request().Context(), id)
	if err != nil {
		return fromDomainError(c, err, "Failed to get contract")
	}

	return c.JSON(http.StatusOK, toContractDetailResponse(detail))
}

// GetContractsByInvestor handles GET /api/v1/investors/:investorId/contracts
func (h *ContractHandler) GetContractsByInvestor(c echo.Context) error {
	investorID, err := uuid.Parse(c.Param("investorId"))
	if err != nil {
		return NewValidationError(c, "Invalid investor ID", nil)
	}

	contracts, err := h.contractService.GetContractsByInvestor(c.Request().Context(), investorID)
	if err != nil {
		return fromDomainError(c, err, "Failed to get contracts")
	}

	response := make([]ContractResponse, len(contracts))
	for i, contract := range contracts {
		response[i] = toContractResponse(contract)
	}

	return c.JSON(http.StatusOK, response)
}

// CloseContract handles POST /api/v1/contracts/:id/close
func (h *ContractHandler) CloseContract(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid contract ID", nil)
	}

	contract, err := h.contractService.CloseContract(c.Request().Context(), id)
	if err != nil {
		return fromDomainError(c, err, "Failed to close contract")
	}

	return c.JSON(http.StatusOK, toContractResponse(contract))
}

// DefaultContract handles POST /api/v1/contracts/:id/default
func (h *ContractHandler) DefaultContract(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid contract ID", nil)
	}

	contract, err := h.contractService.DefaultContract(c.Request().Context(), id)
	if err != nil {
		return fromDomainError(c, err, "Failed to default contract")
	}

	return c.JSON(http.StatusOK, toContractResponse(contract))
}

func toContractResponse(contract *domain.Contract) ContractResponse {
	resp := ContractResponse{
		ID:         contract.ID.String(),
		PlanID:     contract.PlanID.String(),
		InvestorID: contract.InvestorID.String(),

		Principal:    contract.Principal.StringFixed(2),
		StartDate:    contract.StartDate.Format("2006-01-02"),
		TenureMonths: contract.TenureMonths,
		Status:       string(contract.Status),

		TotalExpectedReturns:  contract.Aggregates.TotalExpectedReturns.StringFixed(2),
		TotalInterestExpected: contract.Aggregates.TotalInterestExpected.StringFixed(2),
		TotalPaidAmount:       contract.Aggregates.TotalPaidAmount.StringFixed(2),
		TotalInterestPaid:     contract.Aggregates.TotalInterestPaid.StringFixed(2),
		TotalPrincipalPaid:    contract.Aggregates.TotalPrincipalPaid.StringFixed(2),
		RemainingAmount:       contract.Aggregates.RemainingAmount.StringFixed(2),

		CreatedAt: contract.CreatedAt.Format(time.RFC3339),
	}
	if contract.VariantID != nil {
		id := contract.VariantID.String()
		resp.VariantID = &id
	}
	return resp
}

func toScheduleEntryResponse(entry *domain.ScheduleEntry) ScheduleEntryResponse {
	resp := ScheduleEntryResponse{
		Period:                  entry.Period,
		DueDate:                 entry.DueDate.Format("2006-01-02"),
		InterestAmount:          entry.InterestAmount.StringFixed(2),
		PrincipalAmount:         entry.PrincipalAmount.StringFixed(2),
		TotalAmount:             entry.TotalAmount.StringFixed(2),
		RemainingPrincipalAfter: entry.RemainingPrincipalAfter.StringFixed(2),
		Status:                  string(entry.Status),
		PaidAmount:              entry.PaidAmount.StringFixed(2),
	}
	if entry.PaidDate != nil {
		paidDate := entry.PaidDate.Format("2006-01-02")
		resp.PaidDate = &paidDate
	}
	return resp
}

func toContractDetailResponse(detail *service.ContractDetail) ContractDetailResponse {
	resp := ContractDetailResponse{
		Contract: toContractResponse(detail.Contract),
		Schedule: make([]ScheduleEntryResponse, len(detail.Schedule)),
	}
	for i, e := range detail.Schedule {
		resp.Schedule[i] = toScheduleEntryResponse(e)
	}
	return resp
}
