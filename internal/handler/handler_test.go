package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/veloxfin/velox-backend/internal/domain"
	"github.com/veloxfin/velox-backend/internal/service"
	"github.com/veloxfin/velox-backend/internal/testutil"
)

// testEnv wires every handler to in-memory repositories.
type testEnv struct {
	e         *echo.Echo
	plans     *testutil.MockPlanRepository
	contracts *testutil.MockContractRepository
	publisher *testutil.MockEventPublisher

	contractService *service.ContractService

	planHandler     *PlanHandler
	quoteHandler    *QuoteHandler
	contractHandler *ContractHandler
	paymentHandler  *PaymentHandler
}

func newTestEnv() *testEnv {
	plans := testutil.NewMockPlanRepository()
	contracts := testutil.NewMockContractRepository()
	schedules := testutil.NewMockScheduleRepository(contracts)
	payments := testutil.NewMockPaymentRepository(contracts)
	publisher := &testutil.MockEventPublisher{}

	planService := service.NewPlanService(plans)
	quoteService := service.NewQuoteService(plans)
	contractService := service.NewContractService(contracts, schedules, plans, publisher)
	paymentService := service.NewPaymentService(contracts, schedules, payments, publisher)

	return &testEnv{
		e:         echo.New(),
		plans:     plans,
		contracts: contracts,
		publisher: publisher,

		contractService: contractService,

		planHandler:     NewPlanHandler(planService),
		quoteHandler:    NewQuoteHandler(quoteService),
		contractHandler: NewContractHandler(contractService),
		paymentHandler:  NewPaymentHandler(paymentService),
	}
}

// request builds an echo context for a handler call. Path parameters are
// passed as alternating name/value pairs.
func (env *testEnv) request(method, path, body string, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)
	names := make([]string, 0, len(params)/2)
	values := make([]string, 0, len(params)/2)
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c, rec
}

// seedPlan stores a 12 month flat-rate plan directly in the repository.
func (env *testEnv) seedPlan() *domain.Plan {
	plan := &domain.Plan{
		ID:                           uuid.New(),
		Name:                         "Fixed Income 12M",
		InterestType:                 domain.InterestTypeFlat,
		InterestRateMonthly:          decimal.NewFromFloat(2.5),
		TenureMonths:                 12,
		PrincipalRepaymentPercentage: decimal.NewFromInt(100),
		PrincipalRepaymentStartMonth: 12,
		Active:                       true,
	}
	env.plans.AddPlan(plan)
	return plan
}

// seedContract creates a contract against a seeded plan through the service
// so the schedule and aggregates are real.
func (env *testEnv) seedContract(t *testing.T, start time.Time) *domain.Contract {
	t.Helper()
	plan := env.seedPlan()
	detail, err := env.contractService.CreateContract(context.Background(), service.CreateContractInput{
		PlanID:     plan.ID,
		InvestorID: uuid.New(),
		Principal:  decimal.NewFromInt(100000),
		StartDate:  start,
	})
	if err != nil {
		t.Fatalf("Failed to seed contract: %v", err)
	}
	return detail.Contract
}
