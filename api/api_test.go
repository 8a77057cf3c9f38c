package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/parrilla/backoffice/access"
	"github.com/parrilla/backoffice/finance"
	"github.com/parrilla/backoffice/generic"
	"github.com/parrilla/backoffice/payroll"
	"github.com/parrilla/backoffice/shift"
	"github.com/parrilla/backoffice/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.March, 15, 20, 0, 0, 0, time.UTC)

type testServer struct {
	handler *Handler
	router  http.Handler
}

func newTestServer(t *testing.T, auth *Auth) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	clock := func() time.Time { return testNow }

	p := payroll.NewService(store, logger)
	p.Now = clock
	s := shift.NewService(store, logger)
	s.Now = clock
	f := finance.NewService(store, logger)
	f.Now = clock

	h := NewHandler(p, s, f, store, logger)
	return &testServer{handler: h, router: NewRouter(h, Options{Logger: logger, Auth: auth})}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (ts *testServer) createEmployee(t *testing.T) EmployeeDTO {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/employees", map[string]string{
		"name":            "Lucía",
		"position":        "Parrillera",
		"scheduled_start": "17:00",
		"scheduled_end":   "01:00",
		"monthly_salary":  "300000",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[EmployeeDTO](t, rec)
}

// =============================================================================
// PAYROLL
// =============================================================================

func TestAttendance_PricesOvernightOvertime(t *testing.T) {
	ts := newTestServer(t, nil)
	emp := ts.createEmployee(t)
	assert.Equal(t, "300000.00", emp.MonthlySalary)
	assert.Equal(t, "1500.00", emp.HourlyRate)

	// WHEN: she stays until 02:30 on a 17:00-01:00 schedule
	rec := ts.do(t, http.MethodPost, "/api/attendance", map[string]string{
		"employee_id": emp.ID,
		"date":        "2025-03-12",
		"check_in":    "17:00",
		"check_out":   "02:30",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := decode[AttendanceResponse](t, rec)

	// THEN: 90 minutes at 1500 × 1.5
	assert.Equal(t, "3375.00", got.Record.OvertimeAmount)
	assert.Equal(t, 90, got.Overtime.OvertimeMinutes)
	assert.Equal(t, "09:30", got.Overtime.Worked)
	assert.Equal(t, "01:30", got.Overtime.Overtime)
	assert.Equal(t, "1.5", got.Overtime.Multiplier)
	assert.False(t, got.Record.Paid)

	// and the month summary owes it until it is paid
	rec = ts.do(t, http.MethodGet, "/api/employees/"+emp.ID+"/summary?year=2025&month=3", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	summary := decode[SummaryDTO](t, rec)
	assert.Equal(t, "3375.00", summary.TotalDebt)
	assert.Equal(t, 1, summary.Records)

	rec = ts.do(t, http.MethodPost, "/api/attendance/pay-all", map[string]string{"employee_id": emp.ID}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	paid := decode[PayAllResponse](t, rec)
	assert.Equal(t, 1, paid.Records)
	assert.Equal(t, "3375.00", paid.Amount)

	rec = ts.do(t, http.MethodGet, "/api/employees/"+emp.ID+"/summary?year=2025&month=3", nil, "")
	summary = decode[SummaryDTO](t, rec)
	assert.Equal(t, "0.00", summary.TotalDebt)
	assert.Equal(t, "3375.00", summary.TotalPaid)
}

func TestAttendance_HolidayDoublesRate(t *testing.T) {
	ts := newTestServer(t, nil)
	emp := ts.createEmployee(t)

	rec := ts.do(t, http.MethodPost, "/api/holidays", map[string]any{"date": "2025-05-25", "name": "Revolución de Mayo", "recurring": true}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/attendance", map[string]string{
		"employee_id": emp.ID,
		"date":        "2026-05-25",
		"check_in":    "17:00",
		"check_out":   "02:00",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := decode[AttendanceResponse](t, rec)
	assert.True(t, got.Record.IsHoliday)
	assert.Equal(t, "3000.00", got.Record.OvertimeAmount)
}

func TestAttendance_AbsenceConflictIsReported(t *testing.T) {
	ts := newTestServer(t, nil)
	emp := ts.createEmployee(t)

	rec := ts.do(t, http.MethodPost, "/api/attendance", map[string]string{
		"employee_id": emp.ID, "date": "2025-03-03", "check_in": "17:00", "check_out": "01:00",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = ts.do(t, http.MethodPost, "/api/absences", map[string]string{
		"employee_id": emp.ID, "date": "2025-03-03", "reason": "Médico",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/employees/"+emp.ID+"/summary?year=2025&month=3", nil, "")
	summary := decode[SummaryDTO](t, rec)
	assert.Equal(t, 1, summary.Absences)
	assert.Equal(t, []string{"2025-03-03"}, summary.Conflicts)
}

func TestRequests_AreValidated(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name  string
		path  string
		body  any
		field string
	}{
		{"bad clock", "/api/employees", map[string]string{"name": "X", "scheduled_start": "25:00", "scheduled_end": "17:00", "monthly_salary": "1"}, "scheduled_start"},
		{"bad amount", "/api/employees", map[string]string{"name": "X", "scheduled_start": "09:00", "scheduled_end": "17:00", "monthly_salary": "mucho"}, "monthly_salary"},
		{"bad date", "/api/holidays", map[string]string{"date": "25/05/2025", "name": "Mayo"}, "date"},
		{"unknown method", "/api/shifts/current/transactions", map[string]string{"type": "INCOME", "method": "CHEQUE", "amount": "1"}, "method"},
		{"zero wallet entry", "/api/wallet", map[string]string{"type": "INCOME", "amount": "0"}, "amount"},
		{"empty inventory", "/api/inventory", map[string]any{"items": []any{}}, "items"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, tt.path, tt.body, "")
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			resp := decode[struct {
				Code    string       `json:"code"`
				Details []FieldError `json:"details"`
			}](t, rec)
			assert.Equal(t, "validation_failed", resp.Code)
			require.NotEmpty(t, resp.Details)
			assert.Contains(t, resp.Details[0].Field, tt.field)
		})
	}
}

func TestEmployee_NotFound(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.do(t, http.MethodGet, "/api/employees/ghost", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[ErrorResponse](t, rec).Code)
}

func TestAmount_ParseErrorReachesClient(t *testing.T) {
	// GIVEN a product whose royalties slipped past validation unparsed
	ts := newTestServer(t, nil)
	req := ProductRequest{Name: "Bife", LaborCost: "100", MaterialCost: "200", Royalties: "mucho", Profit: "50"}

	// WHEN it is converted
	_, err := req.toDomain("")

	// THEN the error names the field and is a client error
	require.Error(t, err)
	assert.ErrorIs(t, err, generic.ErrInvalidAmount)
	assert.Contains(t, err.Error(), "royalties")

	// AND it is reported as 400 instead of saving a zero
	rec := httptest.NewRecorder()
	ts.handler.fail(rec, httptest.NewRequest(http.MethodPost, "/api/products", nil), err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_input", decode[ErrorResponse](t, rec).Code)

	_, err = amount("final_cash", "1,234.50")
	assert.ErrorIs(t, err, generic.ErrInvalidAmount)
}

// =============================================================================
// CASH SHIFT & INVENTORY
// =============================================================================

func TestCashShift_Lifecycle(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/api/shifts", map[string]string{"initial_amount": "1.000,00", "opened_by": "caja"}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	opened := decode[CashShiftDTO](t, rec)
	assert.Equal(t, "1000.00", opened.InitialAmount)

	// A second shift cannot open while this one is open.
	rec = ts.do(t, http.MethodPost, "/api/shifts", map[string]string{"initial_amount": "500"}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	for _, tx := range []map[string]string{
		{"type": "INCOME", "method": "CASH", "category": "salón", "amount": "500"},
		{"type": "EXPENSE", "method": "CASH", "category": "Proveedores", "amount": "200"},
		{"type": "INCOME", "method": "TRANSFER", "category": "Delivery", "amount": "300"},
	} {
		rec = ts.do(t, http.MethodPost, "/api/shifts/current/transactions", tx, "")
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = ts.do(t, http.MethodGet, "/api/shifts/current", nil, "")
	current := decode[CurrentShiftResponse](t, rec)
	require.NotNil(t, current.Shift)
	assert.Equal(t, "1300.00", current.Shift.RunningCash)
	assert.Equal(t, "300.00", current.Shift.RunningTransfer)
	require.Len(t, current.Shift.Transactions, 3)
	assert.Equal(t, "1500.00", current.Shift.Transactions[0].CashAfter)
	assert.Equal(t, "1300.00", current.Shift.Transactions[2].CashAfter)

	// WHEN: the cashier counts 5 short
	rec = ts.do(t, http.MethodPost, "/api/shifts/current/close", map[string]any{
		"final_cash":     "1295",
		"final_transfer": "300",
		"orders":         map[string]int{"salon": 12, "delivery": 4},
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	closed := decode[ShiftReportResponse](t, rec)

	// THEN: still within tolerance
	assert.Equal(t, "CLOSED", closed.Shift.Status)
	assert.Equal(t, "1300.00", closed.Report.ExpectedCash)
	assert.Equal(t, "-5.00", closed.Report.CashVariance)
	assert.True(t, closed.Report.Balanced)
	assert.Equal(t, 16, closed.Report.Orders)

	// No shift is open any more.
	rec = ts.do(t, http.MethodPost, "/api/shifts/current/transactions", map[string]string{"type": "INCOME", "method": "CASH", "amount": "1"}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/shifts/"+opened.ID+"/report", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "-5.00", decode[ShiftReportResponse](t, rec).Report.CashVariance)

	rec = ts.do(t, http.MethodGet, "/api/shifts/current", nil, "")
	assert.Nil(t, decode[CurrentShiftResponse](t, rec).Shift)
}

func TestInventory_RequiresEveryCount(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/api/inventory", map[string]any{
		"items": []map[string]string{
			{"name": "Vacío", "unit": "kg", "initial": "8,5"},
			{"name": "Chorizo", "unit": "u", "initial": "40"},
		},
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/inventory/current/close", map[string]any{
		"finals": map[string]string{"vacío": "2"},
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	missing := decode[struct {
		Code    string   `json:"code"`
		Details []string `json:"details"`
	}](t, rec)
	assert.Equal(t, "missing_count", missing.Code)
	assert.Equal(t, []string{"Chorizo"}, missing.Details)

	rec = ts.do(t, http.MethodPost, "/api/inventory/current/close", map[string]any{
		"finals": map[string]string{"vacío": "2", "CHORIZO": "41"},
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	session := decode[InventorySessionDTO](t, rec)
	assert.Equal(t, "CLOSED", session.Status)
	assert.Equal(t, "6.5", session.Items[0].Consumption)
	assert.Equal(t, "-1", session.Items[1].Consumption)
	assert.Equal(t, []string{"Chorizo"}, session.Increases)
}

func TestInventory_FractionalKilograms(t *testing.T) {
	ts := newTestServer(t, nil)

	// GIVEN: weights typed with a decimal point and three places
	rec := ts.do(t, http.MethodPost, "/api/inventory", map[string]any{
		"items": []map[string]string{
			{"name": "Vacío", "unit": "kg", "initial": "2.500"},
			{"name": "Molleja", "unit": "kg", "initial": "1.125"},
		},
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	opened := decode[InventorySessionDTO](t, rec)
	assert.Equal(t, "2.5", opened.Items[0].Initial)

	// WHEN: the counts echoed back are used as closing counts
	rec = ts.do(t, http.MethodPost, "/api/inventory/current/close", map[string]any{
		"finals": map[string]string{"Vacío": "0.750", "Molleja": opened.Items[1].Initial},
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	closed := decode[InventorySessionDTO](t, rec)

	// THEN: consumption stays in kilograms
	assert.Equal(t, "1.75", closed.Items[0].Consumption)
	assert.Equal(t, "0", closed.Items[1].Consumption)
}

func TestInventory_RejectsCommaBeforeDecimalPoint(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.do(t, http.MethodPost, "/api/inventory", map[string]any{
		"items": []map[string]string{{"name": "Carbón", "unit": "kg", "initial": "1,234.50"}},
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, "validation_failed", decode[ErrorResponse](t, rec).Code)
}

// =============================================================================
// FINANCE
// =============================================================================

func (ts *testServer) seedMenuAndPartners(t *testing.T) ProductDTO {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/products", map[string]string{
		"name": "Empanada", "labor_cost": "300", "material_cost": "400", "royalties": "150", "profit": "150",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	product := decode[ProductDTO](t, rec)

	for _, p := range []map[string]string{
		{"name": "Ana", "share_percentage": "60"},
		{"name": "Bruno", "share_percentage": "40"},
	} {
		rec = ts.do(t, http.MethodPost, "/api/partners", p, "")
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	return product
}

func TestProjection_CreditsPartnersAndRoyaltiesArePaid(t *testing.T) {
	ts := newTestServer(t, nil)
	product := ts.seedMenuAndPartners(t)
	assert.Equal(t, "1000.00", product.UnitPrice)

	rec := ts.do(t, http.MethodPost, "/api/calculator/quote", map[string]any{"quantities": map[string]int{product.ID: 10}}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	quote := decode[QuoteDTO](t, rec)
	assert.Equal(t, "10000.00", quote.Total)
	assert.Equal(t, "Regalías", quote.Labels["profit"])

	// WHEN: the projection closes at the theoretical total
	rec = ts.do(t, http.MethodPost, "/api/projections", map[string]any{"quantities": map[string]int{product.ID: 10}}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	proj := decode[ProjectionResponse](t, rec)
	assert.Equal(t, "1500.00", proj.Projection.AdjustedPartnerProfit)
	require.NotNil(t, proj.Wallet)
	assert.Equal(t, "10000.00", proj.Wallet.Amount)

	// THEN: 60/40 of the partner profit is owed
	rec = ts.do(t, http.MethodGet, "/api/partners/royalties", nil, "")
	summary := decode[RoyaltySummaryDTO](t, rec)
	assert.Equal(t, "1500.00", summary.Pool)
	var ana PartnerDTO
	for _, p := range summary.Partners {
		if p.Name == "Ana" {
			ana = p
		}
	}
	assert.Equal(t, "900.00", ana.Balance)

	// Paying more than owed is refused.
	rec = ts.do(t, http.MethodPost, "/api/partners/"+ana.ID+"/payments", map[string]string{"amount": "1000"}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, "insufficient_balance", decode[ErrorResponse](t, rec).Code)

	rec = ts.do(t, http.MethodPost, "/api/partners/"+ana.ID+"/payments", map[string]string{"amount": "500"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	paid := decode[RoyaltyPaymentResponse](t, rec)
	assert.Equal(t, "400.00", paid.Partner.Balance)
	assert.Equal(t, "EXPENSE", paid.Wallet.Type)

	// No amount settles the rest; then nothing is left to pay.
	rec = ts.do(t, http.MethodPost, "/api/partners/"+ana.ID+"/payments", map[string]string{}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "0.00", decode[RoyaltyPaymentResponse](t, rec).Partner.Balance)
	rec = ts.do(t, http.MethodPost, "/api/partners/"+ana.ID+"/payments", map[string]string{}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/wallet/balance", nil, "")
	balance := decode[WalletBalanceDTO](t, rec)
	assert.Equal(t, "10000.00", balance.Income)
	assert.Equal(t, "900.00", balance.Expense)
	assert.Equal(t, "9100.00", balance.Net)
}

func TestProjection_UnknownProduct(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.seedMenuAndPartners(t)
	rec := ts.do(t, http.MethodPost, "/api/projections", map[string]any{"quantities": map[string]int{"ghost": 1}}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWallet_VoidLeavesBalance(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/api/wallet", map[string]string{"type": "EXPENSE", "category": "Proveedores", "amount": "1.234,50", "date": "2025-03-02"}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	entry := decode[WalletDTO](t, rec)
	assert.Equal(t, "1234.50", entry.Amount)

	rec = ts.do(t, http.MethodDelete, "/api/wallet/"+entry.ID+"?by=admin", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[WalletDTO](t, rec).Voided)

	rec = ts.do(t, http.MethodDelete, "/api/wallet/"+entry.ID, nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/wallet?year=2025&month=3", nil, "")
	assert.Empty(t, decode[[]WalletDTO](t, rec))
	rec = ts.do(t, http.MethodGet, "/api/wallet?year=2025&month=3&voided=true", nil, "")
	assert.Len(t, decode[[]WalletDTO](t, rec), 1)

	rec = ts.do(t, http.MethodGet, "/api/wallet/balance?year=2025&month=3", nil, "")
	assert.Equal(t, "0.00", decode[WalletBalanceDTO](t, rec).Net)
}

func TestFixedExpense_Instalments(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/api/expenses", map[string]string{"name": "Alquiler", "amount": "1000", "due_date": "2025-03-10"}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rent := decode[FixedExpenseDTO](t, rec)
	assert.True(t, rent.IsOverdue)

	rec = ts.do(t, http.MethodPost, "/api/expenses/"+rent.ID+"/payments", map[string]string{"amount": "400"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "600.00", decode[ExpensePaymentResponse](t, rec).Expense.Outstanding)

	// Paying past what is outstanding is rejected.
	rec = ts.do(t, http.MethodPost, "/api/expenses/"+rent.ID+"/payments", map[string]string{"amount": "601"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/expenses/"+rent.ID+"/payments", map[string]string{}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	settled := decode[ExpensePaymentResponse](t, rec)
	assert.True(t, settled.Expense.IsPaid)
	assert.False(t, settled.Expense.IsOverdue)
	assert.Equal(t, "600.00", settled.Wallet.Amount)
}

// =============================================================================
// AUTH & SCENARIOS
// =============================================================================

func TestAuth_RoleGates(t *testing.T) {
	auth := NewAuth("test-secret", time.Hour)
	ts := newTestServer(t, auth)

	cashier, err := auth.IssueToken("caja1", access.RoleCashier)
	require.NoError(t, err)
	cook, err := auth.IssueToken("cocina", access.RoleCook)
	require.NoError(t, err)

	rec := ts.do(t, http.MethodGet, "/api/shifts/current", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/shifts/current", nil, cashier)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, http.MethodGet, "/api/employees", nil, cashier)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = ts.do(t, http.MethodGet, "/api/inventory", nil, cook)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, http.MethodGet, "/api/wallet", nil, cook)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = ts.do(t, http.MethodGet, "/api/scenarios", nil, cook)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/me", nil, cashier)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[MeDTO](t, rec)
	assert.Equal(t, "caja1", me.User)
	assert.Equal(t, access.RoleCashier, me.Role)
	assert.Equal(t, []access.Module{access.ModuleOps}, me.Modules)

	// The token's user is recorded as the actor.
	rec = ts.do(t, http.MethodPost, "/api/shifts", map[string]string{"initial_amount": "100", "opened_by": "someone else"}, cashier)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "caja1", decode[CashShiftDTO](t, rec).OpenedBy)

	_, err = auth.IssueToken("x", access.Role("owner"))
	assert.Error(t, err)
}

func TestScenario_BusyService(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/api/scenarios/load", map[string]string{"scenario_id": "busy-service"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	loaded := decode[ScenarioResponse](t, rec)
	assert.Equal(t, 3, loaded.Counts["products"])

	rec = ts.do(t, http.MethodGet, "/api/partners/royalties", nil, "")
	assert.Equal(t, "31000.00", decode[RoyaltySummaryDTO](t, rec).Pool)

	rec = ts.do(t, http.MethodGet, "/api/shifts/current", nil, "")
	current := decode[CurrentShiftResponse](t, rec)
	require.NotNil(t, current.Shift)
	assert.Equal(t, "57000.00", current.Shift.RunningCash)

	rec = ts.do(t, http.MethodGet, "/api/scenarios/current", nil, "")
	assert.Equal(t, "busy-service", decode[ScenarioDTO](t, rec).ID)

	// Loading again starts from a clean store.
	rec = ts.do(t, http.MethodPost, "/api/scenarios/load", map[string]string{"scenario_id": "payroll-month"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = ts.do(t, http.MethodGet, "/api/products", nil, "")
	assert.Empty(t, decode[[]ProductDTO](t, rec))
	rec = ts.do(t, http.MethodGet, "/api/employees", nil, "")
	assert.Len(t, decode[[]EmployeeDTO](t, rec), 3)

	rec = ts.do(t, http.MethodPost, "/api/scenarios/load", map[string]string{"scenario_id": "nope"}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
