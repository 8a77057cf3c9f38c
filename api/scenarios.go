/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	restaurant data. Every record goes through the services, so overtime,
	partner credits and wallet entries are computed exactly as in real use.

AVAILABLE SCENARIOS:

	empty:          Nothing but a clean store
	payroll-month:  Three employees, a holiday, priced attendance, an
	                absence, a sanction and one employee already paid
	busy-service:   Menu, partners, a closed projection, fixed expenses,
	                an open cash shift and an open inventory count

HOW SCENARIOS WORK:
 1. Reset the store (clear all data)
 2. Run the loader against the services
 3. Remember the loaded scenario for GET /api/scenarios/current

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "busy-service"}

NOTE:

	Scenarios reset the store. The route is admin-only.

SEE ALSO:
  - server.go: /api/scenarios routes
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/parrilla/backoffice/finance"
	"github.com/parrilla/backoffice/generic"
	"github.com/parrilla/backoffice/payroll"
	"github.com/parrilla/backoffice/shift"
	"github.com/shopspring/decimal"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "empty",
		Name:        "Empty",
		Description: "Clean store with no records",
	},
	{
		ID:          "payroll-month",
		Name:        "Payroll Month",
		Description: "Attendance with overtime, a holiday shift, an absence and a sanction",
	},
	{
		ID:          "busy-service",
		Name:        "Busy Service",
		Description: "Closed projection with partner credits, fixed expenses, open cash shift and inventory",
	},
}

type scenarioLoader func(ctx context.Context, h *Handler) (map[string]int, error)

var scenarioLoaders = map[string]scenarioLoader{
	"empty":         func(context.Context, *Handler) (map[string]int, error) { return map[string]int{}, nil },
	"payroll-month": loadPayrollMonth,
	"busy-service":  loadBusyService,
}

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the loaded scenario, null when none is.
// GET /api/scenarios/current
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.scenarioMu.Lock()
	current := h.currentScenario
	h.scenarioMu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the store and loads a predefined scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id" validate:"required"`
	}
	if err := h.readJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	load, ok := scenarioLoaders[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "Unknown scenario "+req.ScenarioID, nil)
		return
	}
	if h.Resetter == nil {
		writeError(w, http.StatusNotImplemented, "unsupported", "Store cannot be reset", nil)
		return
	}

	h.scenarioMu.Lock()
	defer h.scenarioMu.Unlock()

	ctx := r.Context()
	if err := h.Resetter.Reset(ctx); err != nil {
		h.fail(w, r, fmt.Errorf("reset store: %w", err))
		return
	}
	h.currentScenario = ""

	counts, err := load(ctx, h)
	if err != nil {
		h.fail(w, r, fmt.Errorf("load scenario %s: %w", req.ScenarioID, err))
		return
	}
	h.currentScenario = req.ScenarioID
	h.Logger.Info("scenario loaded", "scenario", req.ScenarioID, "counts", counts)

	for _, s := range scenarios {
		if s.ID == req.ScenarioID {
			writeJSON(w, http.StatusOK, ScenarioResponse{Scenario: s, Counts: counts})
			return
		}
	}
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func loadPayrollMonth(ctx context.Context, h *Handler) (map[string]int, error) {
	now := h.Payroll.Now()
	first := generic.StartOfMonth(now.Year(), now.Month())
	counts := map[string]int{}

	// Holidays must exist before the attendance they affect is recorded.
	if _, err := h.Payroll.AddHoliday(ctx, generic.Holiday{Date: first.AddDays(4), Name: "Feriado de demostración"}); err != nil {
		return nil, err
	}
	if _, err := h.Payroll.AddHoliday(ctx, generic.Holiday{Date: generic.NewTimePoint(now.Year(), time.May, 25), Name: "Revolución de Mayo", Recurring: true}); err != nil {
		return nil, err
	}
	counts["holidays"] = 2

	hire := func(name, position, start, end, salary string) (payroll.Employee, error) {
		return h.Payroll.HireEmployee(ctx, payroll.Employee{
			Name:           name,
			Position:       position,
			ScheduledStart: start,
			ScheduledEnd:   end,
			MonthlySalary:  decimal.RequireFromString(salary),
		})
	}
	lucia, err := hire("Lucía", "Parrillera", "17:00", "01:00", "300000")
	if err != nil {
		return nil, err
	}
	tomas, err := hire("Tomás", "Mozo", "12:00", "20:00", "250000")
	if err != nil {
		return nil, err
	}
	carla, err := hire("Carla", "Cajera", "09:00", "17:00", "220000")
	if err != nil {
		return nil, err
	}
	counts["employees"] = 3

	days := []struct {
		employee string
		offset   int
		in, out  string
	}{
		{lucia.ID, 0, "17:00", "02:30"}, // 1.5h past midnight
		{lucia.ID, 4, "17:00", "02:00"}, // holiday, double rate
		{tomas.ID, 1, "12:00", "19:30"}, // left early, no overtime
		{carla.ID, 2, "09:00", "18:00"},
		{carla.ID, 3, "08:30", "17:30"},
	}
	for _, d := range days {
		if _, _, err := h.Payroll.RecordAttendance(ctx, payroll.AttendanceInput{
			EmployeeID: d.employee,
			Date:       first.AddDays(d.offset),
			CheckIn:    d.in,
			CheckOut:   d.out,
		}); err != nil {
			return nil, err
		}
	}
	counts["attendance"] = len(days)

	if _, err := h.Payroll.RecordAbsence(ctx, payroll.AbsenceRecord{EmployeeID: tomas.ID, Date: first.AddDays(3), Reason: "Enfermedad"}); err != nil {
		return nil, err
	}
	counts["absences"] = 1

	if _, err := h.Payroll.RecordSanction(ctx, payroll.Sanction{
		EmployeeID:  tomas.ID,
		Date:        first.AddDays(3),
		Kind:        payroll.SanctionWarning,
		Description: "Ausencia sin aviso previo",
	}); err != nil {
		return nil, err
	}
	counts["sanctions"] = 1

	paid, _, err := h.Payroll.PayAll(ctx, carla.ID, generic.Period{})
	if err != nil {
		return nil, err
	}
	counts["paid_records"] = paid
	return counts, nil
}

func loadBusyService(ctx context.Context, h *Handler) (map[string]int, error) {
	counts := map[string]int{}
	d := decimal.RequireFromString

	menu := []finance.Product{
		{Name: "Empanada", LaborCost: d("300"), MaterialCost: d("400"), Royalties: d("150"), Profit: d("150")},
		{Name: "Bife de chorizo", LaborCost: d("3000"), MaterialCost: d("6000"), Royalties: d("1500"), Profit: d("1500")},
		{Name: "Provoleta", LaborCost: d("500"), MaterialCost: d("1200"), Royalties: d("300"), Profit: d("300")},
	}
	ids := make([]string, 0, len(menu))
	for _, p := range menu {
		saved, err := h.Finance.SaveProduct(ctx, p)
		if err != nil {
			return nil, err
		}
		ids = append(ids, saved.ID)
	}
	counts["products"] = len(menu)

	for _, p := range []finance.Partner{
		{Name: "Ana", SharePercentage: d("60")},
		{Name: "Bruno", SharePercentage: d("40")},
	} {
		if _, err := h.Finance.SavePartner(ctx, p); err != nil {
			return nil, err
		}
	}
	counts["partners"] = 2

	// 40 empanadas + 10 bifes quote 160000; selling 170000 lifts the
	// partner profit from 21000 to 31000.
	sales := d("170000")
	if _, err := h.Finance.CloseProjection(ctx, map[string]int{ids[0]: 40, ids[1]: 10}, &sales, "demo"); err != nil {
		return nil, err
	}
	counts["projections"] = 1

	rent, err := h.Finance.SaveFixedExpense(ctx, finance.FixedExpense{
		Name: "Alquiler", Category: "Alquiler", Amount: d("450000"), DueDate: generic.DateOf(h.Finance.Now()).AddDays(10),
	})
	if err != nil {
		return nil, err
	}
	if _, err := h.Finance.SaveFixedExpense(ctx, finance.FixedExpense{
		Name: "Luz", Category: "Servicios", Amount: d("85000"), DueDate: generic.DateOf(h.Finance.Now()).AddDays(-2),
	}); err != nil {
		return nil, err
	}
	half := d("225000")
	if _, _, err := h.Finance.PayExpense(ctx, rent.ID, &half, "demo"); err != nil {
		return nil, err
	}
	counts["fixed_expenses"] = 2

	if _, err := h.Finance.RecordWallet(ctx, finance.WalletInput{
		Type: generic.Expense, Category: "Proveedores", Description: "Media res", Amount: d("95000"),
	}, "demo"); err != nil {
		return nil, err
	}

	if _, err := h.Shifts.OpenCashShift(ctx, d("20000"), "demo"); err != nil {
		return nil, err
	}
	movements := []shift.TransactionInput{
		{Type: generic.Income, Method: generic.MethodCash, Category: "Salón", Amount: d("45000")},
		{Type: generic.Income, Method: generic.MethodTransfer, Category: "Delivery", Amount: d("30000")},
		{Type: generic.Expense, Method: generic.MethodCash, Category: "Proveedores", Description: "Carbón", Amount: d("8000")},
	}
	for _, m := range movements {
		if _, err := h.Shifts.RecordCashTransaction(ctx, m); err != nil {
			return nil, err
		}
	}
	counts["cash_transactions"] = len(movements)

	if _, err := h.Shifts.OpenInventory(ctx, []shift.InventoryItem{
		{Name: "Vacío", Unit: "kg", Initial: d("12")},
		{Name: "Chorizo", Unit: "u", Initial: d("40")},
		{Name: "Provoleta", Unit: "u", Initial: d("15")},
	}, "demo"); err != nil {
		return nil, err
	}
	counts["inventory_items"] = 3
	return counts, nil
}
