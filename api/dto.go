/*
dto.go - Data Transfer Objects for the HTTP API

PURPOSE:
  Defines the JSON shapes of requests and responses. Domain types never
  leave the package directly: money is rendered as fixed two-decimal
  strings, dates as "YYYY-MM-DD", instants as RFC3339.

NAMING:
  *Request  incoming body, validated with go-playground/validator tags
  *DTO      outgoing representation of one record

SEE ALSO:
  - handlers.go: validation tags amount/positive/clock/date
*/
package api

import (
	"time"

	"github.com/parrilla/backoffice/access"
	"github.com/parrilla/backoffice/finance"
	"github.com/parrilla/backoffice/generic"
	"github.com/parrilla/backoffice/payroll"
	"github.com/parrilla/backoffice/shift"
	"github.com/shopspring/decimal"
)

func money(d decimal.Decimal) string { return d.StringFixed(generic.MoneyPlaces) }

func instant(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func optionalInstant(t *time.Time) string {
	if t == nil {
		return ""
	}
	return instant(*t)
}

func day(tp generic.TimePoint) string {
	if tp.IsZero() {
		return ""
	}
	return tp.String()
}

// =============================================================================
// ACCESS
// =============================================================================

type MeDTO struct {
	User         string              `json:"user,omitempty"`
	Role         access.Role         `json:"role"`
	Capabilities access.Capabilities `json:"capabilities"`
	Modules      []access.Module     `json:"modules"`
}

// =============================================================================
// PAYROLL
// =============================================================================

type EmployeeRequest struct {
	Name           string `json:"name" validate:"required"`
	Position       string `json:"position"`
	ScheduledStart string `json:"scheduled_start" validate:"required,clock"`
	ScheduledEnd   string `json:"scheduled_end" validate:"required,clock"`
	MonthlySalary  string `json:"monthly_salary" validate:"required,amount"`
}

func (req EmployeeRequest) toDomain(id string) (payroll.Employee, error) {
	salary, err := amount("monthly_salary", req.MonthlySalary)
	if err != nil {
		return payroll.Employee{}, err
	}
	return payroll.Employee{
		ID:             id,
		Name:           req.Name,
		Position:       req.Position,
		ScheduledStart: req.ScheduledStart,
		ScheduledEnd:   req.ScheduledEnd,
		MonthlySalary:  salary,
	}, nil
}

type EmployeeDTO struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Position       string `json:"position"`
	ScheduledStart string `json:"scheduled_start"`
	ScheduledEnd   string `json:"scheduled_end"`
	MonthlySalary  string `json:"monthly_salary"`
	HourlyRate     string `json:"hourly_rate"`
	Active         bool   `json:"active"`
	CreatedAt      string `json:"created_at"`
}

func toEmployeeDTO(e payroll.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:             e.ID,
		Name:           e.Name,
		Position:       e.Position,
		ScheduledStart: e.ScheduledStart,
		ScheduledEnd:   e.ScheduledEnd,
		MonthlySalary:  money(e.MonthlySalary),
		HourlyRate:     money(e.HourlyRate()),
		Active:         e.Active,
		CreatedAt:      instant(e.CreatedAt),
	}
}

type AttendanceRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Date       string `json:"date" validate:"required,date"`
	CheckIn    string `json:"check_in" validate:"required,clock"`
	CheckOut   string `json:"check_out" validate:"required,clock"`
}

type AttendanceDTO struct {
	ID             string `json:"id"`
	EmployeeID     string `json:"employee_id"`
	Date           string `json:"date"`
	CheckIn        string `json:"check_in"`
	CheckOut       string `json:"check_out"`
	OvertimeHours  string `json:"overtime_hours"`
	OvertimeAmount string `json:"overtime_amount"`
	Paid           bool   `json:"paid"`
	IsHoliday      bool   `json:"is_holiday"`
	CreatedAt      string `json:"created_at"`
}

func toAttendanceDTO(a payroll.AttendanceRecord) AttendanceDTO {
	return AttendanceDTO{
		ID:             a.ID,
		EmployeeID:     a.EmployeeID,
		Date:           day(a.Date),
		CheckIn:        a.CheckIn,
		CheckOut:       a.CheckOut,
		OvertimeHours:  a.OvertimeHours.String(),
		OvertimeAmount: money(a.OvertimeAmount),
		Paid:           a.Paid,
		IsHoliday:      a.IsHoliday,
		CreatedAt:      instant(a.CreatedAt),
	}
}

// OvertimeDTO explains how a record was priced. Worked and Overtime are
// durations rendered as "HH:MM".
type OvertimeDTO struct {
	WorkedMinutes   int    `json:"worked_minutes"`
	StandardMinutes int    `json:"standard_minutes"`
	OvertimeMinutes int    `json:"overtime_minutes"`
	Worked          string `json:"worked"`
	Overtime        string `json:"overtime"`
	BaseRate        string `json:"base_rate"`
	Multiplier      string `json:"multiplier"`
	Rate            string `json:"rate"`
	IsOvertime      bool   `json:"is_overtime"`
	IsUndertime     bool   `json:"is_undertime"`
}

func toOvertimeDTO(o payroll.OvertimeResult) OvertimeDTO {
	return OvertimeDTO{
		WorkedMinutes:   o.WorkedMinutes,
		StandardMinutes: o.StandardMinutes,
		OvertimeMinutes: o.OvertimeMinutes,
		Worked:          generic.FormatClock(o.WorkedMinutes),
		Overtime:        generic.FormatClock(max(o.OvertimeMinutes, 0)),
		BaseRate:        money(o.BaseRate),
		Multiplier:      o.Multiplier.String(),
		Rate:            money(o.Rate),
		IsOvertime:      o.IsOvertime,
		IsUndertime:     o.IsUndertime,
	}
}

type AttendanceResponse struct {
	Record   AttendanceDTO `json:"record"`
	Overtime OvertimeDTO   `json:"overtime"`
}

type PaidRequest struct {
	Paid *bool `json:"paid" validate:"required"`
}

type PayAllRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	From       string `json:"from" validate:"required_with=To,omitempty,date"`
	To         string `json:"to" validate:"required_with=From,omitempty,date"`
}

type PayAllResponse struct {
	Records int    `json:"records"`
	Amount  string `json:"amount"`
}

type AbsenceRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Date       string `json:"date" validate:"required,date"`
	Reason     string `json:"reason"`
}

type AbsenceDTO struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Reason     string `json:"reason"`
	CreatedAt  string `json:"created_at"`
}

func toAbsenceDTO(a payroll.AbsenceRecord) AbsenceDTO {
	return AbsenceDTO{
		ID:         a.ID,
		EmployeeID: a.EmployeeID,
		Date:       day(a.Date),
		Reason:     a.Reason,
		CreatedAt:  instant(a.CreatedAt),
	}
}

type SanctionRequest struct {
	EmployeeID     string `json:"employee_id" validate:"required"`
	Date           string `json:"date" validate:"required,date"`
	Kind           string `json:"kind" validate:"required,oneof=warning suspension"`
	Description    string `json:"description"`
	SuspensionDays int    `json:"suspension_days" validate:"min=0"`
}

type SanctionDTO struct {
	ID             string `json:"id"`
	EmployeeID     string `json:"employee_id"`
	Date           string `json:"date"`
	Kind           string `json:"kind"`
	Description    string `json:"description"`
	SuspensionDays int    `json:"suspension_days"`
	CreatedAt      string `json:"created_at"`
}

func toSanctionDTO(s payroll.Sanction) SanctionDTO {
	return SanctionDTO{
		ID:             s.ID,
		EmployeeID:     s.EmployeeID,
		Date:           day(s.Date),
		Kind:           string(s.Kind),
		Description:    s.Description,
		SuspensionDays: s.SuspensionDays,
		CreatedAt:      instant(s.CreatedAt),
	}
}

type HolidayRequest struct {
	Date      string `json:"date" validate:"required,date"`
	Name      string `json:"name" validate:"required"`
	Recurring bool   `json:"recurring"`
}

type HolidayDTO struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Name      string `json:"name"`
	Recurring bool   `json:"recurring"`
}

func toHolidayDTO(h generic.Holiday) HolidayDTO {
	return HolidayDTO{ID: h.ID, Date: day(h.Date), Name: h.Name, Recurring: h.Recurring}
}

type SummaryDTO struct {
	EmployeeID string `json:"employee_id"`
	From       string `json:"from"`
	To         string `json:"to"`
	TotalDebt  string `json:"total_debt"`
	TotalPaid  string `json:"total_paid"`
	TotalHours string `json:"total_hours"`
	Absences   int    `json:"absences"`
	Records    int    `json:"records"`
	Holidays   int    `json:"holidays"`
	// Conflicts are dates carrying both attendance and an absence.
	Conflicts []string `json:"conflicts"`
}

func toSummaryDTO(s payroll.MonthlySummary, conflicts []generic.TimePoint) SummaryDTO {
	dates := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		dates = append(dates, c.String())
	}
	return SummaryDTO{
		EmployeeID: s.EmployeeID,
		From:       day(s.Period.Start),
		To:         day(s.Period.End),
		TotalDebt:  money(s.TotalDebt),
		TotalPaid:  money(s.TotalPaid),
		TotalHours: s.TotalHours.String(),
		Absences:   s.Absences,
		Records:    s.Records,
		Holidays:   s.Holidays,
		Conflicts:  dates,
	}
}

// =============================================================================
// LEDGER TOTALS
// =============================================================================

type TotalsDTO struct {
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Net     string `json:"net"`
	Count   int    `json:"count"`
}

func toTotalsDTO(t generic.Totals) TotalsDTO {
	return TotalsDTO{Income: money(t.Income), Expense: money(t.Expense), Net: money(t.Net()), Count: t.Count}
}

func toTotalsMap(m map[string]generic.Totals) map[string]TotalsDTO {
	out := make(map[string]TotalsDTO, len(m))
	for k, t := range m {
		out[k] = toTotalsDTO(t)
	}
	return out
}

// =============================================================================
// CASH SHIFT
// =============================================================================

type OpenShiftRequest struct {
	InitialAmount string `json:"initial_amount" validate:"required,amount"`
	OpenedBy      string `json:"opened_by"`
}

type CashTransactionRequest struct {
	Type        string `json:"type" validate:"required,oneof=INCOME EXPENSE"`
	Method      string `json:"method" validate:"required,oneof=CASH TRANSFER"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Amount      string `json:"amount" validate:"required,positive"`
}

type CloseShiftRequest struct {
	FinalCash     string         `json:"final_cash" validate:"required,amount"`
	FinalTransfer string         `json:"final_transfer" validate:"omitempty,amount"`
	Orders        map[string]int `json:"orders" validate:"omitempty,dive,min=0"`
	ClosedBy      string         `json:"closed_by"`
}

type CashTransactionDTO struct {
	ID          string `json:"id"`
	ShiftID     string `json:"shift_id"`
	Type        string `json:"type"`
	Method      string `json:"method"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	// CashAfter is the drawer balance once this transaction is applied.
	CashAfter string `json:"cash_after,omitempty"`
	CreatedAt string `json:"created_at"`
}

func toCashTransactionDTO(t shift.CashTransaction) CashTransactionDTO {
	return CashTransactionDTO{
		ID:          t.ID,
		ShiftID:     t.ShiftID,
		Type:        string(t.Type),
		Method:      string(t.Method),
		Category:    t.Category,
		Description: t.Description,
		Amount:      money(t.Amount),
		CreatedAt:   instant(t.CreatedAt),
	}
}

type CashShiftDTO struct {
	ID              string               `json:"id"`
	Status          string               `json:"status"`
	InitialAmount   string               `json:"initial_amount"`
	OpenedBy        string               `json:"opened_by"`
	OpenedAt        string               `json:"opened_at"`
	RunningCash     string               `json:"running_cash"`
	RunningTransfer string               `json:"running_transfer"`
	FinalCash       string               `json:"final_cash,omitempty"`
	FinalTransfer   string               `json:"final_transfer,omitempty"`
	Orders          map[string]int       `json:"orders,omitempty"`
	ClosedBy        string               `json:"closed_by,omitempty"`
	ClosedAt        string               `json:"closed_at,omitempty"`
	Categories      []string             `json:"categories"`
	Transactions    []CashTransactionDTO `json:"transactions"`
}

func toCashShiftDTO(s shift.CashShift) CashShiftDTO {
	dto := CashShiftDTO{
		ID:              s.ID,
		Status:          string(s.Status),
		InitialAmount:   money(s.InitialAmount),
		OpenedBy:        s.OpenedBy,
		OpenedAt:        instant(s.OpenedAt),
		RunningCash:     money(shift.RunningCash(s)),
		RunningTransfer: money(shift.RunningTransfer(s)),
		Orders:          s.OrderCounts,
		ClosedBy:        s.ClosedBy,
		ClosedAt:        optionalInstant(s.ClosedAt),
		Categories:      shift.Categories(s),
		Transactions:    make([]CashTransactionDTO, 0, len(s.Transactions)),
	}
	if !s.IsOpen() {
		dto.FinalCash = money(s.FinalCash)
		dto.FinalTransfer = money(s.FinalTransfer)
	}
	trail := shift.CashTrail(s)
	for i, t := range s.Transactions {
		tx := toCashTransactionDTO(t)
		tx.CashAfter = money(trail[i])
		dto.Transactions = append(dto.Transactions, tx)
	}
	return dto
}

type CloseReportDTO struct {
	ExpectedCash     string               `json:"expected_cash"`
	ExpectedTransfer string               `json:"expected_transfer"`
	FinalCash        string               `json:"final_cash"`
	FinalTransfer    string               `json:"final_transfer"`
	CashVariance     string               `json:"cash_variance"`
	TransferVariance string               `json:"transfer_variance"`
	Balanced         bool                 `json:"balanced"`
	Cash             TotalsDTO            `json:"cash"`
	Transfer         TotalsDTO            `json:"transfer"`
	ByCategory       map[string]TotalsDTO `json:"by_category"`
	Orders           int                  `json:"orders"`
}

func toCloseReportDTO(r shift.CloseReport) CloseReportDTO {
	return CloseReportDTO{
		ExpectedCash:     money(r.ExpectedCash),
		ExpectedTransfer: money(r.ExpectedTransfer),
		FinalCash:        money(r.FinalCash),
		FinalTransfer:    money(r.FinalTransfer),
		CashVariance:     money(r.CashVariance),
		TransferVariance: money(r.TransferVariance),
		Balanced:         r.Balanced,
		Cash:             toTotalsDTO(r.Cash),
		Transfer:         toTotalsDTO(r.Transfer),
		ByCategory:       toTotalsMap(r.ByCategory),
		Orders:           r.Orders,
	}
}

type ShiftReportResponse struct {
	Shift  CashShiftDTO   `json:"shift"`
	Report CloseReportDTO `json:"report"`
}

// =============================================================================
// INVENTORY
// =============================================================================

type InventoryItemRequest struct {
	Name    string `json:"name" validate:"required"`
	Unit    string `json:"unit"`
	Initial string `json:"initial" validate:"required,amount"`
}

type OpenInventoryRequest struct {
	Items    []InventoryItemRequest `json:"items" validate:"required,min=1,dive"`
	OpenedBy string                 `json:"opened_by"`
}

type CloseInventoryRequest struct {
	// Finals maps item name to the closing count.
	Finals   map[string]string `json:"finals" validate:"required,dive,amount"`
	ClosedBy string            `json:"closed_by"`
}

type InventoryItemDTO struct {
	Name        string `json:"name"`
	Unit        string `json:"unit"`
	Initial     string `json:"initial"`
	Final       string `json:"final,omitempty"`
	Consumption string `json:"consumption,omitempty"`
}

type InventorySessionDTO struct {
	ID       string             `json:"id"`
	Status   string             `json:"status"`
	OpenedBy string             `json:"opened_by"`
	OpenedAt string             `json:"opened_at"`
	ClosedBy string             `json:"closed_by,omitempty"`
	ClosedAt string             `json:"closed_at,omitempty"`
	Items    []InventoryItemDTO `json:"items"`
	// Increases names items whose stock went up during the session.
	Increases []string `json:"increases,omitempty"`
}

func toInventorySessionDTO(s shift.InventorySession) InventorySessionDTO {
	dto := InventorySessionDTO{
		ID:       s.ID,
		Status:   string(s.Status),
		OpenedBy: s.OpenedBy,
		OpenedAt: instant(s.OpenedAt),
		ClosedBy: s.ClosedBy,
		ClosedAt: optionalInstant(s.ClosedAt),
		Items:    make([]InventoryItemDTO, 0, len(s.Items)),
	}
	closed := !s.IsOpen()
	for _, it := range s.Items {
		item := InventoryItemDTO{Name: it.Name, Unit: it.Unit, Initial: it.Initial.String()}
		if closed {
			item.Final = it.Final.String()
			item.Consumption = it.Consumption.String()
		}
		dto.Items = append(dto.Items, item)
	}
	if closed {
		for _, it := range s.Increases() {
			dto.Increases = append(dto.Increases, it.Name)
		}
	}
	return dto
}

// =============================================================================
// PRODUCTS & CALCULATOR
// =============================================================================

type ProductRequest struct {
	Name         string `json:"name" validate:"required"`
	LaborCost    string `json:"labor_cost" validate:"required,amount"`
	MaterialCost string `json:"material_cost" validate:"required,amount"`
	Royalties    string `json:"royalties" validate:"required,amount"`
	Profit       string `json:"profit" validate:"required,amount"`
}

func (req ProductRequest) toDomain(id string) (finance.Product, error) {
	var a amountReader
	p := finance.Product{
		ID:           id,
		Name:         req.Name,
		LaborCost:    a.read("labor_cost", req.LaborCost),
		MaterialCost: a.read("material_cost", req.MaterialCost),
		Royalties:    a.read("royalties", req.Royalties),
		Profit:       a.read("profit", req.Profit),
	}
	return p, a.err
}

type ProductDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	LaborCost    string `json:"labor_cost"`
	MaterialCost string `json:"material_cost"`
	Royalties    string `json:"royalties"`
	Profit       string `json:"profit"`
	UnitPrice    string `json:"unit_price"`
	CreatedAt    string `json:"created_at"`
}

func toProductDTO(p finance.Product) ProductDTO {
	return ProductDTO{
		ID:           p.ID,
		Name:         p.Name,
		LaborCost:    money(p.LaborCost),
		MaterialCost: money(p.MaterialCost),
		Royalties:    money(p.Royalties),
		Profit:       money(p.Profit),
		UnitPrice:    money(p.UnitPrice()),
		CreatedAt:    instant(p.CreatedAt),
	}
}

type QuoteRequest struct {
	Quantities map[string]int `json:"quantities" validate:"required"`
}

type LineDTO struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

// QuoteDTO carries the bucket sums and the display label of each bucket.
type QuoteDTO struct {
	Labor     string            `json:"labor"`
	Material  string            `json:"material"`
	Royalties string            `json:"royalties"`
	Profit    string            `json:"profit"`
	Total     string            `json:"total"`
	Labels    map[string]string `json:"labels"`
	Lines     []LineDTO         `json:"lines"`
}

func toQuoteDTO(t finance.Totals) QuoteDTO {
	dto := QuoteDTO{
		Labor:     money(t.Labor),
		Material:  money(t.Material),
		Royalties: money(t.Royalties),
		Profit:    money(t.Profit),
		Total:     money(t.Total),
		Labels: map[string]string{
			"labor":     finance.Labels.Labor,
			"material":  finance.Labels.Material,
			"royalties": finance.Labels.Royalties,
			"profit":    finance.Labels.Profit,
			"total":     finance.Labels.Total,
		},
		Lines: make([]LineDTO, 0, len(t.Lines)),
	}
	for _, l := range t.Lines {
		dto.Lines = append(dto.Lines, LineDTO{ProductID: l.ProductID, Name: l.Name, Quantity: l.Quantity, Subtotal: money(l.Subtotal)})
	}
	return dto
}

type CloseProjectionRequest struct {
	Quantities map[string]int `json:"quantities" validate:"required"`
	// RealSales is optional; absent accepts the theoretical total.
	RealSales *string `json:"real_sales" validate:"omitempty,amount"`
	CreatedBy string  `json:"created_by"`
}

type ProjectionDTO struct {
	ID                    string         `json:"id"`
	Quantities            map[string]int `json:"quantities"`
	Totals                QuoteDTO       `json:"totals"`
	RealSales             string         `json:"real_sales"`
	Diff                  string         `json:"diff"`
	AdjustedPartnerProfit string         `json:"adjusted_partner_profit"`
	CreatedBy             string         `json:"created_by"`
	CreatedAt             string         `json:"created_at"`
}

func toProjectionDTO(p finance.Projection) ProjectionDTO {
	return ProjectionDTO{
		ID:                    p.ID,
		Quantities:            p.Quantities,
		Totals:                toQuoteDTO(p.Totals),
		RealSales:             money(p.RealSales),
		Diff:                  money(p.Diff),
		AdjustedPartnerProfit: money(p.AdjustedPartnerProfit),
		CreatedBy:             p.CreatedBy,
		CreatedAt:             instant(p.CreatedAt),
	}
}

type ShareDTO struct {
	PartnerID  string `json:"partner_id"`
	Name       string `json:"name"`
	Percentage string `json:"percentage"`
	Amount     string `json:"amount"`
}

func toShareDTOs(shares []finance.Share) []ShareDTO {
	out := make([]ShareDTO, 0, len(shares))
	for _, s := range shares {
		out = append(out, ShareDTO{PartnerID: s.PartnerID, Name: s.Name, Percentage: s.Percentage.String(), Amount: money(s.Amount)})
	}
	return out
}

type ProjectionResponse struct {
	Projection ProjectionDTO `json:"projection"`
	Wallet     *WalletDTO    `json:"wallet,omitempty"`
	Shares     []ShareDTO    `json:"shares"`
}

// =============================================================================
// PARTNERS
// =============================================================================

type PartnerRequest struct {
	Name            string `json:"name" validate:"required"`
	SharePercentage string `json:"share_percentage" validate:"required,amount"`
}

type PartnerDTO struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	SharePercentage string `json:"share_percentage"`
	Balance         string `json:"balance"`
	CreatedAt       string `json:"created_at"`
}

func toPartnerDTO(p finance.Partner) PartnerDTO {
	return PartnerDTO{
		ID:              p.ID,
		Name:            p.Name,
		SharePercentage: p.SharePercentage.String(),
		Balance:         money(p.Balance),
		CreatedAt:       instant(p.CreatedAt),
	}
}

type RoyaltySummaryDTO struct {
	Pool       string       `json:"pool"`
	TotalShare string       `json:"total_share"`
	Partners   []PartnerDTO `json:"partners"`
}

type PaymentRequest struct {
	// Amount is optional; absent pays everything owed.
	Amount *string `json:"amount" validate:"omitempty,positive"`
	PaidBy string  `json:"paid_by"`
}

type RoyaltyPaymentResponse struct {
	Partner PartnerDTO `json:"partner"`
	Wallet  WalletDTO  `json:"wallet"`
}

// =============================================================================
// WALLET & FIXED EXPENSES
// =============================================================================

type WalletRequest struct {
	Type        string `json:"type" validate:"required,oneof=INCOME EXPENSE"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Amount      string `json:"amount" validate:"required,positive"`
	Date        string `json:"date" validate:"omitempty,date"`
	CreatedBy   string `json:"created_by"`
}

type WalletDTO struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Reference   string `json:"reference,omitempty"`
	CreatedBy   string `json:"created_by"`
	CreatedAt   string `json:"created_at"`
	Voided      bool   `json:"voided"`
	DeletedAt   string `json:"deleted_at,omitempty"`
	DeletedBy   string `json:"deleted_by,omitempty"`
}

func toWalletDTO(t finance.WalletTransaction) WalletDTO {
	return WalletDTO{
		ID:          t.ID,
		Type:        string(t.Type),
		Category:    t.Category,
		Description: t.Description,
		Amount:      money(t.Amount),
		Date:        day(t.Date),
		Reference:   t.Reference,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   instant(t.CreatedAt),
		Voided:      t.Voided(),
		DeletedAt:   optionalInstant(t.DeletedAt),
		DeletedBy:   t.DeletedBy,
	}
}

type WalletBalanceDTO struct {
	TotalsDTO
	ByCategory map[string]TotalsDTO `json:"by_category"`
}

type FixedExpenseRequest struct {
	Name     string `json:"name" validate:"required"`
	Category string `json:"category"`
	Amount   string `json:"amount" validate:"required,amount"`
	DueDate  string `json:"due_date" validate:"omitempty,date"`
}

type FixedExpenseDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	PaidAmount  string `json:"paid_amount"`
	Outstanding string `json:"outstanding"`
	DueDate     string `json:"due_date,omitempty"`
	IsPaid      bool   `json:"is_paid"`
	IsOverdue   bool   `json:"is_overdue"`
	CreatedAt   string `json:"created_at"`
}

func toFixedExpenseDTO(e finance.FixedExpense, today generic.TimePoint) FixedExpenseDTO {
	return FixedExpenseDTO{
		ID:          e.ID,
		Name:        e.Name,
		Category:    e.Category,
		Amount:      money(e.Amount),
		PaidAmount:  money(e.PaidAmount),
		Outstanding: money(e.Outstanding()),
		DueDate:     day(e.DueDate),
		IsPaid:      e.IsPaid(),
		IsOverdue:   e.IsOverdue(today),
		CreatedAt:   instant(e.CreatedAt),
	}
}

type ExpensePaymentResponse struct {
	Expense FixedExpenseDTO `json:"expense"`
	Wallet  WalletDTO       `json:"wallet"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ScenarioResponse struct {
	Scenario ScenarioDTO    `json:"scenario"`
	Counts   map[string]int `json:"counts"`
}

func mapDTOs[T, D any](items []T, convert func(T) D) []D {
	out := make([]D, 0, len(items))
	for _, it := range items {
		out = append(out, convert(it))
	}
	return out
}
