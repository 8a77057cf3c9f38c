package legacy

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/parrilla/backoffice/finance"
	"github.com/parrilla/backoffice/generic"
	"github.com/parrilla/backoffice/payroll"
	"github.com/shopspring/decimal"
)

// Collection keys of the old store.
const (
	KeyEmployees     = "employees"
	KeyAttendance    = "attendance"
	KeyAbsences      = "absences"
	KeySanctions     = "sanctions"
	KeyHolidays      = "holidays"
	KeyProducts      = "products"
	KeyPartners      = "partners"
	KeyWallet        = "wallet"
	KeyFixedExpenses = "fixed_expenses"
)

// Keys lists the collections in dependency order: employees before the
// records that reference them.
var Keys = []string{
	KeyEmployees, KeyHolidays, KeyAttendance, KeyAbsences, KeySanctions,
	KeyProducts, KeyPartners, KeyWallet, KeyFixedExpenses,
}

// =============================================================================
// NUMBER - Float or typed string
// =============================================================================

// Number is a legacy numeric field. The old application stored JSON
// numbers, and occasionally the raw string an operator typed ("1.500,50").
// Numbers are read from their textual form so no float rounding is
// introduced; strings go through generic.ParseAmount. Null and "" read as
// zero.
type Number struct {
	decimal.Decimal
}

func num(d decimal.Decimal) Number { return Number{Decimal: d} }

func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		n.Decimal = decimal.Zero
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var typed string
		if err := json.Unmarshal(b, &typed); err != nil {
			return err
		}
		if strings.TrimSpace(typed) == "" {
			n.Decimal = decimal.Zero
			return nil
		}
		d, err := generic.ParseAmount(typed)
		if err != nil {
			return err
		}
		n.Decimal = d
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return &generic.ParseError{Input: s, Reason: "not a number"}
	}
	n.Decimal = d
	return nil
}

// MarshalJSON writes a bare JSON number.
func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.Decimal.String()), nil
}

// =============================================================================
// DATES
// =============================================================================

// parseDay reads "2006-01-02", tolerating a trailing time part
// ("2025-03-12T00:00:00.000Z").
func parseDay(s string) (generic.TimePoint, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(generic.DateLayout) {
		s = s[:len(generic.DateLayout)]
	}
	tp, err := generic.ParseDate(s)
	if err != nil {
		return generic.TimePoint{}, fmt.Errorf("%w: date %q", generic.ErrInvalidInput, s)
	}
	return tp, nil
}

// parseOptionalDay is parseDay where an empty value means "no date".
func parseOptionalDay(s string) (generic.TimePoint, error) {
	if strings.TrimSpace(s) == "" {
		return generic.TimePoint{}, nil
	}
	return parseDay(s)
}

// parseInstant reads an ISO timestamp. Unparseable or empty values give
// fallback.
func parseInstant(s string, fallback time.Time) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s)); err == nil {
		return t.UTC()
	}
	return fallback
}

func formatInstant(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func formatDay(tp generic.TimePoint) string {
	if tp.IsZero() {
		return ""
	}
	return tp.String()
}

func idOrNew(id string) string {
	if strings.TrimSpace(id) == "" {
		return generic.NewID()
	}
	return id
}

// =============================================================================
// PAYROLL RECORDS
// =============================================================================

type Employee struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Position       string `json:"position,omitempty"`
	ScheduledStart string `json:"scheduledStart"`
	ScheduledEnd   string `json:"scheduledEnd"`
	MonthlySalary  Number `json:"monthlySalary"`
	Archived       bool   `json:"archived,omitempty"`
	CreatedAt      string `json:"createdAt,omitempty"`
}

func (e Employee) toDomain(now time.Time) (payroll.Employee, error) {
	out := payroll.Employee{
		ID:             idOrNew(e.ID),
		Name:           strings.TrimSpace(e.Name),
		Position:       e.Position,
		ScheduledStart: e.ScheduledStart,
		ScheduledEnd:   e.ScheduledEnd,
		MonthlySalary:  generic.RoundMoney(e.MonthlySalary.Decimal),
		Active:         !e.Archived,
		CreatedAt:      parseInstant(e.CreatedAt, now),
	}
	return out, out.Validate()
}

func fromEmployee(e payroll.Employee) Employee {
	return Employee{
		ID:             e.ID,
		Name:           e.Name,
		Position:       e.Position,
		ScheduledStart: e.ScheduledStart,
		ScheduledEnd:   e.ScheduledEnd,
		MonthlySalary:  num(e.MonthlySalary),
		Archived:       !e.Active,
		CreatedAt:      formatInstant(e.CreatedAt),
	}
}

// Attendance keeps the overtime priced when it was entered; it is not
// recalculated on import.
type Attendance struct {
	ID             string `json:"id"`
	EmployeeID     string `json:"employeeId"`
	Date           string `json:"date"`
	CheckIn        string `json:"checkIn"`
	CheckOut       string `json:"checkOut"`
	OvertimeHours  Number `json:"overtimeHours"`
	OvertimeAmount Number `json:"overtimeAmount"`
	Paid           bool   `json:"paid"`
	IsHoliday      bool   `json:"isHoliday"`
	CreatedAt      string `json:"createdAt,omitempty"`
}

func (a Attendance) toDomain(now time.Time) (payroll.AttendanceRecord, error) {
	date, err := parseDay(a.Date)
	if err != nil {
		return payroll.AttendanceRecord{}, err
	}
	return payroll.AttendanceRecord{
		ID:             idOrNew(a.ID),
		EmployeeID:     a.EmployeeID,
		Date:           date,
		CheckIn:        a.CheckIn,
		CheckOut:       a.CheckOut,
		OvertimeHours:  a.OvertimeHours.Round(2),
		OvertimeAmount: generic.RoundMoney(a.OvertimeAmount.Decimal),
		Paid:           a.Paid,
		IsHoliday:      a.IsHoliday,
		CreatedAt:      parseInstant(a.CreatedAt, now),
	}, nil
}

func fromAttendance(r payroll.AttendanceRecord) Attendance {
	return Attendance{
		ID:             r.ID,
		EmployeeID:     r.EmployeeID,
		Date:           formatDay(r.Date),
		CheckIn:        r.CheckIn,
		CheckOut:       r.CheckOut,
		OvertimeHours:  num(r.OvertimeHours),
		OvertimeAmount: num(r.OvertimeAmount),
		Paid:           r.Paid,
		IsHoliday:      r.IsHoliday,
		CreatedAt:      formatInstant(r.CreatedAt),
	}
}

type Absence struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employeeId"`
	Date       string `json:"date"`
	Reason     string `json:"reason,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
}

func (a Absence) toDomain(now time.Time) (payroll.AbsenceRecord, error) {
	date, err := parseDay(a.Date)
	if err != nil {
		return payroll.AbsenceRecord{}, err
	}
	return payroll.AbsenceRecord{
		ID:         idOrNew(a.ID),
		EmployeeID: a.EmployeeID,
		Date:       date,
		Reason:     a.Reason,
		CreatedAt:  parseInstant(a.CreatedAt, now),
	}, nil
}

func fromAbsence(a payroll.AbsenceRecord) Absence {
	return Absence{
		ID:         a.ID,
		EmployeeID: a.EmployeeID,
		Date:       formatDay(a.Date),
		Reason:     a.Reason,
		CreatedAt:  formatInstant(a.CreatedAt),
	}
}

type Sanction struct {
	ID             string `json:"id"`
	EmployeeID     string `json:"employeeId"`
	Date           string `json:"date"`
	Type           string `json:"type"`
	Description    string `json:"description,omitempty"`
	SuspensionDays int    `json:"suspensionDays,omitempty"`
	CreatedAt      string `json:"createdAt,omitempty"`
}

// sanctionKinds maps the labels the old forms used.
var sanctionKinds = map[string]payroll.SanctionKind{
	"warning":        payroll.SanctionWarning,
	"apercibimiento": payroll.SanctionWarning,
	"llamado":        payroll.SanctionWarning,
	"suspension":     payroll.SanctionSuspension,
	"suspensión":     payroll.SanctionSuspension,
}

func (s Sanction) toDomain(now time.Time) (payroll.Sanction, error) {
	date, err := parseDay(s.Date)
	if err != nil {
		return payroll.Sanction{}, err
	}
	kind, ok := sanctionKinds[strings.ToLower(strings.TrimSpace(s.Type))]
	if !ok {
		kind = payroll.SanctionKind(s.Type)
	}
	out := payroll.Sanction{
		ID:             idOrNew(s.ID),
		EmployeeID:     s.EmployeeID,
		Date:           date,
		Kind:           kind,
		Description:    s.Description,
		SuspensionDays: s.SuspensionDays,
		CreatedAt:      parseInstant(s.CreatedAt, now),
	}
	return out, out.Validate()
}

func fromSanction(s payroll.Sanction) Sanction {
	return Sanction{
		ID:             s.ID,
		EmployeeID:     s.EmployeeID,
		Date:           formatDay(s.Date),
		Type:           string(s.Kind),
		Description:    s.Description,
		SuspensionDays: s.SuspensionDays,
		CreatedAt:      formatInstant(s.CreatedAt),
	}
}

type Holiday struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Name      string `json:"name"`
	Recurring bool   `json:"recurring,omitempty"`
}

func (h Holiday) toDomain() (generic.Holiday, error) {
	date, err := parseDay(h.Date)
	if err != nil {
		return generic.Holiday{}, err
	}
	return generic.Holiday{ID: idOrNew(h.ID), Date: date, Name: h.Name, Recurring: h.Recurring}, nil
}

func fromHoliday(h generic.Holiday) Holiday {
	return Holiday{ID: h.ID, Date: formatDay(h.Date), Name: h.Name, Recurring: h.Recurring}
}

// =============================================================================
// FINANCE RECORDS
// =============================================================================

// Product keeps the old field names. "royalties" and "profit" carry the
// same swapped meaning the calculator labels preserve.
type Product struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	LaborCost    Number `json:"laborCost"`
	MaterialCost Number `json:"materialCost"`
	Royalties    Number `json:"royalties"`
	Profit       Number `json:"profit"`
	CreatedAt    string `json:"createdAt,omitempty"`
}

func (p Product) toDomain(now time.Time) (finance.Product, error) {
	out := finance.Product{
		ID:           idOrNew(p.ID),
		Name:         strings.TrimSpace(p.Name),
		LaborCost:    generic.RoundMoney(p.LaborCost.Decimal),
		MaterialCost: generic.RoundMoney(p.MaterialCost.Decimal),
		Royalties:    generic.RoundMoney(p.Royalties.Decimal),
		Profit:       generic.RoundMoney(p.Profit.Decimal),
		CreatedAt:    parseInstant(p.CreatedAt, now),
	}
	return out, out.Validate()
}

func fromProduct(p finance.Product) Product {
	return Product{
		ID:           p.ID,
		Name:         p.Name,
		LaborCost:    num(p.LaborCost),
		MaterialCost: num(p.MaterialCost),
		Royalties:    num(p.Royalties),
		Profit:       num(p.Profit),
		CreatedAt:    formatInstant(p.CreatedAt),
	}
}

type Partner struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	SharePercentage Number `json:"sharePercentage"`
	Balance         Number `json:"balance"`
	CreatedAt       string `json:"createdAt,omitempty"`
}

func (p Partner) toDomain(now time.Time) (finance.Partner, error) {
	out := finance.Partner{
		ID:              idOrNew(p.ID),
		Name:            strings.TrimSpace(p.Name),
		SharePercentage: p.SharePercentage.Decimal,
		Balance:         generic.RoundMoney(p.Balance.Decimal),
		CreatedAt:       parseInstant(p.CreatedAt, now),
	}
	return out, out.Validate()
}

func fromPartner(p finance.Partner) Partner {
	return Partner{
		ID:              p.ID,
		Name:            p.Name,
		SharePercentage: num(p.SharePercentage),
		Balance:         num(p.Balance),
		CreatedAt:       formatInstant(p.CreatedAt),
	}
}

type WalletEntry struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	Amount      Number `json:"amount"`
	Date        string `json:"date"`
	Reference   string `json:"reference,omitempty"`
	CreatedBy   string `json:"createdBy,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	DeletedAt   string `json:"deletedAt,omitempty"`
	DeletedBy   string `json:"deletedBy,omitempty"`
}

func (w WalletEntry) toDomain(now time.Time) (finance.WalletTransaction, error) {
	date, err := parseDay(w.Date)
	if err != nil {
		return finance.WalletTransaction{}, err
	}
	out := finance.WalletTransaction{
		ID:          idOrNew(w.ID),
		Type:        generic.Direction(strings.ToUpper(strings.TrimSpace(w.Type))),
		Category:    w.Category,
		Description: w.Description,
		Amount:      generic.RoundMoney(w.Amount.Decimal),
		Date:        date,
		Reference:   w.Reference,
		CreatedBy:   w.CreatedBy,
		CreatedAt:   parseInstant(w.CreatedAt, now),
		DeletedBy:   w.DeletedBy,
	}
	if w.DeletedAt != "" {
		deleted := parseInstant(w.DeletedAt, now)
		out.DeletedAt = &deleted
	}
	return out, out.Validate()
}

func fromWallet(t finance.WalletTransaction) WalletEntry {
	out := WalletEntry{
		ID:          t.ID,
		Type:        string(t.Type),
		Category:    t.Category,
		Description: t.Description,
		Amount:      num(t.Amount),
		Date:        formatDay(t.Date),
		Reference:   t.Reference,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   formatInstant(t.CreatedAt),
		DeletedBy:   t.DeletedBy,
	}
	if t.DeletedAt != nil {
		out.DeletedAt = formatInstant(*t.DeletedAt)
	}
	return out
}

type FixedExpense struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Category   string `json:"category,omitempty"`
	Amount     Number `json:"amount"`
	PaidAmount Number `json:"paidAmount"`
	DueDate    string `json:"dueDate,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
}

func (e FixedExpense) toDomain(now time.Time) (finance.FixedExpense, error) {
	due, err := parseOptionalDay(e.DueDate)
	if err != nil {
		return finance.FixedExpense{}, err
	}
	out := finance.FixedExpense{
		ID:         idOrNew(e.ID),
		Name:       strings.TrimSpace(e.Name),
		Category:   e.Category,
		Amount:     generic.RoundMoney(e.Amount.Decimal),
		PaidAmount: generic.RoundMoney(e.PaidAmount.Decimal),
		DueDate:    due,
		CreatedAt:  parseInstant(e.CreatedAt, now),
	}
	return out, out.Validate()
}

func fromFixedExpense(e finance.FixedExpense) FixedExpense {
	return FixedExpense{
		ID:         e.ID,
		Name:       e.Name,
		Category:   e.Category,
		Amount:     num(e.Amount),
		PaidAmount: num(e.PaidAmount),
		DueDate:    formatDay(e.DueDate),
		CreatedAt:  formatInstant(e.CreatedAt),
	}
}
