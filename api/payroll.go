package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/parrilla/backoffice/generic"
	"github.com/parrilla/backoffice/payroll"
)

// =============================================================================
// EMPLOYEE ENDPOINTS
// =============================================================================

// ListEmployees returns active employees, or all with ?archived=true.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Payroll.Employees(r.Context(), queryBool(r, "archived"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapDTOs(employees, toEmployeeDTO))
}

// CreateEmployee hires a new employee.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req EmployeeRequest
	if err := h.readJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	in, err := req.toDomain("")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	emp, err := h.Payroll.HireEmployee(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// GetEmployee returns one employee.
// GET /api/employees/{id}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Payroll.Employee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// UpdateEmployee replaces an employee's details.
// PUT /api/employees/{id}
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var req EmployeeRequest
	if err := h.readJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	in, err := req.toDomain(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	emp, err := h.Payroll.UpdateEmployee(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// ArchiveEmployee deactivates an employee. Records are kept.
// DELETE /api/employees/{id}
func (h *Handler) ArchiveEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.Payroll.ArchiveEmployee(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSummary aggregates one month for an employee.
// GET /api/employees/{id}/summary?year=2025&month=3
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	period, err := summaryPeriod(r, h.Payroll.Now())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	year, month := period.Start.Year(), period.Start.Month()

	summary, err := h.Payroll.MonthlySummary(r.Context(), id, year, month)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	attendance, err := h.Payroll.Attendance(r.Context(), id, summary.Period)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	absences, err := h.Payroll.Absences(r.Context(), id, summary.Period)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(summary, payroll.Conflicts(id, attendance, absences)))
}

// summaryPeriod is the requested month, or the current one.
func summaryPeriod(r *http.Request, now time.Time) (generic.Period, error) {
	q := r.URL.Query()
	if q.Get("year") == "" && q.Get("month") == "" {
		return generic.MonthPeriod(now.Year(), now.Month()), nil
	}
	return monthPeriod(q.Get("year"), q.Get("month"))
}

// =============================================================================
// ATTENDANCE ENDPOINTS
// =============================================================================

// ListAttendance returns records, optionally for one employee and period.
// GET /api/attendance?employee_id=&year=&month=
func (h *Handler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	period, err := queryPeriod(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	records, err := h.Payroll.Attendance(r.Context(), r.URL.Query().Get("employee_id"), period)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapDTOs(records, toAttendanceDTO))
}

// RecordAttendance prices and stores one worked day.
// POST /api/attendance
func (h *Handler) RecordAttendance(w http.ResponseWriter, r *http.Request) {
	var req AttendanceRequest
	if err := h.readJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	date, err := generic.ParseDate(req.Date)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rec, res, err := h.Payroll.RecordAttendance(r.Context(), payroll.AttendanceInput{
		EmployeeID: req.EmployeeID,
		Date:       date,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, AttendanceResponse{Record: toAttendanceDTO(rec), Overtime: toOvertimeDTO(res)})
}

// SetAttendancePaid toggles the paid flag.
// PUT /api/attendance/{id}/paid
func (h *Handler) SetAttendancePaid(w http.ResponseWriter, r *http.Request) {
	var req PaidRequest
	if err := h.readJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Payroll.SetPaid(r.Context(), chi.URLParam(r, "id"), *req.Paid); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PayAllAttendance settles every unpaid record of an employee.
// POST /api/attendance/pay-all
func (h *Handler) PayAllAttendance(w http.ResponseWriter, r *http.Request) {
	var req PayAllRequest
	if err := h.readJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	var period generic.Period
	if req.From != "" {
		start, _ := generic.ParseDate(req.From)
		end, _ := generic.ParseDate(req.To)
		period = generic.Period{Start: start, End: end}
	}
	n, total, err := h.Payroll.PayAll(r.Context(), req.EmployeeID, period)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PayAllResponse{Records: n, Amount: money(total)})
}

// DeleteAttendance removes a record so it can be re-entered.
// DELETE /api/attendance/{id}
func (h *Handler) DeleteAttendance(w http.ResponseWriter, r *http.Request) {
	if err := h.Payroll.DeleteAttendance(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ABSENCE & SANCTION ENDPOINTS
// =============================================================================

// GET /api/absences?employee_id=&year=&month=
func (h *Handler) ListAbsences(w http.ResponseWriter, r *http.Request) {
	period, err := queryPeriod(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	records, err := h.Payroll.Absences(r.Context(), r.URL.Query().Get("employee_id"), period)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapDTOs(records, toAbsenceDTO))
}

// POST /api/absences
func (h *Handler) RecordAbsence(w http.ResponseWriter, r *http.Request) {
	var req AbsenceRequest
	if err := h.readJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	date, err := generic.ParseDate(req.Date)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rec, err := h.Payroll.RecordAbsence(r.Context(), payroll.AbsenceRecord{
		EmployeeID: req.EmployeeID,
		Date:       date,
		Reason:     req.Reason,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAbsenceDTO(rec))
}

// DELETE /api/absences/{id}
func (h *Handler) DeleteAbsence(w http.ResponseWriter, r *http.Request) {
	if err := h.Payroll.DeleteAbsence(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/sanctions?employee_id=
func (h *Handler) ListSanctions(w http.ResponseWriter, r *http.Request) {
	sanctions, err := h.Payroll.Sanctions(r.Context(), r.URL.Query().Get("employee_id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapDTOs(sanctions, toSanctionDTO))
}

// POST /api/sanctions
func (h *Handler) RecordSanction(w http.ResponseWriter, r *http.Request) {
	var req SanctionRequest
	if err := h.readJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	date, err := generic.ParseDate(req.Date)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	sn, err := h.Payroll.RecordSanction(r.Context(), payroll.Sanction{
		EmployeeID:     req.EmployeeID,
		Date:           date,
		Kind:           payroll.SanctionKind(req.Kind),
		Description:    req.Description,
		SuspensionDays: req.SuspensionDays,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSanctionDTO(sn))
}

// DELETE /api/sanctions/{id}
func (h *Handler) DeleteSanction(w http.ResponseWriter, r *http.Request) {
	if err := h.Payroll.DeleteSanction(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HOLIDAY ENDPOINTS
// =============================================================================

// ListHolidays returns all holidays.
// GET /api/holidays
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.Payroll.Holidays(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapDTOs(holidays, toHolidayDTO))
}

// CreateHoliday adds a holiday. It affects attendance recorded from now on.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req HolidayRequest
	if err := h.readJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	date, err := generic.ParseDate(req.Date)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	holiday, err := h.Payroll.AddHoliday(r.Context(), generic.Holiday{Date: date, Name: req.Name, Recurring: req.Recurring})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayDTO(holiday))
}

// DeleteHoliday removes a holiday.
// DELETE /api/holidays/{id}
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.Payroll.RemoveHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
