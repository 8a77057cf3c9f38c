package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/parrilla/backoffice/generic"
	"github.com/parrilla/backoffice/shift"
	"github.com/shopspring/decimal"
)

// CurrentShiftResponse wraps the open shift, null when none is open.
type CurrentShiftResponse struct {
	Shift *CashShiftDTO `json:"shift"`
}

// CurrentInventoryResponse wraps the open session, null when none is open.
type CurrentInventoryResponse struct {
	Session *InventorySessionDTO `json:"session"`
}

// =============================================================================
// CASH SHIFT ENDPOINTS
// =============================================================================

// OpenShift starts a cash shift. Only one may be open at a time.
// POST /api/shifts
func (h *Handler) OpenShift(w http.ResponseWriter, r *http.Request) {
	var req OpenShiftRequest
	if err := h.readJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	initial, err := amount("initial_amount", req.InitialAmount)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	s, err := h.Shifts.OpenCashShift(r.Context(), initial, actor(r, req.OpenedBy))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCashShiftDTO(s))
}

// CurrentShift returns the open shift with its running balances.
// GET /api/shifts/current
func (h *Handler) CurrentShift(w http.ResponseWriter, r *http.Request) {
	s, err := h.Shifts.CurrentCashShift(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var resp CurrentShiftResponse
	if s != nil {
		dto := toCashShiftDTO(*s)
		resp.Shift = &dto
	}
	writeJSON(w, http.StatusOK, resp)
}

// RecordTransaction adds a movement to the open shift.
// POST /api/shifts/current/transactions
func (h *Handler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	var req CashTransactionRequest
	if err := h.readJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	value, err := amount("amount", req.Amount)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	t, err := h.Shifts.RecordCashTransaction(r.Context(), shift.TransactionInput{
		Type:        generic.Direction(req.Type),
		Method:      generic.Method(req.Method),
		Category:    req.Category,
		Description: req.Description,
		Amount:      value,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCashTransactionDTO(t))
}

// CloseShift reconciles the declared counts and closes the open shift.
// POST /api/shifts/current/close
func (h *Handler) CloseShift(w http.ResponseWriter, r *http.Request) {
	var req CloseShiftRequest
	if err := h.readJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	var a amountReader
	finalCash := a.read("final_cash", req.FinalCash)
	finalTransfer := decimal.Zero
	if req.FinalTransfer != "" {
		finalTransfer = a.read("final_transfer", req.FinalTransfer)
	}
	if a.err != nil {
		h.fail(w, r, a.err)
		return
	}
	s, report, err := h.Shifts.CloseCashShift(r.Context(), shift.CloseInput{
		FinalCash:     finalCash,
		FinalTransfer: finalTransfer,
		Orders:        req.Orders,
		ClosedBy:      actor(r, req.ClosedBy),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ShiftReportResponse{Shift: toCashShiftDTO(s), Report: toCloseReportDTO(report)})
}

// ListShifts returns recent shifts, newest first.
// GET /api/shifts?limit=20
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	shifts, err := h.Shifts.CashShifts(r.Context(), queryLimit(r, 20))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapDTOs(shifts, toCashShiftDTO))
}

// GetShiftReport recomputes the reconciliation of a shift.
// GET /api/shifts/{id}/report
func (h *Handler) GetShiftReport(w http.ResponseWriter, r *http.Request) {
	s, report, err := h.Shifts.CashShiftReport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ShiftReportResponse{Shift: toCashShiftDTO(s), Report: toCloseReportDTO(report)})
}

// =============================================================================
// INVENTORY ENDPOINTS
// =============================================================================

// OpenInventory starts a count session.
// POST /api/inventory
func (h *Handler) OpenInventory(w http.ResponseWriter, r *http.Request) {
	var req OpenInventoryRequest
	if err := h.readJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	var a amountReader
	items := make([]shift.InventoryItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, shift.InventoryItem{Name: it.Name, Unit: it.Unit, Initial: a.read(it.Name, it.Initial)})
	}
	if a.err != nil {
		h.fail(w, r, a.err)
		return
	}
	session, err := h.Shifts.OpenInventory(r.Context(), items, actor(r, req.OpenedBy))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInventorySessionDTO(session))
}

// CurrentInventory returns the open session.
// GET /api/inventory/current
func (h *Handler) CurrentInventory(w http.ResponseWriter, r *http.Request) {
	session, err := h.Shifts.CurrentInventory(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var resp CurrentInventoryResponse
	if session != nil {
		dto := toInventorySessionDTO(*session)
		resp.Session = &dto
	}
	writeJSON(w, http.StatusOK, resp)
}

// CloseInventory applies the closing counts. Every item needs one.
// POST /api/inventory/current/close
func (h *Handler) CloseInventory(w http.ResponseWriter, r *http.Request) {
	var req CloseInventoryRequest
	if err := h.readJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	var a amountReader
	finals := make(map[string]decimal.Decimal, len(req.Finals))
	for name, v := range req.Finals {
		finals[name] = a.read(name, v)
	}
	if a.err != nil {
		h.fail(w, r, a.err)
		return
	}
	session, err := h.Shifts.CloseInventory(r.Context(), finals, actor(r, req.ClosedBy))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toInventorySessionDTO(session))
}

// ListInventory returns recent sessions, newest first.
// GET /api/inventory?limit=20
func (h *Handler) ListInventory(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.Shifts.InventorySessions(r.Context(), queryLimit(r, 20))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapDTOs(sessions, toInventorySessionDTO))
}

// GetInventory returns one session.
// GET /api/inventory/{id}
func (h *Handler) GetInventory(w http.ResponseWriter, r *http.Request) {
	session, err := h.Shifts.InventorySession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toInventorySessionDTO(session))
}
