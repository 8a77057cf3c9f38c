package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/parrilla/backoffice/finance"
	"github.com/parrilla/backoffice/generic"
)

// =============================================================================
// PRODUCT & CALCULATOR ENDPOINTS
// =============================================================================

// GET /api/products
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Finance.Products(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapDTOs(products, toProductDTO))
}

// POST /api/products
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	h.saveProduct(w, r, "", http.StatusCreated)
}

// PUT /api/products/{id}
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	h.saveProduct(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

func (h *Handler) saveProduct(w http.ResponseWriter, r *http.Request, id string, status int) {
	var req ProductRequest
	if err := h.readJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	in, err := req.toDomain(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.Finance.SaveProduct(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, status, toProductDTO(p))
}

// DELETE /api/products/{id}
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.Finance.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Quote computes the theoretical buckets without storing anything.
// POST /api/calculator/quote
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := h.readJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	totals, err := h.Finance.Quote(r.Context(), req.Quantities)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuoteDTO(totals))
}

// CloseProjection stores a projection, books the sales income and credits
// the partners.
// POST /api/projections
func (h *Handler) CloseProjection(w http.ResponseWriter, r *http.Request) {
	var req CloseProjectionRequest
	if err := h.readJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	realSales, err := optionalAmount(req.RealSales)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.Finance.CloseProjection(r.Context(), req.Quantities, realSales, actor(r, req.CreatedBy))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := ProjectionResponse{Projection: toProjectionDTO(res.Projection), Shares: toShareDTOs(res.Shares)}
	if res.Wallet.ID != "" {
		wallet := toWalletDTO(res.Wallet)
		resp.Wallet = &wallet
	}
	writeJSON(w, http.StatusCreated, resp)
}

// GET /api/projections?limit=20
func (h *Handler) ListProjections(w http.ResponseWriter, r *http.Request) {
	projections, err := h.Finance.Projections(r.Context(), queryLimit(r, 20))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapDTOs(projections, toProjectionDTO))
}

// =============================================================================
// PARTNER ENDPOINTS
// =============================================================================

// GET /api/partners
func (h *Handler) ListPartners(w http.ResponseWriter, r *http.Request) {
	partners, err := h.Finance.Partners(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapDTOs(partners, toPartnerDTO))
}

// RoyaltySummary returns what is owed to the partners in total.
// GET /api/partners/royalties
func (h *Handler) RoyaltySummary(w http.ResponseWriter, r *http.Request) {
	partners, err := h.Finance.Partners(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RoyaltySummaryDTO{
		Pool:       money(finance.RoyaltyPool(partners)),
		TotalShare: finance.TotalShare(partners).String(),
		Partners:   mapDTOs(partners, toPartnerDTO),
	})
}

// POST /api/partners
func (h *Handler) CreatePartner(w http.ResponseWriter, r *http.Request) {
	h.savePartner(w, r, "", http.StatusCreated)
}

// PUT /api/partners/{id}
func (h *Handler) UpdatePartner(w http.ResponseWriter, r *http.Request) {
	h.savePartner(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

func (h *Handler) savePartner(w http.ResponseWriter, r *http.Request, id string, status int) {
	var req PartnerRequest
	if err := h.readJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	share, err := amount("share_percentage", req.SharePercentage)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.Finance.SavePartner(r.Context(), finance.Partner{
		ID:              id,
		Name:            req.Name,
		SharePercentage: share,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, status, toPartnerDTO(p))
}

// DELETE /api/partners/{id}
func (h *Handler) DeletePartner(w http.ResponseWriter, r *http.Request) {
	if err := h.Finance.DeletePartner(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PayRoyalty pays a partner out of their balance. Paying more than the
// balance is refused; no amount pays the whole balance.
// POST /api/partners/{id}/payments
func (h *Handler) PayRoyalty(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if err := h.readJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	pay, err := optionalAmount(req.Amount)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")

	if pay != nil {
		p, err := h.Finance.Partner(r.Context(), id)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if pay.GreaterThan(p.Balance) {
			h.fail(w, r, &generic.InsufficientBalanceError{
				Available: generic.Money(p.Balance),
				Requested: generic.Money(*pay),
			})
			return
		}
	}

	partner, wallet, err := h.Finance.PayRoyalty(r.Context(), id, pay, actor(r, req.PaidBy))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RoyaltyPaymentResponse{Partner: toPartnerDTO(partner), Wallet: toWalletDTO(wallet)})
}

// =============================================================================
// WALLET ENDPOINTS
// =============================================================================

// ListWallet returns ledger entries, voided ones with ?voided=true.
// GET /api/wallet?year=&month=&voided=
func (h *Handler) ListWallet(w http.ResponseWriter, r *http.Request) {
	period, err := queryPeriod(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	txs, err := h.Finance.Wallet(r.Context(), period, queryBool(r, "voided"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapDTOs(txs, toWalletDTO))
}

// WalletBalance sums live entries, overall and by category.
// GET /api/wallet/balance?year=&month=
func (h *Handler) WalletBalance(w http.ResponseWriter, r *http.Request) {
	period, err := queryPeriod(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	txs, err := h.Finance.Wallet(r.Context(), period, false)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, WalletBalanceDTO{
		TotalsDTO:  toTotalsDTO(finance.WalletBalance(txs)),
		ByCategory: toTotalsMap(finance.WalletByCategory(txs)),
	})
}

// POST /api/wallet
func (h *Handler) RecordWallet(w http.ResponseWriter, r *http.Request) {
	var req WalletRequest
	if err := h.readJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	date, err := optionalDate(req.Date)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	value, err := amount("amount", req.Amount)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	t, err := h.Finance.RecordWallet(r.Context(), finance.WalletInput{
		Type:        generic.Direction(req.Type),
		Category:    req.Category,
		Description: req.Description,
		Amount:      value,
		Date:        date,
	}, actor(r, req.CreatedBy))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toWalletDTO(t))
}

// VoidWallet soft-deletes an entry.
// DELETE /api/wallet/{id}
func (h *Handler) VoidWallet(w http.ResponseWriter, r *http.Request) {
	t, err := h.Finance.VoidWallet(r.Context(), chi.URLParam(r, "id"), actor(r, r.URL.Query().Get("by")))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWalletDTO(t))
}

// =============================================================================
// FIXED EXPENSE ENDPOINTS
// =============================================================================

// GET /api/expenses
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.Finance.FixedExpenses(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	today := generic.DateOf(h.Finance.Now())
	out := make([]FixedExpenseDTO, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toFixedExpenseDTO(e, today))
	}
	writeJSON(w, http.StatusOK, out)
}

// POST /api/expenses
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	h.saveExpense(w, r, "", http.StatusCreated)
}

// PUT /api/expenses/{id}
func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	h.saveExpense(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

func (h *Handler) saveExpense(w http.ResponseWriter, r *http.Request, id string, status int) {
	var req FixedExpenseRequest
	if err := h.readJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	due, err := optionalDate(req.DueDate)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	value, err := amount("amount", req.Amount)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	e, err := h.Finance.SaveFixedExpense(r.Context(), finance.FixedExpense{
		ID:       id,
		Name:     req.Name,
		Category: req.Category,
		Amount:   value,
		DueDate:  due,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, status, toFixedExpenseDTO(e, generic.DateOf(h.Finance.Now())))
}

// DELETE /api/expenses/{id}
func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := h.Finance.DeleteFixedExpense(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PayExpense records an instalment; no amount pays what is outstanding.
// POST /api/expenses/{id}/payments
func (h *Handler) PayExpense(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if err := h.readJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	pay, err := optionalAmount(req.Amount)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	e, wallet, err := h.Finance.PayExpense(r.Context(), chi.URLParam(r, "id"), pay, actor(r, req.PaidBy))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ExpensePaymentResponse{
		Expense: toFixedExpenseDTO(e, generic.DateOf(h.Finance.Now())),
		Wallet:  toWalletDTO(wallet),
	})
}
