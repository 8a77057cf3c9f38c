package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/parrilla/backoffice/finance"
	"github.com/parrilla/backoffice/generic"
	"github.com/parrilla/backoffice/shift"
	"github.com/parrilla/backoffice/store/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestStore_WithTxRestoresOnError(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.SavePartner(ctx, finance.Partner{ID: "ana", Name: "Ana", SharePercentage: d("100"), Balance: d("50")}))

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(repo finance.Repository) error {
		require.NoError(t, repo.SavePartner(ctx, finance.Partner{ID: "ana", Name: "Ana", SharePercentage: d("100"), Balance: d("999")}))
		require.NoError(t, repo.SaveProduct(ctx, finance.Product{ID: "p", Name: "Empanada"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	ana, err := store.GetPartner(ctx, "ana")
	require.NoError(t, err)
	assert.True(t, d("50").Equal(ana.Balance))

	_, err = store.GetProduct(ctx, "p")
	assert.ErrorIs(t, err, generic.ErrNotFound)
}

func TestStore_WithTxCommits(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	err := store.WithTx(ctx, func(repo finance.Repository) error {
		// Nested calls reuse the outer transaction instead of deadlocking.
		return repo.WithTx(ctx, func(inner finance.Repository) error {
			return inner.SaveProduct(ctx, finance.Product{ID: "p", Name: "Empanada"})
		})
	})
	require.NoError(t, err)

	products, err := store.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	now := time.Date(2025, time.March, 15, 18, 0, 0, 0, time.UTC)

	cs, err := shift.NewCashShift(d("1000"), "a", now)
	require.NoError(t, err)
	require.NoError(t, store.CreateCashShift(ctx, cs))
	require.NoError(t, store.AppendCashTransaction(ctx, shift.CashTransaction{
		ID: "t1", ShiftID: cs.ID, Type: generic.Income, Method: generic.MethodCash, Amount: d("10"), CreatedAt: now,
	}))

	// WHEN: a caller mutates what it got back
	got, err := store.GetCashShift(ctx, cs.ID)
	require.NoError(t, err)
	got.Transactions[0].Amount = d("99999")

	// THEN: the stored shift is untouched
	again, err := store.GetCashShift(ctx, cs.ID)
	require.NoError(t, err)
	assert.True(t, d("10").Equal(again.Transactions[0].Amount))
}

func TestStore_SingleOpenShiftAndSession(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	now := time.Date(2025, time.March, 15, 18, 0, 0, 0, time.UTC)

	first, _ := shift.NewCashShift(d("1000"), "a", now)
	second, _ := shift.NewCashShift(d("1000"), "b", now.Add(time.Hour))
	require.NoError(t, store.CreateCashShift(ctx, first))
	assert.ErrorIs(t, store.CreateCashShift(ctx, second), generic.ErrShiftAlreadyOpen)

	// Closing frees the slot; a closed shift refuses movements.
	closedAt := now.Add(2 * time.Hour)
	first.Status = shift.StatusClosed
	first.ClosedAt = &closedAt
	require.NoError(t, store.CloseCashShift(ctx, first))
	assert.ErrorIs(t, store.CloseCashShift(ctx, first), generic.ErrShiftClosed)
	assert.ErrorIs(t, store.AppendCashTransaction(ctx, shift.CashTransaction{ShiftID: first.ID}), generic.ErrShiftClosed)
	assert.ErrorIs(t, store.AppendCashTransaction(ctx, shift.CashTransaction{ShiftID: "ghost"}), generic.ErrNotFound)
	require.NoError(t, store.CreateCashShift(ctx, second))

	shifts, err := store.ListCashShifts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, shifts, 1)
	assert.Equal(t, second.ID, shifts[0].ID)

	session, err := shift.NewInventorySession([]shift.InventoryItem{{Name: "Vacío", Initial: d("3")}}, "cocina", now)
	require.NoError(t, err)
	require.NoError(t, store.CreateInventorySession(ctx, session))
	other, _ := shift.NewInventorySession([]shift.InventoryItem{{Name: "Chorizo", Initial: d("3")}}, "cocina", now)
	assert.ErrorIs(t, store.CreateInventorySession(ctx, other), generic.ErrShiftAlreadyOpen)
}

func TestStore_WalletFilters(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	now := time.Date(2025, time.March, 15, 18, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveWalletTransaction(ctx, finance.WalletTransaction{
		ID: "feb", Type: generic.Income, Amount: d("100"), Date: generic.NewTimePoint(2025, time.February, 28), CreatedAt: now,
	}))
	voided := finance.WalletTransaction{
		ID: "mar", Type: generic.Expense, Amount: d("40"), Date: generic.NewTimePoint(2025, time.March, 1), CreatedAt: now.Add(time.Minute),
	}
	require.NoError(t, voided.Void("admin", now))
	require.NoError(t, store.SaveWalletTransaction(ctx, voided))

	visible, err := store.ListWalletTransactions(ctx, generic.Period{}, false)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "feb", visible[0].ID)

	march, err := store.ListWalletTransactions(ctx, generic.MonthPeriod(2025, time.March), true)
	require.NoError(t, err)
	require.Len(t, march, 1)
	assert.True(t, march[0].Voided())
}

func TestStore_Reset(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.SaveProduct(ctx, finance.Product{ID: "p", Name: "Empanada"}))

	require.NoError(t, store.Reset(ctx))

	products, err := store.ListProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}
