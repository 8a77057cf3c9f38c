package shift_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/parrilla/backoffice/generic"
	"github.com/parrilla/backoffice/shift"
	"github.com/parrilla/backoffice/store/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *shift.Service {
	t.Helper()
	svc := shift.NewService(memory.New(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	clock := time.Date(2025, time.March, 15, 18, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return svc
}

func TestService_CashShiftLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	// GIVEN: an open shift with 5000
	opened, err := svc.OpenCashShift(ctx, d("5000"), "cajero")
	require.NoError(t, err)

	// WHEN: sales and a supplier payment come in
	_, err = svc.RecordCashTransaction(ctx, shift.TransactionInput{Type: generic.Income, Method: generic.MethodCash, Category: "Ventas", Amount: d("2000")})
	require.NoError(t, err)
	_, err = svc.RecordCashTransaction(ctx, shift.TransactionInput{Type: generic.Expense, Method: generic.MethodCash, Category: "Proveedores", Amount: d("500")})
	require.NoError(t, err)
	_, err = svc.RecordCashTransaction(ctx, shift.TransactionInput{Type: generic.Income, Method: generic.MethodTransfer, Amount: d("1800")})
	require.NoError(t, err)

	current, err := svc.CurrentCashShift(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, opened.ID, current.ID)
	assertDecimal(t, "6500", shift.RunningCash(*current))
	assertDecimal(t, "1800", shift.RunningTransfer(*current))

	// THEN: closing reconciles and frees the slot
	closed, report, err := svc.CloseCashShift(ctx, shift.CloseInput{
		FinalCash:     d("6500"),
		FinalTransfer: d("1800"),
		Orders:        map[string]int{"salon": 20},
		ClosedBy:      "encargado",
	})
	require.NoError(t, err)
	assert.Equal(t, shift.StatusClosed, closed.Status)
	assert.True(t, report.Balanced)
	assertDecimal(t, "0", report.CashVariance)

	current, err = svc.CurrentCashShift(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)

	stored, rebuilt, err := svc.CashShiftReport(ctx, opened.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Transactions, 3)
	assert.Equal(t, 20, rebuilt.Orders)
	assert.True(t, rebuilt.Balanced)
}

func TestService_OnlyOneOpenCashShift(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	_, err := svc.OpenCashShift(ctx, d("1000"), "a")
	require.NoError(t, err)

	_, err = svc.OpenCashShift(ctx, d("1000"), "b")
	assert.ErrorIs(t, err, generic.ErrShiftAlreadyOpen)

	_, _, err = svc.CloseCashShift(ctx, shift.CloseInput{FinalCash: d("1000")})
	require.NoError(t, err)
	_, err = svc.OpenCashShift(ctx, d("0"), "b")
	assert.NoError(t, err)

	shifts, err := svc.CashShifts(ctx, 0)
	require.NoError(t, err)
	require.Len(t, shifts, 2)
	assert.True(t, shifts[0].IsOpen())
}

func TestService_NoOpenShift(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	_, err := svc.RecordCashTransaction(ctx, shift.TransactionInput{Type: generic.Income, Method: generic.MethodCash, Amount: d("1")})
	assert.ErrorIs(t, err, generic.ErrNoOpenShift)

	_, _, err = svc.CloseCashShift(ctx, shift.CloseInput{})
	assert.ErrorIs(t, err, generic.ErrNoOpenShift)

	_, err = svc.CloseInventory(ctx, nil, "x")
	assert.ErrorIs(t, err, generic.ErrNoOpenShift)
}

func TestService_RejectsBadTransaction(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	_, err := svc.OpenCashShift(ctx, d("1000"), "a")
	require.NoError(t, err)

	_, err = svc.RecordCashTransaction(ctx, shift.TransactionInput{Type: generic.Income, Method: generic.MethodCash, Amount: decimal.Zero})
	assert.ErrorIs(t, err, generic.ErrInvalidAmount)

	current, err := svc.CurrentCashShift(ctx)
	require.NoError(t, err)
	assert.Empty(t, current.Transactions)
}

func TestService_InventoryLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	opened, err := svc.OpenInventory(ctx, []shift.InventoryItem{
		{Name: "SALMON", Unit: "kg", Initial: d("10")},
		{Name: "Vacío", Unit: "kg", Initial: d("8")},
	}, "cocina")
	require.NoError(t, err)

	_, err = svc.OpenInventory(ctx, []shift.InventoryItem{{Name: "X", Initial: d("1")}}, "cocina")
	assert.ErrorIs(t, err, generic.ErrShiftAlreadyOpen)

	// Missing count keeps the session open.
	_, err = svc.CloseInventory(ctx, map[string]decimal.Decimal{"SALMON": d("3")}, "cocina")
	assert.ErrorIs(t, err, generic.ErrMissingCount)
	current, err := svc.CurrentInventory(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)

	closed, err := svc.CloseInventory(ctx, map[string]decimal.Decimal{"SALMON": d("12"), "Vacío": d("2")}, "cocina")
	require.NoError(t, err)
	assertDecimal(t, "-2", closed.Items[0].Consumption)
	assertDecimal(t, "6", closed.Items[1].Consumption)

	stored, err := svc.InventorySession(ctx, opened.ID)
	require.NoError(t, err)
	assert.Equal(t, shift.StatusClosed, stored.Status)

	current, err = svc.CurrentInventory(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)

	sessions, err := svc.InventorySessions(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}
