package shift_test

import (
	"errors"
	"testing"
	"time"

	"github.com/parrilla/backoffice/generic"
	"github.com/parrilla/backoffice/shift"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func tx(dir generic.Direction, method generic.Method, amount, category string) shift.CashTransaction {
	return shift.CashTransaction{
		ID:       generic.NewID(),
		Type:     dir,
		Method:   method,
		Category: category,
		Amount:   d(amount),
	}
}

func openShift(t *testing.T, initial string) shift.CashShift {
	t.Helper()
	s, err := shift.NewCashShift(d(initial), "cajero", time.Now())
	require.NoError(t, err)
	return s
}

// =============================================================================
// CASH
// =============================================================================

func TestRunningCash(t *testing.T) {
	// GIVEN: a shift opened with 5000
	s := openShift(t, "5000")

	// WHEN: 2000 cash comes in and 500 cash goes out
	require.NoError(t, s.Add(tx(generic.Income, generic.MethodCash, "2000", "Ventas")))
	require.NoError(t, s.Add(tx(generic.Expense, generic.MethodCash, "500", "Proveedores")))

	// THEN
	assertDecimal(t, "6500", shift.RunningCash(s))
	assertDecimal(t, "0", shift.RunningTransfer(s))
}

func TestRunningTransfer_HasNoOpeningFloat(t *testing.T) {
	s := openShift(t, "5000")
	require.NoError(t, s.Add(tx(generic.Income, generic.MethodTransfer, "3000", "")))
	require.NoError(t, s.Add(tx(generic.Expense, generic.MethodTransfer, "1200", "")))
	require.NoError(t, s.Add(tx(generic.Income, generic.MethodCash, "100", "")))

	assertDecimal(t, "1800", shift.RunningTransfer(s))
	assertDecimal(t, "5100", shift.RunningCash(s))
}

func TestCashTrail_EndsAtRunningCash(t *testing.T) {
	s := openShift(t, "1000")
	require.NoError(t, s.Add(tx(generic.Income, generic.MethodCash, "250.50", "")))
	require.NoError(t, s.Add(tx(generic.Income, generic.MethodTransfer, "999", "")))
	require.NoError(t, s.Add(tx(generic.Expense, generic.MethodCash, "100.25", "")))

	trail := shift.CashTrail(s)

	require.Len(t, trail, 3)
	assertDecimal(t, "1250.50", trail[0])
	assertDecimal(t, "1250.50", trail[1])
	assertDecimal(t, "1150.25", trail[2])
	assert.True(t, trail[2].Equal(shift.RunningCash(s)))
}

func TestCashTransaction_Validate(t *testing.T) {
	s := openShift(t, "0")

	assert.ErrorIs(t, s.Add(tx(generic.Income, generic.MethodCash, "0", "")), generic.ErrInvalidAmount)
	assert.ErrorIs(t, s.Add(tx(generic.Income, generic.MethodCash, "-5", "")), generic.ErrInvalidAmount)
	assert.ErrorIs(t, s.Add(tx("REFUND", generic.MethodCash, "5", "")), generic.ErrInvalidInput)
	assert.ErrorIs(t, s.Add(tx(generic.Income, "CARD", "5", "")), generic.ErrInvalidInput)
	assert.Empty(t, s.Transactions)
}

func TestNewCashShift_RejectsNegativeFloat(t *testing.T) {
	_, err := shift.NewCashShift(d("-1"), "cajero", time.Now())
	assert.ErrorIs(t, err, generic.ErrInvalidAmount)
}

func TestIsBalanced(t *testing.T) {
	assert.True(t, shift.IsBalanced(d("0")))
	assert.True(t, shift.IsBalanced(d("9.99")))
	assert.True(t, shift.IsBalanced(d("-9.99")))
	assert.False(t, shift.IsBalanced(d("10")))
	assert.False(t, shift.IsBalanced(d("-10")))
	assert.False(t, shift.IsBalanced(d("250")))
}

func TestClose_Reconciles(t *testing.T) {
	// GIVEN: expected cash 6500 and expected transfer 3000
	s := openShift(t, "5000")
	require.NoError(t, s.Add(tx(generic.Income, generic.MethodCash, "2000", "Ventas")))
	require.NoError(t, s.Add(tx(generic.Expense, generic.MethodCash, "500", "Proveedores")))
	require.NoError(t, s.Add(tx(generic.Income, generic.MethodTransfer, "3000", "Ventas")))

	// WHEN: the cashier declares 6495 in the drawer
	report, err := s.Close(d("6495"), d("3000"), map[string]int{"salon": 12, "delivery": 5}, "cajero", time.Now())

	// THEN: short by 5, still balanced
	require.NoError(t, err)
	assert.Equal(t, shift.StatusClosed, s.Status)
	require.NotNil(t, s.ClosedAt)
	assertDecimal(t, "6500", report.ExpectedCash)
	assertDecimal(t, "3000", report.ExpectedTransfer)
	assertDecimal(t, "-5", report.CashVariance)
	assertDecimal(t, "0", report.TransferVariance)
	assert.True(t, report.Balanced)
	assert.Equal(t, 17, report.Orders)
	assertDecimal(t, "5000", report.ByCategory["Ventas"].Income)
	assertDecimal(t, "500", report.ByCategory["Proveedores"].Expense)
	assertDecimal(t, "1500", report.Cash.Net())
}

func TestClose_Unbalanced(t *testing.T) {
	s := openShift(t, "5000")

	report, err := s.Close(d("4990"), d("0"), nil, "cajero", time.Now())

	require.NoError(t, err)
	assertDecimal(t, "-10", report.CashVariance)
	assert.False(t, report.Balanced)
}

func TestClose_Twice(t *testing.T) {
	s := openShift(t, "0")
	_, err := s.Close(d("0"), d("0"), nil, "cajero", time.Now())
	require.NoError(t, err)

	_, err = s.Close(d("0"), d("0"), nil, "cajero", time.Now())
	assert.ErrorIs(t, err, generic.ErrShiftClosed)
	assert.ErrorIs(t, s.Add(tx(generic.Income, generic.MethodCash, "1", "")), generic.ErrShiftClosed)
}

func TestClose_RejectsNegativeCounts(t *testing.T) {
	s := openShift(t, "0")

	_, err := s.Close(d("-1"), d("0"), nil, "cajero", time.Now())
	assert.ErrorIs(t, err, generic.ErrInvalidAmount)

	_, err = s.Close(d("0"), d("0"), map[string]int{"salon": -1}, "cajero", time.Now())
	assert.ErrorIs(t, err, generic.ErrInvalidInput)
	assert.True(t, s.IsOpen())
}

func TestCategories(t *testing.T) {
	s := openShift(t, "0")
	require.NoError(t, s.Add(tx(generic.Income, generic.MethodCash, "1", "Ventas")))
	require.NoError(t, s.Add(tx(generic.Income, generic.MethodCash, "1", " ")))
	require.NoError(t, s.Add(tx(generic.Expense, generic.MethodCash, "1", "Ventas")))
	require.NoError(t, s.Add(tx(generic.Expense, generic.MethodCash, "1", "Bebidas")))

	assert.Equal(t, []string{"Bebidas", "General", "Ventas"}, shift.Categories(s))
}

// =============================================================================
// INVENTORY
// =============================================================================

func openInventory(t *testing.T) shift.InventorySession {
	t.Helper()
	s, err := shift.NewInventorySession([]shift.InventoryItem{
		{Name: "SALMON", Unit: "kg", Initial: d("10")},
		{Name: "Arroz", Unit: "kg", Initial: d("25")},
	}, "cocina", time.Now())
	require.NoError(t, err)
	return s
}

func TestInventoryClose_Consumption(t *testing.T) {
	// GIVEN: SALMON opened at 10
	s := openInventory(t)

	// WHEN: it is counted at 3, matched case-insensitively
	err := s.Close(map[string]decimal.Decimal{"salmon": d("3"), "ARROZ": d("20.5")}, "cocina", time.Now())

	// THEN
	require.NoError(t, err)
	assert.Equal(t, shift.StatusClosed, s.Status)
	assertDecimal(t, "7", s.Items[0].Consumption)
	assertDecimal(t, "3", s.Items[0].Final)
	assertDecimal(t, "4.5", s.Items[1].Consumption)
	assert.Empty(t, s.Increases())
}

func TestInventoryClose_NegativeConsumptionIsKept(t *testing.T) {
	s := openInventory(t)

	err := s.Close(map[string]decimal.Decimal{"SALMON": d("12"), "Arroz": d("25")}, "cocina", time.Now())

	require.NoError(t, err)
	assertDecimal(t, "-2", s.Items[0].Consumption)
	assertDecimal(t, "0", s.Items[1].Consumption)
	inc := s.Increases()
	require.Len(t, inc, 1)
	assert.Equal(t, "SALMON", inc[0].Name)
}

func TestInventoryClose_MissingCount(t *testing.T) {
	s := openInventory(t)

	err := s.Close(map[string]decimal.Decimal{"SALMON": d("3")}, "cocina", time.Now())

	assert.ErrorIs(t, err, generic.ErrMissingCount)
	var missing *generic.MissingCountError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"Arroz"}, missing.Items)
	assert.True(t, s.IsOpen())
	assertDecimal(t, "0", s.Items[0].Consumption)
}

func TestInventoryClose_Twice(t *testing.T) {
	s := openInventory(t)
	finals := map[string]decimal.Decimal{"SALMON": d("3"), "Arroz": d("20")}
	require.NoError(t, s.Close(finals, "cocina", time.Now()))

	assert.ErrorIs(t, s.Close(finals, "cocina", time.Now()), generic.ErrShiftClosed)
}

func TestNewInventorySession_Validation(t *testing.T) {
	_, err := shift.NewInventorySession(nil, "x", time.Now())
	assert.ErrorIs(t, err, generic.ErrInvalidInput)

	_, err = shift.NewInventorySession([]shift.InventoryItem{
		{Name: "Salmon", Initial: d("1")},
		{Name: "SALMON ", Initial: d("2")},
	}, "x", time.Now())
	assert.ErrorIs(t, err, generic.ErrInvalidInput)

	_, err = shift.NewInventorySession([]shift.InventoryItem{{Name: "Salmon", Initial: d("-1")}}, "x", time.Now())
	assert.ErrorIs(t, err, generic.ErrInvalidAmount)
}

func TestConsumption(t *testing.T) {
	assertDecimal(t, "7", shift.Consumption(d("10"), d("3")))
	assertDecimal(t, "-2", shift.Consumption(d("10"), d("12")))
}
