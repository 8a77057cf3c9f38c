package finance_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/parrilla/backoffice/finance"
	"github.com/parrilla/backoffice/generic"
	"github.com/parrilla/backoffice/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*finance.Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc := finance.NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.Now = func() time.Time { return time.Date(2025, time.March, 15, 22, 0, 0, 0, time.UTC) }
	return svc, store
}

func seedFinance(t *testing.T, svc *finance.Service) (finance.Product, []finance.Partner) {
	t.Helper()
	ctx := context.Background()
	product, err := svc.SaveProduct(ctx, finance.Product{
		Name: "Parrillada", LaborCost: d("2000"), MaterialCost: d("3000"), Royalties: d("1000"), Profit: d("4000"),
	})
	require.NoError(t, err)

	var partners []finance.Partner
	for _, p := range []finance.Partner{
		{Name: "Ana", SharePercentage: d("25")},
		{Name: "Bruno", SharePercentage: d("75")},
	} {
		saved, err := svc.SavePartner(ctx, p)
		require.NoError(t, err)
		partners = append(partners, saved)
	}
	return product, partners
}

func TestService_CloseProjection(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	product, partners := seedFinance(t, svc)

	// WHEN: 10000 theoretical, 12000 real
	res, err := svc.CloseProjection(ctx, map[string]int{product.ID: 1}, ptr("12000"), "admin")

	// THEN: wallet income, partners credited with 6000 split 25/75
	require.NoError(t, err)
	assertDecimal(t, "6000", res.Projection.AdjustedPartnerProfit)
	assertDecimal(t, "12000", res.Wallet.Amount)
	assert.Equal(t, generic.Income, res.Wallet.Type)
	assert.Equal(t, res.Projection.ID, res.Wallet.Reference)

	ana, err := svc.Partner(ctx, partners[0].ID)
	require.NoError(t, err)
	assertDecimal(t, "1500", ana.Balance)
	bruno, err := svc.Partner(ctx, partners[1].ID)
	require.NoError(t, err)
	assertDecimal(t, "4500", bruno.Balance)

	projections, err := svc.Projections(ctx, 0)
	require.NoError(t, err)
	require.Len(t, projections, 1)
	assert.Equal(t, map[string]int{product.ID: 1}, projections[0].Quantities)

	balance, err := svc.WalletBalance(ctx, generic.Period{})
	require.NoError(t, err)
	assertDecimal(t, "12000", balance.Net())
}

func TestService_CloseProjection_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)
	product, partners := seedFinance(t, svc)

	failing := &failingProjections{Repository: store}
	svc.Repo = failing

	_, err := svc.CloseProjection(ctx, map[string]int{product.ID: 1}, nil, "admin")
	require.Error(t, err)

	// Nothing from the failed close is visible.
	p, err := store.GetPartner(ctx, partners[0].ID)
	require.NoError(t, err)
	assertDecimal(t, "0", p.Balance)
	wallet, err := store.ListWalletTransactions(ctx, generic.Period{}, true)
	require.NoError(t, err)
	assert.Empty(t, wallet)
}

// failingProjections fails every projection write inside a transaction.
type failingProjections struct {
	finance.Repository
}

func (f *failingProjections) WithTx(ctx context.Context, fn func(finance.Repository) error) error {
	return f.Repository.WithTx(ctx, func(tx finance.Repository) error {
		return fn(&failingProjections{Repository: tx})
	})
}

func (f *failingProjections) SaveProjection(context.Context, finance.Projection) error {
	return errors.New("disk full")
}

func TestService_CloseProjection_Empty(t *testing.T) {
	svc, _ := newService(t)
	seedFinance(t, svc)

	_, err := svc.CloseProjection(context.Background(), map[string]int{}, nil, "admin")
	assert.ErrorIs(t, err, generic.ErrInvalidInput)
}

func TestService_PayRoyalty(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	product, partners := seedFinance(t, svc)
	_, err := svc.CloseProjection(ctx, map[string]int{product.ID: 1}, ptr("12000"), "admin")
	require.NoError(t, err)

	// Partial payment.
	p, wallet, err := svc.PayRoyalty(ctx, partners[0].ID, ptr("500"), "admin")
	require.NoError(t, err)
	assertDecimal(t, "1000", p.Balance)
	assert.Equal(t, generic.Expense, wallet.Type)
	assert.Equal(t, finance.CategoryRoyalties, wallet.Category)
	assertDecimal(t, "500", wallet.Amount)

	// Full balance by default.
	p, wallet, err = svc.PayRoyalty(ctx, partners[0].ID, nil, "admin")
	require.NoError(t, err)
	assertDecimal(t, "0", p.Balance)
	assertDecimal(t, "1000", wallet.Amount)

	// Nothing left to pay.
	_, _, err = svc.PayRoyalty(ctx, partners[0].ID, nil, "admin")
	assert.ErrorIs(t, err, generic.ErrInvalidAmount)

	// Above balance clamps at zero.
	p, _, err = svc.PayRoyalty(ctx, partners[1].ID, ptr("999999"), "admin")
	require.NoError(t, err)
	assertDecimal(t, "0", p.Balance)

	_, _, err = svc.PayRoyalty(ctx, "nobody", nil, "admin")
	assert.ErrorIs(t, err, generic.ErrNotFound)
}

func TestService_SavePartner_KeepsBalance(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	product, partners := seedFinance(t, svc)
	_, err := svc.CloseProjection(ctx, map[string]int{product.ID: 1}, nil, "admin")
	require.NoError(t, err)

	updated, err := svc.SavePartner(ctx, finance.Partner{ID: partners[0].ID, Name: "Ana María", SharePercentage: d("30"), Balance: d("0")})

	require.NoError(t, err)
	assertDecimal(t, "1000", updated.Balance)
	assert.Equal(t, "Ana María", updated.Name)
}

func TestService_WalletVoid(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	in, err := svc.RecordWallet(ctx, finance.WalletInput{Type: generic.Income, Category: "Eventos", Amount: d("5000")}, "admin")
	require.NoError(t, err)
	out, err := svc.RecordWallet(ctx, finance.WalletInput{Type: generic.Expense, Category: "Gas", Amount: d("1200")}, "admin")
	require.NoError(t, err)

	voided, err := svc.VoidWallet(ctx, out.ID, "admin")
	require.NoError(t, err)
	assert.True(t, voided.Voided())

	balance, err := svc.WalletBalance(ctx, generic.Period{})
	require.NoError(t, err)
	assertDecimal(t, "5000", balance.Net())

	all, err := svc.Wallet(ctx, generic.Period{}, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	live, err := svc.Wallet(ctx, generic.Period{}, false)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, in.ID, live[0].ID)

	_, err = svc.VoidWallet(ctx, out.ID, "admin")
	assert.ErrorIs(t, err, generic.ErrInvalidInput)

	_, err = svc.RecordWallet(ctx, finance.WalletInput{Type: generic.Income, Amount: d("0")}, "admin")
	assert.ErrorIs(t, err, generic.ErrInvalidAmount)
}

func TestService_PayExpense(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	e, err := svc.SaveFixedExpense(ctx, finance.FixedExpense{
		Name:    "Alquiler",
		Amount:  d("100000"),
		DueDate: generic.NewTimePoint(2025, time.March, 10),
	})
	require.NoError(t, err)

	e, wallet, err := svc.PayExpense(ctx, e.ID, ptr("30000"), "admin")
	require.NoError(t, err)
	assertDecimal(t, "30000", e.PaidAmount)
	assert.Equal(t, finance.CategoryFixedExpense, wallet.Category)
	assert.Equal(t, e.ID, wallet.Reference)

	e, wallet, err = svc.PayExpense(ctx, e.ID, nil, "admin")
	require.NoError(t, err)
	assert.True(t, e.IsPaid())
	assertDecimal(t, "70000", wallet.Amount)

	_, _, err = svc.PayExpense(ctx, e.ID, ptr("1"), "admin")
	assert.ErrorIs(t, err, generic.ErrInsufficientBalance)

	balance, err := svc.WalletBalance(ctx, generic.Period{})
	require.NoError(t, err)
	assertDecimal(t, "100000", balance.Expense)
}

func TestService_FixedExpenses_SortedByDueDate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	for _, e := range []finance.FixedExpense{
		{Name: "Luz", Amount: d("1"), DueDate: generic.NewTimePoint(2025, time.March, 20)},
		{Name: "Alquiler", Amount: d("1"), DueDate: generic.NewTimePoint(2025, time.March, 5)},
	} {
		_, err := svc.SaveFixedExpense(ctx, e)
		require.NoError(t, err)
	}

	list, err := svc.FixedExpenses(ctx)

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alquiler", list[0].Name)
}
