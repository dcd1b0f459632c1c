package folha_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gfranca/retaguarda-api/internal/application/folha"
	"github.com/gfranca/retaguarda-api/internal/domain"
	"github.com/gfranca/retaguarda-api/internal/domain/entity"
	"github.com/gfranca/retaguarda-api/internal/infrastructure/memory"
	"github.com/gfranca/retaguarda-api/pkg/logger"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newFolhaFixture(t *testing.T) (*folha.UseCase, *entity.User) {
	t.Helper()
	store := memory.NewStore()
	user := &entity.User{
		ID:        "func-1",
		Email:     "maria@loja.com",
		Name:      "Maria",
		Role:      entity.RoleCaixa,
		Status:    "active",
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.Users().Create(context.Background(), user))
	return folha.NewUseCase(store.Payroll(), store.Users(), logger.Nop()), user
}

func TestCreateEntry_LiquidoDerivado(t *testing.T) {
	uc, user := newFolhaFixture(t)
	ctx := context.Background()

	entry, err := uc.CreateEntry(ctx, folha.EntryInput{
		UserID:      user.ID,
		Period:      "2026-08",
		GrossAmount: dec("3200"),
		Deductions:  dec("450.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Maria", entry.UserName)
	assert.True(t, entry.NetAmount.Equal(dec("2749.50")))
	assert.Nil(t, entry.PaidAt)

	listed, err := uc.ListByPeriod(ctx, "2026-08")
	require.NoError(t, err)
	require.Len(t, listed, 1)
}

func TestCreateEntry_EntradasInvalidas(t *testing.T) {
	uc, user := newFolhaFixture(t)
	ctx := context.Background()

	cases := []folha.EntryInput{
		{UserID: "", Period: "2026-08", GrossAmount: dec("1000")},
		{UserID: user.ID, Period: "08/2026", GrossAmount: dec("1000")},
		{UserID: user.ID, Period: "2026-13", GrossAmount: dec("1000")},
		{UserID: user.ID, Period: "2026-08", GrossAmount: dec("-1")},
		{UserID: user.ID, Period: "2026-08", GrossAmount: dec("100"), Deductions: dec("200")},
	}
	for _, in := range cases {
		_, err := uc.CreateEntry(ctx, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}

	_, err := uc.CreateEntry(ctx, folha.EntryInput{
		UserID: "nao-existe", Period: "2026-08", GrossAmount: dec("1000"),
	})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestMarkPaid_IdempotenteEBloqueiaAlteracao(t *testing.T) {
	uc, user := newFolhaFixture(t)
	ctx := context.Background()

	entry, err := uc.CreateEntry(ctx, folha.EntryInput{
		UserID: user.ID, Period: "2026-08", GrossAmount: dec("3200"), Deductions: dec("450"),
	})
	require.NoError(t, err)

	paid, err := uc.MarkPaid(ctx, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, paid.PaidAt)
	firstPaidAt := *paid.PaidAt

	// Pagar de novo mantém a data original.
	again, err := uc.MarkPaid(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, firstPaidAt, *again.PaidAt)

	// Lançamento pago não aceita alteração nem exclusão.
	_, err = uc.UpdateEntry(ctx, entry.ID, folha.EntryInput{
		UserID: user.ID, Period: "2026-08", GrossAmount: dec("9999"),
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, uc.DeleteEntry(ctx, entry.ID), domain.ErrForbidden)
}

func TestUpdateEntry_RecalculaLiquido(t *testing.T) {
	uc, user := newFolhaFixture(t)
	ctx := context.Background()

	entry, err := uc.CreateEntry(ctx, folha.EntryInput{
		UserID: user.ID, Period: "2026-08", GrossAmount: dec("3000"), Deductions: dec("300"),
	})
	require.NoError(t, err)

	updated, err := uc.UpdateEntry(ctx, entry.ID, folha.EntryInput{
		UserID: user.ID, Period: "2026-09", GrossAmount: dec("3100"), Deductions: dec("100"),
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-09", updated.Period)
	assert.True(t, updated.NetAmount.Equal(dec("3000")))
}
