package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gfranca/retaguarda-api/internal/domain"
	"github.com/gfranca/retaguarda-api/internal/domain/entity"
	"github.com/gfranca/retaguarda-api/internal/domain/ledger"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestStockValidator(t *testing.T) {
	v := ledger.StockValidator{}

	cases := []struct {
		name    string
		balance string
		kind    string
		qty     string
		want    string
		wantErr error
	}{
		{name: "entrada soma ao saldo", balance: "10", kind: entity.KindEntrada, qty: "5", want: "15"},
		{name: "entrada exige quantidade positiva", balance: "10", kind: entity.KindEntrada, qty: "0", wantErr: domain.ErrInvalidInput},
		{name: "saida subtrai do saldo", balance: "10", kind: entity.KindSaida, qty: "7", want: "3"},
		{name: "saida pode zerar o saldo", balance: "10", kind: entity.KindSaida, qty: "10", want: "0"},
		{name: "saida acima do saldo é rejeitada", balance: "3", kind: entity.KindSaida, qty: "5", wantErr: domain.ErrInsufficientStock},
		{name: "saida com saldo zero é rejeitada", balance: "0", kind: entity.KindSaida, qty: "1", wantErr: domain.ErrInsufficientStock},
		{name: "ajuste substitui o saldo", balance: "3", kind: entity.KindAjuste, qty: "50", want: "50"},
		{name: "ajuste para zero é válido", balance: "42", kind: entity.KindAjuste, qty: "0", want: "0"},
		{name: "quantidade negativa é rejeitada", balance: "10", kind: entity.KindEntrada, qty: "-1", wantErr: domain.ErrInvalidInput},
		{name: "tipo desconhecido é rejeitado", balance: "10", kind: "devolucao", qty: "1", wantErr: domain.ErrInvalidMovementKind},
		{name: "tipo de caixa não vale para estoque", balance: "10", kind: entity.KindVenda, qty: "1", wantErr: domain.ErrInvalidMovementKind},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := ledger.Snapshot{Balance: dec(tc.balance)}
			mov := &entity.Movement{Kind: tc.kind, Quantity: dec(tc.qty)}
			got, err := v.Validate(snap, mov)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(dec(tc.want)), "saldo esperado %s, veio %s", tc.want, got)
		})
	}
}

func TestCashValidator(t *testing.T) {
	v := ledger.CashValidator{}

	cases := []struct {
		name    string
		balance string
		status  string
		kind    string
		qty     string
		want    string
		wantErr error
	}{
		{name: "venda soma ao saldo", balance: "100", status: entity.SessionAberta, kind: entity.KindVenda, qty: "50", want: "150"},
		{name: "suprimento soma ao saldo", balance: "100", status: entity.SessionAberta, kind: entity.KindSuprimento, qty: "30", want: "130"},
		{name: "abertura soma ao saldo", balance: "0", status: entity.SessionAberta, kind: entity.KindAbertura, qty: "100", want: "100"},
		{name: "sangria subtrai do saldo", balance: "130", status: entity.SessionAberta, kind: entity.KindSangria, qty: "20", want: "110"},
		{name: "sangria pode zerar o caixa", balance: "80", status: entity.SessionAberta, kind: entity.KindSangria, qty: "80", want: "0"},
		{name: "sangria acima do saldo é rejeitada", balance: "80", status: entity.SessionAberta, kind: entity.KindSangria, qty: "81", wantErr: domain.ErrSangriaExceedsBalance},
		{name: "sessão fechada rejeita qualquer movimento", balance: "100", status: entity.SessionFechada, kind: entity.KindVenda, qty: "10", wantErr: domain.ErrSessionClosed},
		{name: "quantidade zero é rejeitada", balance: "100", status: entity.SessionAberta, kind: entity.KindVenda, qty: "0", wantErr: domain.ErrInvalidInput},
		{name: "tipo desconhecido é rejeitado", balance: "100", status: entity.SessionAberta, kind: "estorno", qty: "1", wantErr: domain.ErrInvalidMovementKind},
		{name: "tipo de estoque não vale para caixa", balance: "100", status: entity.SessionAberta, kind: entity.KindSaida, qty: "1", wantErr: domain.ErrInvalidMovementKind},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := ledger.Snapshot{Balance: dec(tc.balance), Status: tc.status}
			mov := &entity.Movement{Kind: tc.kind, Quantity: dec(tc.qty)}
			got, err := v.Validate(snap, mov)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(dec(tc.want)), "saldo esperado %s, veio %s", tc.want, got)
		})
	}
}
