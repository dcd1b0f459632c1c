package caixa_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gfranca/retaguarda-api/internal/application/caixa"
	appledger "github.com/gfranca/retaguarda-api/internal/application/ledger"
	"github.com/gfranca/retaguarda-api/internal/domain"
	"github.com/gfranca/retaguarda-api/internal/domain/entity"
	domledger "github.com/gfranca/retaguarda-api/internal/domain/ledger"
	"github.com/gfranca/retaguarda-api/internal/infrastructure/memory"
	"github.com/gfranca/retaguarda-api/pkg/logger"
)

var (
	maria = entity.Actor{ID: "op-maria", Name: "Maria", Role: entity.RoleCaixa}
	joao  = entity.Actor{ID: "op-joao", Name: "João", Role: entity.RoleCaixa}
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newManager(t *testing.T) (*memory.Store, *caixa.Manager) {
	t.Helper()
	store := memory.NewStore()
	engine := appledger.NewEngine(store.CashLedger(), domledger.CashValidator{}, 0, logger.Nop())
	mgr := caixa.NewManager(store, store.Movements(), engine, nil, 0, logger.Nop())
	return store, mgr
}

func TestOpen_UmaSessaoPorOperador(t *testing.T) {
	_, mgr := newManager(t)
	ctx := context.Background()

	sess, err := mgr.Open(ctx, maria, dec("100"), "")
	require.NoError(t, err)
	assert.Equal(t, entity.SessionAberta, sess.Status)
	assert.True(t, sess.Balance.Equal(dec("100")))

	// Segunda abertura do mesmo dono é recusada.
	_, err = mgr.Open(ctx, maria, dec("50"), "")
	require.ErrorIs(t, err, domain.ErrSessionAlreadyOpen)

	// Outro operador abre normalmente.
	_, err = mgr.Open(ctx, joao, dec("80"), "")
	require.NoError(t, err)

	got, err := mgr.OpenByOwner(ctx, maria.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
}

func TestOpen_AberturasConcorrentesApenasUmaVence(t *testing.T) {
	_, mgr := newManager(t)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = mgr.Open(ctx, maria, dec("100"), "")
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrSessionAlreadyOpen):
		default:
			t.Fatalf("erro inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok, "exatamente uma abertura deve vencer")
}

func TestClose_ConferenciaDoExemploCompleto(t *testing.T) {
	store, mgr := newManager(t)
	ctx := context.Background()

	sess, err := mgr.Open(ctx, maria, dec("100"), "")
	require.NoError(t, err)

	_, err = mgr.Record(ctx, maria, sess.ID, entity.KindVenda, dec("50"), "venda balcão")
	require.NoError(t, err)
	_, err = mgr.Record(ctx, maria, sess.ID, entity.KindSangria, dec("20"), "depósito no cofre")
	require.NoError(t, err)

	closed, err := mgr.Close(ctx, maria, sess.ID, dec("125"), "fechamento do turno")
	require.NoError(t, err)

	assert.Equal(t, entity.SessionFechada, closed.Status)
	assert.True(t, closed.ExpectedAmount.Equal(dec("130")), "esperado 130, veio %s", closed.ExpectedAmount)
	assert.True(t, closed.Difference.Equal(dec("-5")), "desvio -5, veio %s", closed.Difference)
	assert.True(t, closed.ClosingAmount.Equal(dec("125")))
	require.NotNil(t, closed.ClosedAt)

	// O valor esperado é o fold dos deltas desde a abertura.
	movs, err := store.Movements().ListByAccount(ctx, sess.ID, 0, 0)
	require.NoError(t, err)
	fold := decimal.Zero
	for _, m := range movs {
		if m.Kind == entity.KindFechamento {
			continue
		}
		fold = fold.Add(m.Delta())
	}
	assert.True(t, fold.Equal(closed.ExpectedAmount))
}

func TestClose_SegundoFechamentoNaoMudaConferencia(t *testing.T) {
	_, mgr := newManager(t)
	ctx := context.Background()

	sess, err := mgr.Open(ctx, maria, dec("100"), "")
	require.NoError(t, err)

	closed, err := mgr.Close(ctx, maria, sess.ID, dec("90"), "")
	require.NoError(t, err)
	assert.True(t, closed.Difference.Equal(dec("-10")))

	// Segundo fechamento, outro valor contado: recusado, conferência intacta.
	_, err = mgr.Close(ctx, maria, sess.ID, dec("999"), "")
	require.ErrorIs(t, err, domain.ErrSessionClosed)

	got, err := mgr.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, got.Difference.Equal(dec("-10")))
	assert.True(t, got.ClosingAmount.Equal(dec("90")))
}

func TestClose_SomenteODonoFecha(t *testing.T) {
	_, mgr := newManager(t)
	ctx := context.Background()

	sess, err := mgr.Open(ctx, maria, dec("100"), "")
	require.NoError(t, err)

	_, err = mgr.Close(ctx, joao, sess.ID, dec("100"), "")
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRecord_SessaoFechadaRecusaMovimentos(t *testing.T) {
	_, mgr := newManager(t)
	ctx := context.Background()

	sess, err := mgr.Open(ctx, maria, dec("100"), "")
	require.NoError(t, err)
	_, err = mgr.Close(ctx, maria, sess.ID, dec("100"), "")
	require.NoError(t, err)

	_, err = mgr.Record(ctx, maria, sess.ID, entity.KindVenda, dec("10"), "")
	require.ErrorIs(t, err, domain.ErrSessionClosed)
}

func TestRecord_RegrasDeMovimento(t *testing.T) {
	_, mgr := newManager(t)
	ctx := context.Background()

	sess, err := mgr.Open(ctx, maria, dec("50"), "")
	require.NoError(t, err)

	// Abertura e fechamento não entram pelo Record.
	_, err = mgr.Record(ctx, maria, sess.ID, entity.KindAbertura, dec("10"), "")
	require.ErrorIs(t, err, domain.ErrInvalidMovementKind)
	_, err = mgr.Record(ctx, maria, sess.ID, entity.KindFechamento, dec("10"), "")
	require.ErrorIs(t, err, domain.ErrInvalidMovementKind)

	// Sangria acima do saldo registrado é erro de operação.
	_, err = mgr.Record(ctx, maria, sess.ID, entity.KindSangria, dec("60"), "")
	require.ErrorIs(t, err, domain.ErrSangriaExceedsBalance)

	// Suprimento reforça o caixa; sangria até zerar é aceita.
	_, err = mgr.Record(ctx, maria, sess.ID, entity.KindSuprimento, dec("30"), "troco extra")
	require.NoError(t, err)
	res, err := mgr.Record(ctx, maria, sess.ID, entity.KindSangria, dec("80"), "recolhimento total")
	require.NoError(t, err)
	assert.True(t, res.Balance.IsZero())

	_, err = mgr.Record(ctx, maria, "sessao-inexistente", entity.KindVenda, dec("1"), "")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClose_MovimentoConcorrenteRecalculaEsperado(t *testing.T) {
	_, mgr := newManager(t)
	ctx := context.Background()

	sess, err := mgr.Open(ctx, maria, dec("100"), "")
	require.NoError(t, err)

	// Movimentos e fechamento disputando a mesma sessão: o fechamento
	// recarrega em CAS perdido, então o esperado final reflete todos os
	// movimentos aplicados antes da transição vencer.
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = mgr.Record(ctx, maria, sess.ID, entity.KindVenda, dec("10"), "")
		}()
	}
	wg.Wait()

	closed, err := mgr.Close(ctx, maria, sess.ID, dec("150"), "")
	require.NoError(t, err)

	got, err := mgr.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, got.ExpectedAmount.Equal(got.Balance))
	assert.True(t, closed.Difference.Equal(closed.ClosingAmount.Sub(closed.ExpectedAmount)))
}
