package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appledger "github.com/gfranca/retaguarda-api/internal/application/ledger"
	"github.com/gfranca/retaguarda-api/internal/domain"
	"github.com/gfranca/retaguarda-api/internal/domain/entity"
	domledger "github.com/gfranca/retaguarda-api/internal/domain/ledger"
	"github.com/gfranca/retaguarda-api/internal/domain/repository"
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

// newStockFixture cria um store em memória com um produto e devolve o motor
// de estoque apontando para ele.
func newStockFixture(t *testing.T) (*memory.Store, *appledger.Engine, string) {
	t.Helper()
	store := memory.NewStore()
	product := &entity.Product{
		ID:        uuid.New().String(),
		SKU:       "CAFE-500",
		Name:      "Café torrado 500g",
		Price:     dec("24.90"),
		MinStock:  dec("5"),
		Active:    true,
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.Products().Create(context.Background(), product))
	engine := appledger.NewEngine(store.StockLedger(), domledger.StockValidator{}, 0, logger.Nop())
	return store, engine, product.ID
}

func apply(t *testing.T, e *appledger.Engine, accountID, kind, qty string) *appledger.Result {
	t.Helper()
	res, err := e.Apply(context.Background(), accountID, &entity.Movement{
		Kind:      kind,
		Quantity:  dec(qty),
		ActorID:   "op-1",
		ActorName: "Operadora",
	})
	require.NoError(t, err)
	return res
}

func TestEngineApply_SaldoAcompanhaFoldDosMovimentos(t *testing.T) {
	store, engine, productID := newStockFixture(t)
	ctx := context.Background()

	apply(t, engine, productID, entity.KindEntrada, "10")
	apply(t, engine, productID, entity.KindSaida, "3")
	res := apply(t, engine, productID, entity.KindEntrada, "5")

	assert.True(t, res.Balance.Equal(dec("12")))

	// O saldo da conta deve ser o fold dos deltas de todos os movimentos.
	movs, err := store.Movements().ListByAccount(ctx, productID, 100, 0)
	require.NoError(t, err)
	require.Len(t, movs, 3)

	fold := decimal.Zero
	for _, m := range movs {
		fold = fold.Add(m.Delta())
		// Encadeamento: NewBalance de cada movimento = PreviousBalance + delta.
		assert.True(t, m.NewBalance.Equal(m.PreviousBalance.Add(m.Delta())))
	}
	assert.True(t, fold.Equal(res.Balance), "fold %s != saldo %s", fold, res.Balance)

	acc, err := store.Products().GetStockAccount(ctx, productID)
	require.NoError(t, err)
	assert.True(t, acc.Balance.Equal(res.Balance))
	assert.Equal(t, res.Version, acc.Version)
}

func TestEngineApply_MovimentoRejeitadoNaoAlteraSaldo(t *testing.T) {
	store, engine, productID := newStockFixture(t)
	ctx := context.Background()

	apply(t, engine, productID, entity.KindEntrada, "10")
	apply(t, engine, productID, entity.KindSaida, "7")

	_, err := engine.Apply(ctx, productID, &entity.Movement{Kind: entity.KindSaida, Quantity: dec("5")})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	acc, err := store.Products().GetStockAccount(ctx, productID)
	require.NoError(t, err)
	assert.True(t, acc.Balance.Equal(dec("3")), "saldo deveria permanecer 3, veio %s", acc.Balance)

	// Nenhum movimento foi gravado para a rejeição.
	movs, err := store.Movements().ListByAccount(ctx, productID, 100, 0)
	require.NoError(t, err)
	assert.Len(t, movs, 2)
}

func TestEngineApply_AjusteSubstituiSaldo(t *testing.T) {
	_, engine, productID := newStockFixture(t)

	apply(t, engine, productID, entity.KindEntrada, "3")
	res := apply(t, engine, productID, entity.KindAjuste, "50")

	assert.True(t, res.Balance.Equal(dec("50")))
	assert.True(t, res.Movement.PreviousBalance.Equal(dec("3")))
}

func TestEngineApply_ContaInexistente(t *testing.T) {
	_, engine, _ := newStockFixture(t)
	_, err := engine.Apply(context.Background(), "nao-existe", &entity.Movement{
		Kind: entity.KindEntrada, Quantity: dec("1"),
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEngineApply_SaidasConcorrentesEsgotamSemNegativar(t *testing.T) {
	store, engine, productID := newStockFixture(t)
	ctx := context.Background()

	apply(t, engine, productID, entity.KindEntrada, "10")

	// 20 saídas de 1 unidade disputando 10 unidades: exatamente 10 passam,
	// o resto é rejeitado por estoque insuficiente, nunca por conflito
	// (o retry absorve os CAS perdidos).
	const workers = 20
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = engine.Apply(ctx, productID, &entity.Movement{
				Kind:     entity.KindSaida,
				Quantity: dec("1"),
				ActorID:  "op-1",
			})
		}(i)
	}
	wg.Wait()

	var ok, insufficient, conflict int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			insufficient++
		case errors.Is(err, domain.ErrConflict):
			conflict++
		default:
			t.Fatalf("erro inesperado: %v", err)
		}
	}

	acc, err := store.Products().GetStockAccount(ctx, productID)
	require.NoError(t, err)
	assert.False(t, acc.Balance.IsNegative(), "saldo nunca pode negativar: %s", acc.Balance)

	// Cada sucesso baixou exatamente 1 unidade.
	assert.True(t, acc.Balance.Equal(dec("10").Sub(decimal.NewFromInt(int64(ok)))))
	// Sem conflitos devolvidos, todo o saldo foi consumido.
	if conflict == 0 {
		assert.Equal(t, 10, ok)
		assert.Equal(t, workers-10, insufficient)
		assert.True(t, acc.Balance.IsZero())
	}
}

// conflictingStore força ErrVersionConflict um número fixo de vezes antes
// de delegar ao store real, para exercitar o limite de tentativas.
type conflictingStore struct {
	repository.LedgerStore
	mu        sync.Mutex
	conflicts int
}

func (c *conflictingStore) Apply(ctx context.Context, accountID string, expectedVersion int64, newBalance decimal.Decimal, mov *entity.Movement) error {
	c.mu.Lock()
	if c.conflicts > 0 {
		c.conflicts--
		c.mu.Unlock()
		return domain.ErrVersionConflict
	}
	c.mu.Unlock()
	return c.LedgerStore.Apply(ctx, accountID, expectedVersion, newBalance, mov)
}

func TestEngineApply_EsgotaTentativasEDevolveConflito(t *testing.T) {
	store, _, productID := newStockFixture(t)
	ctx := context.Background()

	seed := appledger.NewEngine(store.StockLedger(), domledger.StockValidator{}, 0, logger.Nop())
	_, err := seed.Apply(ctx, productID, &entity.Movement{Kind: entity.KindEntrada, Quantity: dec("5")})
	require.NoError(t, err)

	// 3 tentativas, 3 conflitos: deve desistir com ErrConflict.
	cs := &conflictingStore{LedgerStore: store.StockLedger(), conflicts: 3}
	engine := appledger.NewEngine(cs, domledger.StockValidator{}, 3, logger.Nop())
	_, err = engine.Apply(ctx, productID, &entity.Movement{Kind: entity.KindSaida, Quantity: dec("1")})
	require.ErrorIs(t, err, domain.ErrConflict)

	// 3 tentativas, 2 conflitos: a terceira passa.
	cs = &conflictingStore{LedgerStore: store.StockLedger(), conflicts: 2}
	engine = appledger.NewEngine(cs, domledger.StockValidator{}, 3, logger.Nop())
	res, err := engine.Apply(ctx, productID, &entity.Movement{Kind: entity.KindSaida, Quantity: dec("1")})
	require.NoError(t, err)
	assert.True(t, res.Balance.Equal(dec("4")))
}

func TestEngineApply_EntradaInvalida(t *testing.T) {
	_, engine, productID := newStockFixture(t)
	ctx := context.Background()

	_, err := engine.Apply(ctx, productID, nil)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = engine.Apply(ctx, "", &entity.Movement{Kind: entity.KindEntrada, Quantity: dec("1")})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = engine.Apply(ctx, productID, &entity.Movement{Kind: entity.KindEntrada, Quantity: dec("-1")})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
