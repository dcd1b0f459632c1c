package vendas_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gfranca/retaguarda-api/internal/application/caixa"
	"github.com/gfranca/retaguarda-api/internal/application/estoque"
	appledger "github.com/gfranca/retaguarda-api/internal/application/ledger"
	"github.com/gfranca/retaguarda-api/internal/application/vendas"
	"github.com/gfranca/retaguarda-api/internal/domain"
	"github.com/gfranca/retaguarda-api/internal/domain/entity"
	domledger "github.com/gfranca/retaguarda-api/internal/domain/ledger"
	"github.com/gfranca/retaguarda-api/internal/infrastructure/memory"
	"github.com/gfranca/retaguarda-api/pkg/logger"
)

var carla = entity.Actor{ID: "op-carla", Name: "Carla", Role: entity.RoleCaixa}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type fixture struct {
	store   *memory.Store
	stockUC *estoque.UseCase
	cashMgr *caixa.Manager
	saleUC  *vendas.SaleUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	stockEngine := appledger.NewEngine(store.StockLedger(), domledger.StockValidator{}, 0, logger.Nop())
	cashEngine := appledger.NewEngine(store.CashLedger(), domledger.CashValidator{}, 0, logger.Nop())
	stockUC := estoque.NewUseCase(stockEngine, store.Products(), store.Movements(), logger.Nop())
	cashMgr := caixa.NewManager(store, store.Movements(), cashEngine, nil, 0, logger.Nop())
	saleUC := vendas.NewSaleUseCase(store.Sales(), store.Products(), stockUC, cashMgr, logger.Nop())
	return &fixture{store: store, stockUC: stockUC, cashMgr: cashMgr, saleUC: saleUC}
}

func (f *fixture) addProduct(t *testing.T, sku, name, price, stock string) *entity.Product {
	t.Helper()
	ctx := context.Background()
	p := &entity.Product{
		ID:        uuid.New().String(),
		SKU:       sku,
		Name:      name,
		Price:     dec(price),
		Active:    true,
		CreatedAt: time.Now(),
	}
	require.NoError(t, f.store.Products().Create(ctx, p))
	if stock != "0" {
		_, err := f.stockUC.RegisterMovement(ctx, carla, estoque.MovementInput{
			ProductID: p.ID, Kind: entity.KindEntrada, Quantity: dec(stock), Reason: "carga inicial",
		})
		require.NoError(t, err)
	}
	return p
}

func TestRegisterSale_BaixaEstoqueELancaNoCaixa(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cafe := f.addProduct(t, "CAFE", "Café 500g", "20", "10")
	acucar := f.addProduct(t, "ACUCAR", "Açúcar 1kg", "5", "8")

	sess, err := f.cashMgr.Open(ctx, carla, dec("100"), "")
	require.NoError(t, err)

	out, err := f.saleUC.RegisterSale(ctx, carla, vendas.SaleInput{
		PaymentMethod: entity.PaymentDinheiro,
		Items: []vendas.SaleItemInput{
			{ProductID: cafe.ID, Quantity: dec("2")},
			{ProductID: acucar.ID, Quantity: dec("3")},
		},
	})
	require.NoError(t, err)
	assert.True(t, out.CashRecorded)
	assert.Empty(t, out.Pending)
	assert.True(t, out.Sale.Total.Equal(dec("55"))) // 2*20 + 3*5
	assert.Equal(t, sess.ID, out.Sale.SessionID)

	accCafe, err := f.stockUC.GetAccount(ctx, cafe.ID)
	require.NoError(t, err)
	assert.True(t, accCafe.Balance.Equal(dec("8")))

	got, err := f.cashMgr.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec("155")))
}

func TestRegisterSale_DinheiroSemSessaoFicaPendente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cafe := f.addProduct(t, "CAFE", "Café 500g", "20", "10")

	out, err := f.saleUC.RegisterSale(ctx, carla, vendas.SaleInput{
		PaymentMethod: entity.PaymentDinheiro,
		Items:         []vendas.SaleItemInput{{ProductID: cafe.ID, Quantity: dec("1")}},
	})
	require.NoError(t, err)

	// A venda existe e o estoque baixou; o caixa ficou como pendência.
	assert.False(t, out.CashRecorded)
	assert.Len(t, out.Pending, 1)
	assert.Empty(t, out.Sale.SessionID)

	sale, err := f.saleUC.GetSale(ctx, out.Sale.ID)
	require.NoError(t, err)
	assert.True(t, sale.Total.Equal(dec("20")))
}

func TestRegisterSale_CartaoNaoPassaPeloCaixa(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cafe := f.addProduct(t, "CAFE", "Café 500g", "20", "10")
	_, err := f.cashMgr.Open(ctx, carla, dec("100"), "")
	require.NoError(t, err)

	out, err := f.saleUC.RegisterSale(ctx, carla, vendas.SaleInput{
		PaymentMethod: entity.PaymentCartao,
		Items:         []vendas.SaleItemInput{{ProductID: cafe.ID, Quantity: dec("1")}},
	})
	require.NoError(t, err)
	assert.False(t, out.CashRecorded)
	assert.Empty(t, out.Pending)

	sess, err := f.cashMgr.OpenByOwner(ctx, carla.ID)
	require.NoError(t, err)
	assert.True(t, sess.Balance.Equal(dec("100")), "cartão não movimenta o caixa")
}

func TestRegisterSale_EstoqueInsuficienteAborta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cafe := f.addProduct(t, "CAFE", "Café 500g", "20", "1")

	_, err := f.saleUC.RegisterSale(ctx, carla, vendas.SaleInput{
		PaymentMethod: entity.PaymentPix,
		Items:         []vendas.SaleItemInput{{ProductID: cafe.ID, Quantity: dec("5")}},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Nada foi gravado: nem venda, nem baixa.
	sales, err := f.saleUC.ListSales(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, sales)

	acc, err := f.stockUC.GetAccount(ctx, cafe.ID)
	require.NoError(t, err)
	assert.True(t, acc.Balance.Equal(dec("1")))
}

func TestRegisterSale_FalhaNoMeioMantemBaixasAnteriores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cafe := f.addProduct(t, "CAFE", "Café 500g", "20", "10")
	acucar := f.addProduct(t, "ACUCAR", "Açúcar 1kg", "5", "1")

	_, err := f.saleUC.RegisterSale(ctx, carla, vendas.SaleInput{
		PaymentMethod: entity.PaymentPix,
		Items: []vendas.SaleItemInput{
			{ProductID: cafe.ID, Quantity: dec("2")},
			{ProductID: acucar.ID, Quantity: dec("5")},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Sem transação entre contas: a baixa do primeiro item permanece e é
	// detectável pelo histórico (conciliação manual).
	accCafe, err := f.stockUC.GetAccount(ctx, cafe.ID)
	require.NoError(t, err)
	assert.True(t, accCafe.Balance.Equal(dec("8")))

	accAcucar, err := f.stockUC.GetAccount(ctx, acucar.ID)
	require.NoError(t, err)
	assert.True(t, accAcucar.Balance.Equal(dec("1")))
}

func TestRegisterSale_EntradasInvalidas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cafe := f.addProduct(t, "CAFE", "Café 500g", "20", "10")

	_, err := f.saleUC.RegisterSale(ctx, carla, vendas.SaleInput{PaymentMethod: entity.PaymentPix})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.saleUC.RegisterSale(ctx, carla, vendas.SaleInput{
		PaymentMethod: "cheque",
		Items:         []vendas.SaleItemInput{{ProductID: cafe.ID, Quantity: dec("1")}},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.saleUC.RegisterSale(ctx, carla, vendas.SaleInput{
		PaymentMethod: entity.PaymentPix,
		Items:         []vendas.SaleItemInput{{ProductID: cafe.ID, Quantity: dec("0")}},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
