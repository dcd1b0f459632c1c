// Package estoque expõe o razão de estoque: movimentos de entrada, saída e
// ajuste por produto, sempre através do motor de razão. Não há sessão;
// a regra dura é o piso zero do saldo.
package estoque

import (
	"context"

	"github.com/shopspring/decimal"

	appledger "github.com/gfranca/retaguarda-api/internal/application/ledger"
	"github.com/gfranca/retaguarda-api/internal/domain"
	"github.com/gfranca/retaguarda-api/internal/domain/entity"
	"github.com/gfranca/retaguarda-api/internal/domain/repository"
	"github.com/gfranca/retaguarda-api/pkg/logger"
)

// UseCase registra e consulta movimentos de estoque.
type UseCase struct {
	engine    *appledger.Engine
	products  repository.ProductRepository
	movements repository.MovementRepository
	log       *logger.Logger
}

// NewUseCase constrói o caso de uso de estoque.
func NewUseCase(
	engine *appledger.Engine,
	products repository.ProductRepository,
	movements repository.MovementRepository,
	log *logger.Logger,
) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{engine: engine, products: products, movements: movements, log: log}
}

// MovementInput entrada para registrar um movimento de estoque.
type MovementInput struct {
	ProductID string
	Kind      string // entrada | saida | ajuste
	Quantity  decimal.Decimal
	Reason    string
}

// RegisterMovement valida e aplica um movimento sobre a conta de estoque do
// produto. O movimento grava o nome do produto no momento (o histórico
// permanece legível mesmo se o produto for renomeado depois).
func (uc *UseCase) RegisterMovement(ctx context.Context, actor entity.Actor, in MovementInput) (*appledger.Result, error) {
	switch in.Kind {
	case entity.KindEntrada, entity.KindSaida, entity.KindAjuste:
	default:
		return nil, domain.ErrInvalidMovementKind
	}
	product, err := uc.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}

	res, err := uc.engine.Apply(ctx, product.ID, &entity.Movement{
		Kind:        in.Kind,
		Quantity:    in.Quantity,
		ActorID:     actor.ID,
		ActorName:   actor.Name,
		ProductName: product.Name,
		Reason:      in.Reason,
	})
	if err != nil {
		return nil, err
	}

	if res.Balance.LessThan(product.MinStock) {
		uc.log.Warn().
			Str("product_id", product.ID).
			Str("sku", product.SKU).
			Str("balance", res.Balance.String()).
			Str("min_stock", product.MinStock.String()).
			Msg("produto abaixo do estoque mínimo")
	}
	return res, nil
}

// GetAccount devolve a conta de estoque de um produto.
func (uc *UseCase) GetAccount(ctx context.Context, productID string) (*entity.StockAccount, error) {
	return uc.products.GetStockAccount(ctx, productID)
}

// ListMovements lista o histórico de movimentos de um produto.
func (uc *UseCase) ListMovements(ctx context.Context, productID string, limit, offset int) ([]*entity.Movement, error) {
	if _, err := uc.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	return uc.movements.ListByAccount(ctx, productID, limit, offset)
}

// ListLowStock devolve os produtos abaixo do limiar mínimo.
func (uc *UseCase) ListLowStock(ctx context.Context) ([]*entity.LowStockItem, error) {
	return uc.products.ListLowStock(ctx)
}
