package repository

import (
	"context"

	"github.com/gfranca/retaguarda-api/internal/domain/entity"
)

// ProductRepository define o porto de persistência de Product.
// Create também abre a conta de estoque do produto (saldo zero, versão 1).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	Delete(ctx context.Context, id string) error
	// GetStockAccount devolve a conta de estoque do produto.
	GetStockAccount(ctx context.Context, productID string) (*entity.StockAccount, error)
	// ListLowStock devolve produtos com saldo abaixo do limiar mínimo.
	ListLowStock(ctx context.Context) ([]*entity.LowStockItem, error)
}
