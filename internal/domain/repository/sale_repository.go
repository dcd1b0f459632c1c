package repository

import (
	"context"

	"github.com/gfranca/retaguarda-api/internal/domain/entity"
)

// SaleRepository define o porto de persistência de vendas (venda + itens
// gravados juntos; nenhum vínculo transacional com estoque ou caixa).
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Sale, error)
}
