package repository

import (
	"context"

	"github.com/gfranca/retaguarda-api/internal/domain/entity"
)

// PayrollRepository define o porto de persistência da folha de pagamento.
type PayrollRepository interface {
	Create(ctx context.Context, entry *entity.PayrollEntry) error
	GetByID(ctx context.Context, id string) (*entity.PayrollEntry, error)
	ListByPeriod(ctx context.Context, period string) ([]*entity.PayrollEntry, error)
	Update(ctx context.Context, entry *entity.PayrollEntry) error
	Delete(ctx context.Context, id string) error
}
