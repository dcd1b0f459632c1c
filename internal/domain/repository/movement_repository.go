package repository

import (
	"context"

	"github.com/gfranca/retaguarda-api/internal/domain/entity"
)

// MovementRepository define o porto de leitura do histórico de movimentos.
// A escrita acontece exclusivamente dentro de LedgerStore.Apply (e das
// transições de sessão), junto com a mudança de saldo.
type MovementRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	// ListByAccount devolve os movimentos da conta do mais recente para o
	// mais antigo (ordem de ULID descendente).
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*entity.Movement, error)
}
