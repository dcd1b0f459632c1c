package repository

import (
	"context"

	"github.com/gfranca/retaguarda-api/internal/domain/entity"
)

// SessionRepository define o porto de persistência das sessões de caixa.
type SessionRepository interface {
	// Create insere a sessão junto com o movimento de abertura, atomicamente.
	// A exclusividade de uma sessão aberta por dono é garantida no store
	// (índice único parcial); violação devolve domain.ErrSessionAlreadyOpen.
	Create(ctx context.Context, sess *entity.CashSession, opening *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.CashSession, error)
	// GetOpenByOwner devolve domain.ErrNotFound se o dono não tem sessão aberta.
	GetOpenByOwner(ctx context.Context, ownerID string) (*entity.CashSession, error)
	// Close grava a transição aberta->fechada: status, valores de conferência,
	// ClosedAt e o movimento de fechamento, tudo ou nada, condicionado à
	// versão (domain.ErrVersionConflict em CAS perdido).
	Close(ctx context.Context, sess *entity.CashSession, expectedVersion int64, closing *entity.Movement) error
	List(ctx context.Context, limit, offset int) ([]*entity.CashSession, error)
}
