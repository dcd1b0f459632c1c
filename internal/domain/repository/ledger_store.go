package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/gfranca/retaguarda-api/internal/domain/entity"
	"github.com/gfranca/retaguarda-api/internal/domain/ledger"
)

// LedgerStore é a primitiva de persistência do motor de razão.
// Load lê saldo+versão da conta; Apply grava, numa única operação atômica,
// o novo saldo com version+1 e o registro do movimento — somente se a versão
// da conta ainda for expectedVersion (compare-and-swap). Em caso de CAS
// perdido devolve domain.ErrVersionConflict para o motor tentar de novo.
type LedgerStore interface {
	Load(ctx context.Context, accountID string) (ledger.Snapshot, error)
	Apply(ctx context.Context, accountID string, expectedVersion int64, newBalance decimal.Decimal, mov *entity.Movement) error
}
