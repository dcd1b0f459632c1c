package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/gfranca/retaguarda-api/internal/domain"
	"github.com/gfranca/retaguarda-api/internal/domain/entity"
	"github.com/gfranca/retaguarda-api/internal/domain/ledger"
	"github.com/gfranca/retaguarda-api/internal/domain/repository"
)

var _ repository.LedgerStore = (*StockLedgerStore)(nil)
var _ repository.LedgerStore = (*CashLedgerStore)(nil)

// insertMovement grava um movimento dentro de uma transação. A escrita de
// movimento acontece sempre junto com a mudança de saldo, nunca sozinha.
func insertMovement(ctx context.Context, q Querier, mov *entity.Movement) error {
	query := `
		INSERT INTO movements
			(id, account_id, kind, quantity, previous_balance, new_balance,
			 actor_id, actor_name, product_name, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := q.Exec(ctx, query,
		mov.ID, mov.AccountID, mov.Kind, mov.Quantity, mov.PreviousBalance,
		mov.NewBalance, mov.ActorID, mov.ActorName, mov.ProductName,
		mov.Reason, mov.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// StockLedgerStore implementa LedgerStore sobre a tabela stock_accounts.
// Apply grava saldo novo + versão + movimento numa transação, condicionado
// à versão corrente (compare-and-swap); CAS perdido devolve
// domain.ErrVersionConflict para o motor tentar de novo.
type StockLedgerStore struct {
	pool *pgxpool.Pool
}

// NewStockLedgerStore constrói o store do razão de estoque.
func NewStockLedgerStore(pool *pgxpool.Pool) *StockLedgerStore {
	return &StockLedgerStore{pool: pool}
}

// Load lê saldo e versão da conta de estoque.
func (s *StockLedgerStore) Load(ctx context.Context, accountID string) (ledger.Snapshot, error) {
	var snap ledger.Snapshot
	err := s.pool.QueryRow(ctx,
		`SELECT balance, version FROM stock_accounts WHERE product_id = $1`,
		accountID,
	).Scan(&snap.Balance, &snap.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.Snapshot{}, domain.ErrNotFound
		}
		return ledger.Snapshot{}, fmt.Errorf("load stock account: %w", err)
	}
	return snap, nil
}

// Apply grava atomicamente o novo saldo (version+1) e o movimento, somente
// se a versão corrente ainda for expectedVersion.
func (s *StockLedgerStore) Apply(ctx context.Context, accountID string, expectedVersion int64, newBalance decimal.Decimal, mov *entity.Movement) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE stock_accounts
		SET balance = $3, version = version + 1, updated_at = now()
		WHERE product_id = $1 AND version = $2`,
		accountID, expectedVersion, newBalance,
	)
	if err != nil {
		return fmt.Errorf("update stock account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguir conta inexistente de CAS perdido.
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM stock_accounts WHERE product_id = $1)`,
			accountID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check stock account: %w", err)
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrVersionConflict
	}

	if err := insertMovement(ctx, tx, mov); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// CashLedgerStore implementa LedgerStore sobre a tabela cash_sessions.
// O Snapshot carrega também o status da sessão: o validador de caixa rejeita
// movimentos com a sessão fechada dentro do próprio loop de CAS, fechando a
// janela de corrida entre movimento e fechamento.
type CashLedgerStore struct {
	pool *pgxpool.Pool
}

// NewCashLedgerStore constrói o store do razão de caixa.
func NewCashLedgerStore(pool *pgxpool.Pool) *CashLedgerStore {
	return &CashLedgerStore{pool: pool}
}

// Load lê saldo, versão e status da sessão.
func (s *CashLedgerStore) Load(ctx context.Context, accountID string) (ledger.Snapshot, error) {
	var snap ledger.Snapshot
	err := s.pool.QueryRow(ctx,
		`SELECT balance, version, status FROM cash_sessions WHERE id = $1`,
		accountID,
	).Scan(&snap.Balance, &snap.Version, &snap.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.Snapshot{}, domain.ErrNotFound
		}
		return ledger.Snapshot{}, fmt.Errorf("load cash session: %w", err)
	}
	return snap, nil
}

// Apply grava atomicamente o novo saldo (version+1) e o movimento, somente
// se a versão corrente ainda for expectedVersion. Um fechamento concorrente
// incrementa a versão, então o CAS também cobre essa corrida.
func (s *CashLedgerStore) Apply(ctx context.Context, accountID string, expectedVersion int64, newBalance decimal.Decimal, mov *entity.Movement) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE cash_sessions
		SET balance = $3, version = version + 1
		WHERE id = $1 AND version = $2`,
		accountID, expectedVersion, newBalance,
	)
	if err != nil {
		return fmt.Errorf("update cash session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM cash_sessions WHERE id = $1)`,
			accountID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check cash session: %w", err)
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrVersionConflict
	}

	if err := insertMovement(ctx, tx, mov); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
