package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gfranca/retaguarda-api/internal/domain"
	"github.com/gfranca/retaguarda-api/internal/domain/entity"
	"github.com/gfranca/retaguarda-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo leitura do histórico de movimentos (a escrita acontece só
// dentro das transações do razão). Usável com pool ou tx.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository constrói o adaptador de movimentos.
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `
	id, account_id, kind, quantity, previous_balance, new_balance,
	actor_id, actor_name, product_name, reason, created_at`

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	err := row.Scan(
		&m.ID, &m.AccountID, &m.Kind, &m.Quantity, &m.PreviousBalance,
		&m.NewBalance, &m.ActorID, &m.ActorName, &m.ProductName,
		&m.Reason, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByID devolve um movimento por ID.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	row := r.q.QueryRow(ctx,
		`SELECT`+movementColumns+` FROM movements WHERE id = $1`, id)
	m, err := scanMovement(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// ListByAccount lista os movimentos da conta, do mais recente para o mais
// antigo. O ID é um ULID: ordenar por ID descendente é ordenar pelo tempo.
// limit <= 0 devolve o histórico inteiro.
func (r *MovementRepo) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*entity.Movement, error) {
	query := `SELECT` + movementColumns + `
		FROM movements WHERE account_id = $1
		ORDER BY id DESC`
	args := []any{accountID}
	if limit > 0 {
		query += ` LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var out []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
