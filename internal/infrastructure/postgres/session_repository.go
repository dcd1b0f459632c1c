package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gfranca/retaguarda-api/internal/domain"
	"github.com/gfranca/retaguarda-api/internal/domain/entity"
	"github.com/gfranca/retaguarda-api/internal/domain/repository"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo persistência das sessões de caixa. A exclusividade de uma
// sessão aberta por dono é do índice único parcial
// uq_cash_sessions_open_owner (owner_id WHERE status = 'aberta').
type SessionRepo struct {
	pool *pgxpool.Pool
}

// NewSessionRepository constrói o adaptador de sessões.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

const sessionColumns = `
	id, owner_id, owner_name, opening_amount, closing_amount, expected_amount,
	difference, balance, version, status, notes, opened_at, closed_at`

func scanSession(row pgx.Row) (*entity.CashSession, error) {
	var s entity.CashSession
	err := row.Scan(
		&s.ID, &s.OwnerID, &s.OwnerName, &s.OpeningAmount, &s.ClosingAmount,
		&s.ExpectedAmount, &s.Difference, &s.Balance, &s.Version, &s.Status,
		&s.Notes, &s.OpenedAt, &s.ClosedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create insere a sessão e o movimento de abertura na mesma transação.
// Violação do índice único parcial devolve domain.ErrSessionAlreadyOpen.
func (r *SessionRepo) Create(ctx context.Context, sess *entity.CashSession, opening *entity.Movement) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO cash_sessions
			(id, owner_id, owner_name, opening_amount, closing_amount,
			 expected_amount, difference, balance, version, status, notes,
			 opened_at, closed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		sess.ID, sess.OwnerID, sess.OwnerName, sess.OpeningAmount,
		sess.ClosingAmount, sess.ExpectedAmount, sess.Difference,
		sess.Balance, sess.Version, sess.Status, sess.Notes,
		sess.OpenedAt, sess.ClosedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSessionAlreadyOpen
		}
		return fmt.Errorf("insert cash session: %w", err)
	}

	if err := insertMovement(ctx, tx, opening); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetByID devolve uma sessão por ID.
func (r *SessionRepo) GetByID(ctx context.Context, id string) (*entity.CashSession, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT`+sessionColumns+` FROM cash_sessions WHERE id = $1`, id)
	sess, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get cash session: %w", err)
	}
	return sess, nil
}

// GetOpenByOwner devolve a sessão aberta do dono, ou domain.ErrNotFound.
func (r *SessionRepo) GetOpenByOwner(ctx context.Context, ownerID string) (*entity.CashSession, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT`+sessionColumns+`
		FROM cash_sessions WHERE owner_id = $1 AND status = 'aberta'`,
		ownerID)
	sess, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get open session: %w", err)
	}
	return sess, nil
}

// Close grava a transição aberta->fechada junto com o movimento de
// fechamento, condicionada à versão corrente (CAS). Uma sessão que mudou
// de versão no meio tempo devolve domain.ErrVersionConflict para o chamador
// recalcular a conferência.
func (r *SessionRepo) Close(ctx context.Context, sess *entity.CashSession, expectedVersion int64, closing *entity.Movement) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE cash_sessions
		SET status = $3, closing_amount = $4, expected_amount = $5,
		    difference = $6, notes = $7, closed_at = $8, version = version + 1
		WHERE id = $1 AND version = $2 AND status = 'aberta'`,
		sess.ID, expectedVersion, sess.Status, sess.ClosingAmount,
		sess.ExpectedAmount, sess.Difference, sess.Notes, sess.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("close cash session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var status string
		err := tx.QueryRow(ctx,
			`SELECT status FROM cash_sessions WHERE id = $1`, sess.ID,
		).Scan(&status)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return domain.ErrNotFound
		case err != nil:
			return fmt.Errorf("check cash session: %w", err)
		case status == entity.SessionFechada:
			return domain.ErrSessionClosed
		default:
			return domain.ErrVersionConflict
		}
	}

	if err := insertMovement(ctx, tx, closing); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// List lista sessões da mais recente para a mais antiga.
func (r *SessionRepo) List(ctx context.Context, limit, offset int) ([]*entity.CashSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT`+sessionColumns+`
		FROM cash_sessions
		ORDER BY opened_at DESC
		LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list cash sessions: %w", err)
	}
	defer rows.Close()

	var out []*entity.CashSession
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cash session: %w", err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}
