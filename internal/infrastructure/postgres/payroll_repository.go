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

var _ repository.PayrollRepository = (*PayrollRepo)(nil)

// PayrollRepo persistência dos lançamentos de folha de pagamento.
type PayrollRepo struct {
	pool *pgxpool.Pool
}

// NewPayrollRepository constrói o adaptador da folha.
func NewPayrollRepository(pool *pgxpool.Pool) *PayrollRepo {
	return &PayrollRepo{pool: pool}
}

const payrollColumns = `
	id, user_id, user_name, period, gross_amount, deductions, net_amount,
	notes, paid_at, created_at`

func scanPayrollEntry(row pgx.Row) (*entity.PayrollEntry, error) {
	var e entity.PayrollEntry
	err := row.Scan(
		&e.ID, &e.UserID, &e.UserName, &e.Period, &e.GrossAmount,
		&e.Deductions, &e.NetAmount, &e.Notes, &e.PaidAt, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create insere um lançamento.
func (r *PayrollRepo) Create(ctx context.Context, entry *entity.PayrollEntry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO payroll_entries
			(id, user_id, user_name, period, gross_amount, deductions,
			 net_amount, notes, paid_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		entry.ID, entry.UserID, entry.UserName, entry.Period,
		entry.GrossAmount, entry.Deductions, entry.NetAmount,
		entry.Notes, entry.PaidAt, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payroll entry: %w", err)
	}
	return nil
}

// GetByID devolve um lançamento por ID.
func (r *PayrollRepo) GetByID(ctx context.Context, id string) (*entity.PayrollEntry, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT`+payrollColumns+` FROM payroll_entries WHERE id = $1`, id)
	e, err := scanPayrollEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get payroll entry: %w", err)
	}
	return e, nil
}

// ListByPeriod lista os lançamentos de uma competência, por nome.
func (r *PayrollRepo) ListByPeriod(ctx context.Context, period string) ([]*entity.PayrollEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT`+payrollColumns+`
		FROM payroll_entries WHERE period = $1
		ORDER BY user_name`,
		period,
	)
	if err != nil {
		return nil, fmt.Errorf("list payroll entries: %w", err)
	}
	defer rows.Close()

	var out []*entity.PayrollEntry
	for rows.Next() {
		e, err := scanPayrollEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payroll entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Update grava os valores de um lançamento.
func (r *PayrollRepo) Update(ctx context.Context, entry *entity.PayrollEntry) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE payroll_entries
		SET period = $2, gross_amount = $3, deductions = $4, net_amount = $5,
		    notes = $6, paid_at = $7
		WHERE id = $1`,
		entry.ID, entry.Period, entry.GrossAmount, entry.Deductions,
		entry.NetAmount, entry.Notes, entry.PaidAt,
	)
	if err != nil {
		return fmt.Errorf("update payroll entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete remove um lançamento.
func (r *PayrollRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM payroll_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete payroll entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
