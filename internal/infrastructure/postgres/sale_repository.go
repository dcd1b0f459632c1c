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

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo persistência de vendas: venda e itens gravados na mesma transação.
type SaleRepo struct {
	pool *pgxpool.Pool
}

// NewSaleRepository constrói o adaptador de vendas.
func NewSaleRepository(pool *pgxpool.Pool) *SaleRepo {
	return &SaleRepo{pool: pool}
}

// Create insere a venda com seus itens.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO sales
			(id, operator_id, operator_name, session_id, payment_method,
			 total, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)`,
		sale.ID, sale.OperatorID, sale.OperatorName, sale.SessionID,
		sale.PaymentMethod, sale.Total, sale.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	for i, item := range sale.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO sale_items
				(sale_id, position, product_id, product_name, quantity,
				 unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			sale.ID, i, item.ProductID, item.ProductName, item.Quantity,
			item.UnitPrice, item.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("insert sale item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	var sessionID *string
	err := row.Scan(
		&s.ID, &s.OperatorID, &s.OperatorName, &sessionID,
		&s.PaymentMethod, &s.Total, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if sessionID != nil {
		s.SessionID = *sessionID
	}
	return &s, nil
}

func (r *SaleRepo) loadItems(ctx context.Context, saleID string) ([]entity.SaleItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT product_id, product_name, quantity, unit_price, subtotal
		FROM sale_items WHERE sale_id = $1
		ORDER BY position`,
		saleID,
	)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()

	var items []entity.SaleItem
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetByID devolve a venda com seus itens.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, operator_id, operator_name, session_id, payment_method,
		       total, created_at
		FROM sales WHERE id = $1`,
		id,
	)
	sale, err := scanSale(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if sale.Items, err = r.loadItems(ctx, sale.ID); err != nil {
		return nil, err
	}
	return sale, nil
}

// List lista vendas da mais recente para a mais antiga, com itens.
func (r *SaleRepo) List(ctx context.Context, limit, offset int) ([]*entity.Sale, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, operator_id, operator_name, session_id, payment_method,
		       total, created_at
		FROM sales
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var out []*entity.Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		out = append(out, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, sale := range out {
		if sale.Items, err = r.loadItems(ctx, sale.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}
