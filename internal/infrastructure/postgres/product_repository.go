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

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo persistência de produtos e suas contas de estoque.
type ProductRepo struct {
	pool *pgxpool.Pool
}

// NewProductRepository constrói o adaptador de produtos.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

const productColumns = `
	id, sku, name, description, price, cost, min_stock, active,
	created_at, updated_at`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.SKU, &p.Name, &p.Description, &p.Price, &p.Cost,
		&p.MinStock, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create insere o produto e abre sua conta de estoque (saldo zero, versão 1)
// na mesma transação. SKU duplicado devolve domain.ErrDuplicate.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO products
			(id, sku, name, description, price, cost, min_stock, active,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		product.ID, product.SKU, product.Name, product.Description,
		product.Price, product.Cost, product.MinStock, product.Active,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO stock_accounts (product_id, balance, version, updated_at)
		VALUES ($1, 0, 1, now())`,
		product.ID,
	)
	if err != nil {
		return fmt.Errorf("insert stock account: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetByID devolve um produto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT`+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetBySKU devolve um produto pelo código SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT`+productColumns+` FROM products WHERE sku = $1`, sku)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get product by sku: %w", err)
	}
	return p, nil
}

// Update grava os dados cadastrais do produto.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products
		SET name = $2, description = $3, price = $4, cost = $5,
		    min_stock = $6, active = $7, updated_at = $8
		WHERE id = $1`,
		product.ID, product.Name, product.Description, product.Price,
		product.Cost, product.MinStock, product.Active, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista produtos paginados por nome.
func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT`+productColumns+`
		FROM products
		ORDER BY name
		LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete remove o produto. A conta de estoque e os movimentos permanecem
// (histórico de auditoria); a FK de stock_accounts usa ON DELETE CASCADE
// apenas para a conta.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetStockAccount devolve a conta de estoque do produto.
func (r *ProductRepo) GetStockAccount(ctx context.Context, productID string) (*entity.StockAccount, error) {
	var acc entity.StockAccount
	err := r.pool.QueryRow(ctx,
		`SELECT product_id, balance, version, updated_at
		FROM stock_accounts WHERE product_id = $1`,
		productID,
	).Scan(&acc.ProductID, &acc.Balance, &acc.Version, &acc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get stock account: %w", err)
	}
	return &acc, nil
}

// ListLowStock devolve produtos ativos com saldo abaixo do limiar mínimo.
func (r *ProductRepo) ListLowStock(ctx context.Context) ([]*entity.LowStockItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.sku, p.name, sa.balance, p.min_stock
		FROM products p
		JOIN stock_accounts sa ON sa.product_id = p.id
		WHERE p.active AND sa.balance < p.min_stock
		ORDER BY p.name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()

	var out []*entity.LowStockItem
	for rows.Next() {
		var item entity.LowStockItem
		if err := rows.Scan(&item.ProductID, &item.SKU, &item.ProductName, &item.Balance, &item.MinStock); err != nil {
			return nil, fmt.Errorf("scan low stock: %w", err)
		}
		out = append(out, &item)
	}
	return out, rows.Err()
}
