package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa um produto/SKU da loja.
// O saldo em estoque não mora aqui: é mantido em StockAccount e só muda
// através de movimentos validados pelo motor de razão.
type Product struct {
	ID          string
	SKU         string // código único na loja
	Name        string
	Description string
	Price       decimal.Decimal // preço de venda
	Cost        decimal.Decimal // custo de reposição
	MinStock    decimal.Decimal // limiar para classificação de estoque baixo
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
