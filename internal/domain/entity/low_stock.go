package entity

import "github.com/shopspring/decimal"

// LowStockItem é a visão de leitura de um produto abaixo do limiar mínimo.
type LowStockItem struct {
	ProductID   string
	SKU         string
	ProductName string
	Balance     decimal.Decimal
	MinStock    decimal.Decimal
}
