package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest uma linha da venda.
type SaleItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CreateSaleRequest entrada para registrar uma venda.
type CreateSaleRequest struct {
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=dinheiro cartao pix"`
	Items         []SaleItemRequest `json:"items" validate:"required,min=1"`
}

// SaleItemResponse uma linha da venda com os valores congelados no momento
// da venda.
type SaleItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SaleResponse saída de uma venda. Pending lista o que ficou por
// regularizar (ex.: venda em dinheiro sem sessão de caixa aberta).
type SaleResponse struct {
	ID            string             `json:"id"`
	OperatorID    string             `json:"operator_id"`
	OperatorName  string             `json:"operator_name"`
	SessionID     string             `json:"session_id,omitempty"`
	PaymentMethod string             `json:"payment_method"`
	Total         decimal.Decimal    `json:"total"`
	Items         []SaleItemResponse `json:"items"`
	CashRecorded  bool               `json:"cash_recorded"`
	Pending       []string           `json:"pending,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}
