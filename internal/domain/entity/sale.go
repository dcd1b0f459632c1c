package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Formas de pagamento aceitas em uma venda.
const (
	PaymentDinheiro = "dinheiro"
	PaymentCartao   = "cartao"
	PaymentPix      = "pix"
)

// Sale é o registro de uma venda no ponto de venda.
// A baixa de estoque e o movimento de caixa associados são operações
// atômicas independentes: a venda pode existir com pendências (ver
// vendas.SaleUseCase), nunca há transação cruzando contas.
type Sale struct {
	ID            string
	OperatorID    string
	OperatorName  string
	SessionID     string // sessão de caixa que recebeu o dinheiro ("" se não houve)
	PaymentMethod string
	Total         decimal.Decimal
	Items         []SaleItem
	CreatedAt     time.Time
}

// SaleItem é uma linha da venda, com preço congelado no momento.
type SaleItem struct {
	ProductID   string
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}
