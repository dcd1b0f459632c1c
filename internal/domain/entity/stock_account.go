package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockAccount é a conta de saldo de estoque de um produto (uma por produto).
// Balance nunca fica negativo; Version cresce a cada movimento aplicado e é
// a base do controle de concorrência otimista.
type StockAccount struct {
	ProductID string
	Balance   decimal.Decimal
	Version   int64
	UpdatedAt time.Time
}
