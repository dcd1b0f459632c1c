package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayrollEntry é um lançamento de folha de pagamento de um funcionário
// em uma competência (formato "2026-08"). CRUD simples, sem razão.
type PayrollEntry struct {
	ID          string
	UserID      string
	UserName    string
	Period      string // competência YYYY-MM
	GrossAmount decimal.Decimal
	Deductions  decimal.Decimal
	NetAmount   decimal.Decimal // GrossAmount - Deductions
	Notes       string
	PaidAt      *time.Time
	CreatedAt   time.Time
}
